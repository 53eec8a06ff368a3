package io

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestIsSupportedImageFormat(t *testing.T) {
	tests := map[string]bool{
		"board.png":           true,
		"scan.TIFF":           true,
		"dir.v2/mask.pbm":     true,
		"layer.gbr":           false,
		"noext":               false,
		"archive.png.gz":      false,
		"C:\\pcb\\copper.bmp": true,
	}

	for path, want := range tests {
		assert.Equal(t, want, IsSupportedImageFormat(path), path)
	}
}

func TestImageLoader_RoundTrip(t *testing.T) {
	loader := NewImageLoader(quietLogger())
	path := filepath.Join(t.TempDir(), "mask.png")

	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 6, 8, gocv.MatTypeCV8UC1)
	defer src.Close()
	src.SetUCharAt(2, 3, 255)

	require.NoError(t, loader.SaveImage(src, path))
	require.NoError(t, loader.ValidateImageFile(path))

	loaded, err := loader.LoadImageGrayscale(path)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, gocv.MatTypeCV8UC1, loaded.Type())
	assert.Equal(t, src.ToBytes(), loaded.ToBytes())
}

func TestImageLoader_Errors(t *testing.T) {
	loader := NewImageLoader(quietLogger())
	empty := gocv.NewMat()
	defer empty.Close()

	assert.Error(t, loader.SaveImage(empty, filepath.Join(t.TempDir(), "out.png")))

	_, err := loader.LoadImageGrayscale(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = loader.LoadImage("drawing.svg")
	assert.Error(t, err)
}

func TestImageLoader_NilLogger(t *testing.T) {
	loader := NewImageLoader(nil)
	path := filepath.Join(t.TempDir(), "mask.bmp")

	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC1)
	defer src.Close()

	assert.NotPanics(t, func() {
		require.NoError(t, loader.SaveImage(src, path))
		loaded, err := loader.LoadImageGrayscale(path)
		require.NoError(t, err)
		loaded.Close()
	})
}
