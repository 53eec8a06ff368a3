// Helpers moving 8-bit single channel Mats in and out of Go byte slices
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// checkGray8 returns an ErrInvalidArgument error unless src is a non-empty CV_8UC1 Mat
func checkGray8(src gocv.Mat, op string) error {
	if src.Empty() {
		return fmt.Errorf("%w: %s: input image is empty", ErrInvalidArgument, op)
	}
	if src.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("%w: %s: expected 8-bit single-channel image, got type %v with %d channels",
			ErrInvalidArgument, op, src.Type(), src.Channels())
	}
	return nil
}

// checkDestination rejects a nil destination, or a separate non-empty one of another type
func checkDestination(src gocv.Mat, dst *gocv.Mat, op string) error {
	if dst == nil {
		return fmt.Errorf("%w: %s: destination is nil", ErrInvalidArgument, op)
	}
	if dst.Ptr() == src.Ptr() || dst.Empty() {
		return nil
	}
	if dst.Type() != src.Type() {
		return fmt.Errorf("%w: %s: destination type %v does not match source type %v",
			ErrInvalidArgument, op, dst.Type(), src.Type())
	}
	return nil
}

// matBytes copies the pixels of an 8-bit Mat into a row-major slice
func matBytes(src gocv.Mat) []byte {
	if src.IsContinuous() {
		return src.ToBytes()
	}

	continuous := src.Clone()
	defer continuous.Close()
	return continuous.ToBytes()
}

// writeGray8 stores row-major data in dst, reallocating dst only when its size or type differs.
// dst may alias the Mat the data was read from, or be a region of a larger Mat.
func writeGray8(dst *gocv.Mat, rows, cols int, data []byte) error {
	if len(data) != rows*cols {
		return fmt.Errorf("pixel buffer holds %d bytes, expected %d", len(data), rows*cols)
	}

	if dst.Empty() || dst.Rows() != rows || dst.Cols() != cols || dst.Type() != gocv.MatTypeCV8UC1 {
		if !dst.Empty() {
			dst.Close()
		}
		*dst = gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	}

	if !dst.IsContinuous() {
		// region views share their parent's row stride
		tmp, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data)
		if err != nil {
			return fmt.Errorf("wrap destination pixels: %w", err)
		}
		defer tmp.Close()
		tmp.CopyTo(dst)
		return nil
	}

	ptr, err := dst.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("access destination pixels: %w", err)
	}
	copy(ptr, data)
	return nil
}

// ensureGrayscale returns input when it is already single channel, otherwise a new gray Mat
// the caller must close
func ensureGrayscale(input gocv.Mat) gocv.Mat {
	if input.Channels() == 1 {
		return input
	}

	gray := gocv.NewMat()
	switch input.Channels() {
	case 4:
		gocv.CvtColor(input, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
	}
	return gray
}
