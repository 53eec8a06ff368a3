package core

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{input: "10,0,10,12", want: Region{Bounds: image.Rect(10, 0, 20, 12)}},
		{input: " 1, 2, 3, 4 ", want: Region{Bounds: image.Rect(1, 2, 4, 6)}},
		{
			input: "0,0;9,0;0,9",
			want: Region{
				Bounds: image.Rect(0, 0, 10, 10),
				Points: []image.Point{{0, 0}, {9, 0}, {0, 9}},
			},
		},
		{input: "1,2,3", wantErr: true},
		{input: "1,2,0,4", wantErr: true},
		{input: "a,b,c,d", wantErr: true},
		{input: "0,0;5,5", wantErr: true},
		{input: "0,0;5;1,1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegion_Mask(t *testing.T) {
	triangle, err := PolygonRegion([]image.Point{{0, 0}, {8, 0}, {0, 8}})
	require.NoError(t, err)
	assert.True(t, triangle.IsPolygon())

	mask, err := triangle.mask(image.Rect(0, 0, 9, 9))
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, uint8(255), mask.GetUCharAt(1, 1))
	assert.Equal(t, uint8(0), mask.GetUCharAt(7, 7))

	rect, err := RectRegion(2, 2, 3, 3)
	require.NoError(t, err)
	rectMask, err := rect.mask(image.Rect(0, 0, 9, 9))
	require.NoError(t, err)
	defer rectMask.Close()
	assert.Equal(t, 9, gocv.CountNonZero(rectMask))
}

func thinningPipeline(t *testing.T, region Region) *Pipeline {
	t.Helper()
	p := NewPipeline(nil)
	require.NoError(t, p.AddStep("thinning", nil))
	p.SetRegion(region)
	return p
}

func TestPipeline_RectRegion(t *testing.T) {
	input := rectMat(12, 20, 2, 2, 16, 8)
	defer input.Close()

	region, err := RectRegion(10, 0, 10, 12)
	require.NoError(t, err)

	result, err := thinningPipeline(t, region).Run(context.Background(), input)
	require.NoError(t, err)
	defer result.Output.Close()

	require.Equal(t, input.Rows(), result.Output.Rows())
	require.Equal(t, input.Cols(), result.Output.Cols())

	inside := 0
	for y := 0; y < 12; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				assert.Equal(t, input.GetUCharAt(y, x), result.Output.GetUCharAt(y, x), "outside (%d,%d)", x, y)
			} else if result.Output.GetUCharAt(y, x) != 0 {
				inside++
			}
		}
	}
	assert.Greater(t, inside, 0)
	assert.Less(t, inside, 64)
}

func TestPipeline_WholeImageRegionMatchesPlainRun(t *testing.T) {
	input := rectMat(12, 20, 2, 2, 16, 8)
	defer input.Close()

	plain, err := thinningPipeline(t, Region{}).Run(context.Background(), input)
	require.NoError(t, err)
	defer plain.Output.Close()

	// bounds larger than the image are clipped
	region, err := RectRegion(-5, -5, 40, 40)
	require.NoError(t, err)
	clipped, err := thinningPipeline(t, region).Run(context.Background(), input)
	require.NoError(t, err)
	defer clipped.Output.Close()

	assert.Equal(t, plain.Output.ToBytes(), clipped.Output.ToBytes())
}

func TestPipeline_PolygonRegion(t *testing.T) {
	input := rectMat(12, 20, 2, 2, 16, 8)
	defer input.Close()

	region, err := ParseRegion("0,0;19,0;0,11")
	require.NoError(t, err)

	result, err := thinningPipeline(t, region).Run(context.Background(), input)
	require.NoError(t, err)
	defer result.Output.Close()

	mask, err := region.mask(image.Rect(0, 0, 20, 12))
	require.NoError(t, err)
	defer mask.Close()

	changed := 0
	for y := 0; y < 12; y++ {
		for x := 0; x < 20; x++ {
			if mask.GetUCharAt(y, x) == 0 {
				assert.Equal(t, input.GetUCharAt(y, x), result.Output.GetUCharAt(y, x), "outside (%d,%d)", x, y)
			} else if input.GetUCharAt(y, x) != result.Output.GetUCharAt(y, x) {
				changed++
			}
		}
	}
	assert.Greater(t, changed, 0)
}

func TestPipeline_RegionOutsideImage(t *testing.T) {
	input := rectMat(12, 20, 2, 2, 16, 8)
	defer input.Close()

	region, err := RectRegion(30, 30, 5, 5)
	require.NoError(t, err)

	_, err = thinningPipeline(t, region).Run(context.Background(), input)
	assert.ErrorContains(t, err, "outside")
}
