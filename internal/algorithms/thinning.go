// Binary blob thinning (skeletonization) on 8-bit single channel Mats
package algorithms

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"image-skeleton/internal/skeleton"
)

// ThinningType selects the thinning algorithm used by Thinning
type ThinningType int

const (
	// ThinningZhangSuen is the thinning technique of Zhang-Suen
	ThinningZhangSuen ThinningType = 0
	// ThinningGuoHall is the thinning technique of Guo-Hall
	ThinningGuoHall ThinningType = 1
)

func (t ThinningType) String() string {
	return t.method().String()
}

func (t ThinningType) method() skeleton.Method {
	return skeleton.Method(t)
}

// ParseThinningType parses names like "zhang_suen" or "guo_hall"
func ParseThinningType(name string) (ThinningType, error) {
	m, err := skeleton.ParseMethod(name)
	if err != nil {
		return 0, err
	}
	return ThinningType(m), nil
}

// Thinning applies a binary blob thinning operation to get a skeleton of src.
//
// src must be 8-bit single channel with blobs at 255. dst receives an image of the
// same size and type and may be src itself.
func Thinning(src gocv.Mat, dst *gocv.Mat, thinningType ThinningType) error {
	_, err := ThinningWithOptions(context.Background(), src, dst, thinningType)
	return err
}

// ThinningWithOptions is Thinning with cancellation and kernel options such as worker count.
// It also reports how many passes ran and how many pixels were removed.
func ThinningWithOptions(ctx context.Context, src gocv.Mat, dst *gocv.Mat, thinningType ThinningType, opts ...skeleton.Option) (skeleton.Stats, error) {
	if err := checkGray8(src, "thinning"); err != nil {
		return skeleton.Stats{}, err
	}
	if err := checkDestination(src, dst, "thinning"); err != nil {
		return skeleton.Stats{}, err
	}

	thinner, err := skeleton.NewThinner(thinningType.method(), opts...)
	if err != nil {
		return skeleton.Stats{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	rows, cols := src.Rows(), src.Cols()
	grid, err := skeleton.GridFromBytes(cols, rows, matBytes(src))
	if err != nil {
		return skeleton.Stats{}, err
	}

	stats, err := thinner.Thin(ctx, grid)
	if err != nil {
		return stats, err
	}

	if err := writeGray8(dst, rows, cols, grid.Bytes()); err != nil {
		return stats, err
	}
	return stats, nil
}

// ThinningAlgorithm exposes Thinning through the algorithm registry
type ThinningAlgorithm struct{}

// NewThinningAlgorithm creates a new thinning algorithm
func NewThinningAlgorithm() *ThinningAlgorithm {
	return &ThinningAlgorithm{}
}

func (t *ThinningAlgorithm) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	thinningType, err := ParseThinningType(stringParam(params, "method", ThinningZhangSuen.String()))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	opts := []skeleton.Option{skeleton.WithWorkers(intParam(params, "workers", 1))}
	if n := intParam(params, "max_iterations", 0); n > 0 {
		opts = append(opts, skeleton.WithMaxIterations(n))
	}

	output := gocv.NewMat()
	if _, err := ThinningWithOptions(context.Background(), input, &output, thinningType, opts...); err != nil {
		output.Close()
		return gocv.NewMat(), err
	}

	return output, nil
}

func (t *ThinningAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"method":         ThinningZhangSuen.String(),
		"workers":        1.0,
		"max_iterations": 0.0,
	}
}

func (t *ThinningAlgorithm) GetName() string {
	return "Thinning"
}

func (t *ThinningAlgorithm) GetDescription() string {
	return "Reduces binary blobs to one pixel wide skeletons (Zhang-Suen or Guo-Hall)"
}

func (t *ThinningAlgorithm) Validate(params map[string]interface{}) error {
	if val, ok := params["method"]; ok {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("method must be a string")
		}
		if _, err := ParseThinningType(s); err != nil {
			return err
		}
	}

	if err := checkRange(params, "workers", 0, 256); err != nil {
		return err
	}
	return checkRange(params, "max_iterations", 0, 100000)
}

func (t *ThinningAlgorithm) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "method",
			Type:        "enum",
			Default:     ThinningZhangSuen.String(),
			Description: "Thinning algorithm",
			Options:     skeleton.MethodNames(),
		},
		{
			Name:        "workers",
			Type:        "int",
			Min:         0.0,
			Max:         256.0,
			Default:     1.0,
			Description: "Goroutines evaluating each pass (0 uses all CPUs)",
		},
		{
			Name:        "max_iterations",
			Type:        "int",
			Min:         0.0,
			Max:         100000.0,
			Default:     0.0,
			Description: "Stop after this many passes (0 runs until convergence)",
		},
	}
}
