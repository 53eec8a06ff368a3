package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"image-skeleton/internal/skeleton"
)

// ForegroundRatio is the share of original foreground pixels kept in the skeleton
type ForegroundRatio struct{}

func NewForegroundRatio() *ForegroundRatio {
	return &ForegroundRatio{}
}

func (f *ForegroundRatio) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}

	before := gocv.CountNonZero(original)
	if before == 0 {
		return 0, fmt.Errorf("original image has no foreground")
	}

	return float64(gocv.CountNonZero(processed)) / float64(before), nil
}

func (f *ForegroundRatio) GetName() string {
	return "Foreground Ratio"
}

func (f *ForegroundRatio) GetDescription() string {
	return "Skeleton pixels divided by original foreground pixels"
}

func (f *ForegroundRatio) GetRange() (float64, float64) {
	return 0, 1
}

func (f *ForegroundRatio) IsHigherBetter() bool {
	return false
}

// ComponentDelta is the change in 8-connected component count
type ComponentDelta struct{}

func NewComponentDelta() *ComponentDelta {
	return &ComponentDelta{}
}

func (c *ComponentDelta) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}

	return float64(countComponents(processed) - countComponents(original)), nil
}

func (c *ComponentDelta) GetName() string {
	return "Component Delta"
}

func (c *ComponentDelta) GetDescription() string {
	return "Skeleton component count minus original component count (0 means topology kept)"
}

func (c *ComponentDelta) GetRange() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

func (c *ComponentDelta) IsHigherBetter() bool {
	return false
}

// Endpoints counts skeleton pixels with exactly one neighbour
type Endpoints struct{}

func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

func (e *Endpoints) Calculate(_, processed gocv.Mat) (float64, error) {
	g, err := toGrid(processed)
	if err != nil {
		return 0, err
	}
	return float64(skeleton.Endpoints(g)), nil
}

func (e *Endpoints) GetName() string {
	return "Endpoints"
}

func (e *Endpoints) GetDescription() string {
	return "Free ends of skeleton branches"
}

func (e *Endpoints) GetRange() (float64, float64) {
	return 0, math.Inf(1)
}

func (e *Endpoints) IsHigherBetter() bool {
	return false
}

// Junctions counts skeleton pixels joining three or more branches
type Junctions struct{}

func NewJunctions() *Junctions {
	return &Junctions{}
}

func (j *Junctions) Calculate(_, processed gocv.Mat) (float64, error) {
	g, err := toGrid(processed)
	if err != nil {
		return 0, err
	}
	return float64(skeleton.Junctions(g)), nil
}

func (j *Junctions) GetName() string {
	return "Junctions"
}

func (j *Junctions) GetDescription() string {
	return "Skeleton pixels with three or more neighbours"
}

func (j *Junctions) GetRange() (float64, float64) {
	return 0, math.Inf(1)
}

func (j *Junctions) IsHigherBetter() bool {
	return false
}

// MaxThickness is 1 for a one pixel wide skeleton, 2 when a solid 2x2 block remains, 0 when empty
type MaxThickness struct{}

func NewMaxThickness() *MaxThickness {
	return &MaxThickness{}
}

func (m *MaxThickness) Calculate(_, processed gocv.Mat) (float64, error) {
	g, err := toGrid(processed)
	if err != nil {
		return 0, err
	}

	switch {
	case g.Count() == 0:
		return 0, nil
	case skeleton.HasSolidBlock(g):
		return 2, nil
	default:
		return 1, nil
	}
}

func (m *MaxThickness) GetName() string {
	return "Max Thickness"
}

func (m *MaxThickness) GetDescription() string {
	return "Whether the skeleton is one pixel wide"
}

func (m *MaxThickness) GetRange() (float64, float64) {
	return 0, 2
}

func (m *MaxThickness) IsHigherBetter() bool {
	return false
}

func validatePair(original, processed gocv.Mat) error {
	if original.Empty() || processed.Empty() {
		return fmt.Errorf("empty image")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return fmt.Errorf("image size mismatch: %dx%d vs %dx%d",
			original.Cols(), original.Rows(), processed.Cols(), processed.Rows())
	}
	if original.Type() != gocv.MatTypeCV8UC1 || processed.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("metrics require 8-bit single-channel images")
	}
	return nil
}

// countComponents returns the number of 8-connected foreground components
func countComponents(mat gocv.Mat) int {
	labels := gocv.NewMat()
	defer labels.Close()

	// label 0 is the background
	return gocv.ConnectedComponents(mat, &labels) - 1
}

func toGrid(mat gocv.Mat) (*skeleton.Grid, error) {
	if mat.Empty() || mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("metrics require a non-empty 8-bit single-channel image")
	}
	if !mat.IsContinuous() {
		continuous := mat.Clone()
		defer continuous.Close()
		return skeleton.GridFromBytes(continuous.Cols(), continuous.Rows(), continuous.ToBytes())
	}
	return skeleton.GridFromBytes(mat.Cols(), mat.Rows(), mat.ToBytes())
}
