// Global Otsu binarization
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// OtsuThreshold binarizes with a single global threshold chosen by Otsu's method
type OtsuThreshold struct{}

// NewOtsuThreshold creates a new Otsu algorithm
func NewOtsuThreshold() *OtsuThreshold {
	return &OtsuThreshold{}
}

func (o *OtsuThreshold) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: input image is empty", ErrInvalidArgument)
	}

	// Convert to grayscale if needed
	gray := ensureGrayscale(input)
	defer func() {
		if gray.Ptr() != input.Ptr() {
			gray.Close()
		}
	}()

	threshType := gocv.ThresholdBinary
	if boolParam(params, "invert", false) {
		threshType = gocv.ThresholdBinaryInv
	}

	output := gocv.NewMat()
	gocv.Threshold(gray, &output, 0, 255, threshType|gocv.ThresholdOtsu)
	return output, nil
}

func (o *OtsuThreshold) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"invert": false,
	}
}

func (o *OtsuThreshold) GetName() string {
	return "Otsu"
}

func (o *OtsuThreshold) GetDescription() string {
	return "Global Otsu thresholding to produce a binary blob image"
}

func (o *OtsuThreshold) Validate(params map[string]interface{}) error {
	if val, ok := params["invert"]; ok {
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("invert must be a boolean")
		}
	}
	return nil
}

func (o *OtsuThreshold) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "invert",
			Type:        "bool",
			Default:     false,
			Description: "Mark dark pixels as foreground (dark ink on light paper)",
		},
	}
}
