// Algorithm registry for binarization, morphology and thinning operations
package algorithms

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"gocv.io/x/gocv"
)

// ErrInvalidArgument marks errors caused by unsupported images or parameters
var ErrInvalidArgument = errors.New("invalid argument")

// Algorithm defines the interface for image processing algorithms
type Algorithm interface {
	Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for config and CLI help output
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float", "bool", "string", "enum"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
	Options     []string    `json:"options,omitempty"` // For enum type
}

var (
	registryMu sync.RWMutex
	algorithms = make(map[string]Algorithm)
)

func Register(name string, algorithm Algorithm) {
	registryMu.Lock()
	defer registryMu.Unlock()
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

func Apply(name string, input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	algorithm, exists := Get(name)
	if !exists {
		return gocv.NewMat(), fmt.Errorf("algorithm not found: %s", name)
	}

	if err := algorithm.Validate(params); err != nil {
		return gocv.NewMat(), fmt.Errorf("%s: %w", name, err)
	}

	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := Get(name)
	if !exists {
		return fmt.Errorf("algorithm not found: %s", name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := Get(name)
	return exists
}

// Names returns the registered algorithm names in sorted order
func Names() []string {
	registryMu.RLock()
	names := lo.Keys(algorithms)
	registryMu.RUnlock()

	sort.Strings(names)
	return names
}

func GetAlgorithmsByCategory() map[string][]string {
	return map[string][]string{
		"Binarization": {
			"otsu",
			"niblack",
			"sauvola",
			"wolf",
			"nick",
		},
		"Morphology": {
			"erosion",
			"dilation",
			"opening",
			"closing",
		},
		"Thinning": {
			"thinning",
		},
	}
}

func init() {
	Register("otsu", NewOtsuThreshold())

	// Register local binarization algorithms
	Register("niblack", NewLocalThreshold(BinarizationNiblack))
	Register("sauvola", NewLocalThreshold(BinarizationSauvola))
	Register("wolf", NewLocalThreshold(BinarizationWolf))
	Register("nick", NewLocalThreshold(BinarizationNICK))

	// Register morphological algorithms
	Register("erosion", NewErosion())
	Register("dilation", NewDilation())
	Register("opening", NewOpening())
	Register("closing", NewClosing())

	Register("thinning", NewThinningAlgorithm())
}
