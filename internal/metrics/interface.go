// Skeleton quality metrics comparing a binary image with its thinned result
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"gocv.io/x/gocv"
)

// Metric defines the interface for skeleton quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetDescription returns the metric description
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates a new metrics evaluator
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("foreground_ratio", NewForegroundRatio())
	e.Register("component_delta", NewComponentDelta())
	e.Register("endpoints", NewEndpoints())
	e.Register("junctions", NewJunctions())
	e.Register("max_thickness", NewMaxThickness())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := lo.Keys(e.metrics)
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics, skipping the ones that fail
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		min, max := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{min, max},
			HigherBetter: metric.IsHigherBetter(),
		}
	}

	return info
}

// QualityReport contains the metrics of one thinning run and what looks wrong with it
type QualityReport struct {
	Metrics   map[string]float64 `json:"metrics"`
	Issues    []string           `json:"issues"`
	Timestamp string             `json:"timestamp"`
}

// GenerateReport calculates all metrics and flags topology or width problems
func (e *Evaluator) GenerateReport(original, processed gocv.Mat) QualityReport {
	metrics := e.CalculateAll(original, processed)
	issues := make([]string, 0)

	if delta, exists := metrics["component_delta"]; exists && delta != 0 {
		issues = append(issues, fmt.Sprintf("Component count changed by %+.0f; small or 2x2 blobs may have been erased", delta))
	}

	if thickness, exists := metrics["max_thickness"]; exists && thickness > 1 {
		issues = append(issues, "Skeleton is wider than one pixel; thinning may have been stopped early")
	}

	if ratio, exists := metrics["foreground_ratio"]; exists && ratio == 0 {
		issues = append(issues, "Skeleton is empty")
	}

	return QualityReport{
		Metrics:   metrics,
		Issues:    issues,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}
