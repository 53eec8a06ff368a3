// Sequential processing pipeline: binarization, morphology and thinning steps
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-skeleton/internal/algorithms"
	"image-skeleton/internal/metrics"
)

// ProcessingStep represents a sequential processing step
type ProcessingStep struct {
	Algorithm  string
	Parameters map[string]interface{}
	Enabled    bool
}

// StepResult records one executed step
type StepResult struct {
	Algorithm string
	Duration  time.Duration
}

// Result is the outcome of Pipeline.Run. The caller owns Output and must close it.
type Result struct {
	Output gocv.Mat
	Steps  []StepResult
	// Metrics compare Output with the input of the last executed step
	Metrics  map[string]float64
	Duration time.Duration
}

// Pipeline runs registered algorithms one after another
type Pipeline struct {
	steps       []ProcessingStep
	metricsEval *metrics.Evaluator
	logger      logrus.FieldLogger
	withMetrics bool
	region      Region
}

// NewPipeline creates an empty pipeline. A nil logger discards output.
func NewPipeline(logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Pipeline{
		steps:       make([]ProcessingStep, 0),
		metricsEval: metrics.NewEvaluator(),
		logger:      logger,
	}
}

// SetMetrics enables metric calculation after Run
func (p *Pipeline) SetMetrics(enabled bool) {
	p.withMetrics = enabled
}

// SetRegion restricts Run to region; pixels outside it are copied from the input.
// A zero Region processes the whole image.
func (p *Pipeline) SetRegion(region Region) {
	p.region = region
}

// AddStep validates and appends an enabled step
func (p *Pipeline) AddStep(algorithm string, parameters map[string]interface{}) error {
	return p.addStep(ProcessingStep{Algorithm: algorithm, Parameters: parameters, Enabled: true})
}

// AddDisabledStep appends a step that Run skips
func (p *Pipeline) AddDisabledStep(algorithm string, parameters map[string]interface{}) error {
	return p.addStep(ProcessingStep{Algorithm: algorithm, Parameters: parameters, Enabled: false})
}

func (p *Pipeline) addStep(step ProcessingStep) error {
	if !algorithms.IsValidAlgorithm(step.Algorithm) {
		return fmt.Errorf("unknown algorithm: %s", step.Algorithm)
	}

	if step.Parameters == nil {
		step.Parameters = map[string]interface{}{}
	}

	if err := algorithms.ValidateParameters(step.Algorithm, step.Parameters); err != nil {
		return fmt.Errorf("invalid parameters for %s: %w", step.Algorithm, err)
	}

	p.steps = append(p.steps, step)
	p.logger.WithFields(logrus.Fields{
		"algorithm": step.Algorithm,
		"enabled":   step.Enabled,
		"position":  len(p.steps) - 1,
	}).Debug("Pipeline step added")

	return nil
}

// GetSteps returns a copy of the configured steps
func (p *Pipeline) GetSteps() []ProcessingStep {
	steps := make([]ProcessingStep, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// Clear removes all steps
func (p *Pipeline) Clear() {
	p.steps = p.steps[:0]
}

// Run applies the enabled steps to input in order. input is not modified.
func (p *Pipeline) Run(ctx context.Context, input gocv.Mat) (Result, error) {
	if err := ValidateImage(input); err != nil {
		return Result{}, err
	}

	if p.region.IsZero() {
		return p.run(ctx, input)
	}
	return p.runRegion(ctx, input)
}

// runRegion processes the region's bounding box and pastes the covered pixels back
func (p *Pipeline) runRegion(ctx context.Context, input gocv.Mat) (Result, error) {
	bounds, err := p.region.clip(input.Cols(), input.Rows())
	if err != nil {
		return Result{}, err
	}

	sub := input.Region(bounds)
	defer sub.Close()

	result, err := p.run(ctx, sub)
	if err != nil {
		return Result{}, err
	}
	defer result.Output.Close()

	if result.Output.Type() != input.Type() {
		return Result{}, fmt.Errorf("region output type %v differs from input type %v", result.Output.Type(), input.Type())
	}

	full := input.Clone()
	target := full.Region(bounds)
	defer target.Close()

	if p.region.IsPolygon() {
		mask, err := p.region.mask(bounds)
		if err != nil {
			full.Close()
			return Result{}, err
		}
		defer mask.Close()
		result.Output.CopyToWithMask(&target, mask)
	} else {
		result.Output.CopyTo(&target)
	}

	p.logger.WithFields(logrus.Fields{
		"region": p.region.String(),
		"bounds": bounds.String(),
	}).Debug("Region processed")

	return Result{
		Output:   full,
		Steps:    result.Steps,
		Metrics:  result.Metrics,
		Duration: result.Duration,
	}, nil
}

func (p *Pipeline) run(ctx context.Context, input gocv.Mat) (Result, error) {
	start := time.Now()
	current := input.Clone()
	reference := gocv.NewMat()
	defer reference.Close()

	results := make([]StepResult, 0, len(p.steps))

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			current.Close()
			p.logger.WithField("step", i).Debug("Pipeline cancelled")
			return Result{}, err
		}

		if !step.Enabled {
			p.logger.WithFields(logrus.Fields{"step": i, "algorithm": step.Algorithm}).Debug("Skipping disabled step")
			continue
		}

		stepStart := time.Now()
		output, err := algorithms.Apply(step.Algorithm, current, step.Parameters)
		if err != nil {
			current.Close()
			p.logger.WithFields(logrus.Fields{
				"step":      i,
				"algorithm": step.Algorithm,
				"error":     err,
			}).Error("Pipeline step failed")
			return Result{}, fmt.Errorf("step %d (%s): %w", i, step.Algorithm, err)
		}

		duration := time.Since(stepStart)
		results = append(results, StepResult{Algorithm: step.Algorithm, Duration: duration})
		p.logger.WithFields(logrus.Fields{
			"step":        i,
			"algorithm":   step.Algorithm,
			"duration_ms": duration.Milliseconds(),
		}).Debug("Pipeline step completed")

		reference.Close()
		reference = current
		current = output
	}

	result := Result{
		Output:   current,
		Steps:    results,
		Duration: time.Since(start),
	}

	if p.withMetrics && !reference.Empty() {
		result.Metrics = p.metricsEval.CalculateAll(reference, current)
	}

	p.logger.WithFields(logrus.Fields{
		"steps":       len(results),
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Pipeline completed")

	return result, nil
}

// ProcessImage runs the pipeline on the original image held by data and stores a copy of the output as processed
func (p *Pipeline) ProcessImage(ctx context.Context, data *ImageData) (Result, error) {
	if !data.HasImage() {
		return Result{}, fmt.Errorf("no image loaded")
	}

	original := data.GetOriginal()
	defer original.Close()

	result, err := p.Run(ctx, original)
	if err != nil {
		return Result{}, err
	}

	if err := data.SetProcessed(result.Output); err != nil {
		result.Output.Close()
		return Result{}, err
	}

	return result, nil
}
