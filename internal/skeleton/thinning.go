// Iterative Zhang-Suen and Guo-Hall thinning over a binary grid
package skeleton

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// rows handed to one marking task; smaller images run on a single goroutine
const minRowsPerTask = 64

// Stats describes a finished thinning run
type Stats struct {
	Iterations int
	Removed    int
	Duration   time.Duration
}

// Thinner reduces binary blobs to one pixel wide skeletons
type Thinner struct {
	method        Method
	workers       int
	maxIterations int
	logger        logrus.FieldLogger
}

// Option configures a Thinner
type Option func(*Thinner)

// WithWorkers sets how many goroutines evaluate a marking phase. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(t *Thinner) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		t.workers = n
	}
}

// WithMaxIterations caps the number of full passes. 0 means run until convergence.
func WithMaxIterations(n int) Option {
	return func(t *Thinner) {
		if n < 0 {
			n = 0
		}
		t.maxIterations = n
	}
}

// WithLogger sets the logger used for per-run debug output
func WithLogger(logger logrus.FieldLogger) Option {
	return func(t *Thinner) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewThinner creates a thinner for the given method
func NewThinner(method Method, opts ...Option) (*Thinner, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("unknown thinning method: %d", int(method))
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	t := &Thinner{
		method:  method,
		workers: 1,
		logger:  discard,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Method returns the configured algorithm
func (t *Thinner) Method() Method {
	return t.method
}

// Thin skeletonizes g in place and returns run statistics.
//
// Every sub-iteration first marks all removable pixels against the current grid
// and only then clears them, so the result does not depend on scan order or on
// the number of workers. Pixels on the outer border are never removed.
func (t *Thinner) Thin(ctx context.Context, g *Grid) (Stats, error) {
	if g == nil || len(g.pix) != g.width*g.height {
		return Stats{}, fmt.Errorf("%w: nil or inconsistent grid", ErrInvalidGrid)
	}

	start := time.Now()
	stats := Stats{}
	marker := make([]uint8, len(g.pix))

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		removed := 0
		for sub := 0; sub < 2; sub++ {
			if err := t.mark(ctx, g, marker, sub); err != nil {
				return stats, err
			}
			removed += commit(g, marker)
		}

		stats.Iterations++
		stats.Removed += removed

		t.logger.WithFields(logrus.Fields{
			"method":    t.method.String(),
			"iteration": stats.Iterations,
			"removed":   removed,
		}).Debug("Thinning pass completed")

		if removed == 0 {
			break
		}
		if t.maxIterations > 0 && stats.Iterations >= t.maxIterations {
			t.logger.WithField("max_iterations", t.maxIterations).Warn("Thinning stopped before convergence")
			break
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// mark fills marker for interior rows, splitting the rows across workers
func (t *Thinner) mark(ctx context.Context, g *Grid, marker []uint8, sub int) error {
	first, last := 1, g.height-1
	rows := last - first
	if rows <= 0 || g.width < 3 {
		return nil
	}

	tasks := min(t.workers, (rows+minRowsPerTask-1)/minRowsPerTask)
	if tasks <= 1 {
		t.markRows(g, marker, sub, first, last)
		return nil
	}

	chunk := (rows + tasks - 1) / tasks
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(t.workers)
	for y0 := first; y0 < last; y0 += chunk {
		y1 := min(y0+chunk, last)
		eg.Go(func() error {
			t.markRows(g, marker, sub, y0, y1)
			return nil
		})
	}
	return eg.Wait()
}

// markRows evaluates rows [y0, y1) against a zeroed marker. Only entries of those rows are written.
func (t *Thinner) markRows(g *Grid, marker []uint8, sub, y0, y1 int) {
	w := g.width
	for y := y0; y < y1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			i := row + x
			if g.pix[i] == 0 {
				continue
			}

			p2, p3, p4, p5, p6, p7, p8, p9 := g.neighbours(x, y)
			var remove bool
			if t.method == GuoHall {
				remove = guoHallRemovable(sub, p2, p3, p4, p5, p6, p7, p8, p9)
			} else {
				remove = zhangSuenRemovable(sub, p2, p3, p4, p5, p6, p7, p8, p9)
			}

			if remove {
				marker[i] = 1
			}
		}
	}
}

// commit clears every marked pixel and resets the marker
func commit(g *Grid, marker []uint8) int {
	removed := 0
	for i, m := range marker {
		if m != 0 {
			g.pix[i] = 0
			marker[i] = 0
			removed++
		}
	}
	return removed
}

func zhangSuenRemovable(sub int, p2, p3, p4, p5, p6, p7, p8, p9 uint8) bool {
	b := int(p2) + int(p3) + int(p4) + int(p5) + int(p6) + int(p7) + int(p8) + int(p9)
	if b < 2 || b > 6 {
		return false
	}
	if transitions(p2, p3, p4, p5, p6, p7, p8, p9) != 1 {
		return false
	}

	if sub == 0 {
		return p2&p4&p6 == 0 && p4&p6&p8 == 0
	}
	return p2&p4&p8 == 0 && p2&p6&p8 == 0
}

func guoHallRemovable(sub int, p2, p3, p4, p5, p6, p7, p8, p9 uint8) bool {
	c := (p2^1)&(p3|p4) + (p4^1)&(p5|p6) + (p6^1)&(p7|p8) + (p8^1)&(p9|p2)
	if c != 1 {
		return false
	}

	n1 := (p9 | p2) + (p3 | p4) + (p5 | p6) + (p7 | p8)
	n2 := (p2 | p3) + (p4 | p5) + (p6 | p7) + (p8 | p9)
	n := min(n1, n2)
	if n < 2 || n > 3 {
		return false
	}

	var m uint8
	if sub == 0 {
		m = (p6 | p7 | (p9 ^ 1)) & p8
	} else {
		m = (p2 | p3 | (p5 ^ 1)) & p4
	}
	return m == 0
}

// transitions counts 0->1 changes walking P2..P9 and back to P2
func transitions(p2, p3, p4, p5, p6, p7, p8, p9 uint8) int {
	seq := [9]uint8{p2, p3, p4, p5, p6, p7, p8, p9, p2}
	n := 0
	for i := 0; i < 8; i++ {
		if seq[i] == 0 && seq[i+1] == 1 {
			n++
		}
	}
	return n
}
