package skeleton

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridFromArt builds a grid from rows of '#' (foreground) and '.' (background)
func gridFromArt(t *testing.T, art string) *Grid {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(art), "\n")
	g, err := NewGrid(len(strings.TrimSpace(lines[0])), len(lines))
	require.NoError(t, err)
	for y, line := range lines {
		for x, c := range strings.TrimSpace(line) {
			g.Set(x, y, c == '#')
		}
	}
	return g
}

func rectGrid(t *testing.T, width, height int, rects ...[4]int) *Grid {
	t.Helper()
	g, err := NewGrid(width, height)
	require.NoError(t, err)
	for _, r := range rects {
		for y := r[1]; y < r[1]+r[3]; y++ {
			for x := r[0]; x < r[0]+r[2]; x++ {
				g.Set(x, y, true)
			}
		}
	}
	return g
}

func ringGrid(t *testing.T) *Grid {
	t.Helper()
	g := rectGrid(t, 16, 16, [4]int{2, 2, 12, 12})
	for y := 5; y < 11; y++ {
		for x := 5; x < 11; x++ {
			g.Set(x, y, false)
		}
	}
	return g
}

func thin(t *testing.T, method Method, g *Grid, opts ...Option) Stats {
	t.Helper()
	thinner, err := NewThinner(method, opts...)
	require.NoError(t, err)
	stats, err := thinner.Thin(context.Background(), g)
	require.NoError(t, err)
	return stats
}

var methods = []Method{ZhangSuen, GuoHall}

func TestThin_SinglePixelUnchanged(t *testing.T) {
	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			g := rectGrid(t, 5, 5, [4]int{2, 2, 1, 1})
			stats := thin(t, m, g)

			assert.True(t, g.At(2, 2))
			assert.Equal(t, 1, g.Count())
			assert.Equal(t, 0, stats.Removed)
			assert.Equal(t, 1, stats.Iterations)
		})
	}
}

func TestThin_FilledSquare(t *testing.T) {
	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			g := rectGrid(t, 9, 9, [4]int{2, 2, 5, 5})
			stats := thin(t, m, g)

			assert.Equal(t, 1, g.Count())
			assert.True(t, g.At(4, 4))
			assert.Equal(t, 24, stats.Removed)
			assert.Equal(t, 3, stats.Iterations)
		})
	}
}

func TestThin_Rectangle(t *testing.T) {
	tests := []struct {
		method Method
		want   string
	}{
		{
			method: ZhangSuen,
			want: `
				....................
				....................
				....................
				....................
				....................
				......########......
				....................
				....................
				....................
				....................
				....................
				....................`,
		},
		{
			method: GuoHall,
			want: `
				....................
				....................
				....................
				....................
				....................
				......#########.....
				....................
				....................
				....................
				....................
				....................
				....................`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			g := rectGrid(t, 20, 12, [4]int{2, 2, 16, 8})
			thin(t, tt.method, g)
			assert.True(t, gridFromArt(t, tt.want).Equal(g))
		})
	}
}

func TestThin_TwoByTwoBlock(t *testing.T) {
	zs := rectGrid(t, 6, 6, [4]int{2, 2, 2, 2})
	thin(t, ZhangSuen, zs)
	assert.Equal(t, 0, zs.Count(), "zhang-suen erodes 2x2 blocks completely")

	gh := rectGrid(t, 6, 6, [4]int{2, 2, 2, 2})
	thin(t, GuoHall, gh)
	assert.Equal(t, 1, gh.Count())
}

func TestThin_PreservesComponents(t *testing.T) {
	shapes := map[string]func(t *testing.T) *Grid{
		"ring": ringGrid,
		"two blobs": func(t *testing.T) *Grid {
			return rectGrid(t, 24, 14, [4]int{2, 2, 8, 5}, [4]int{13, 3, 7, 9})
		},
		"plus": func(t *testing.T) *Grid {
			return rectGrid(t, 15, 15, [4]int{2, 6, 11, 3}, [4]int{6, 2, 3, 11})
		},
	}

	for name, build := range shapes {
		for _, m := range methods {
			t.Run(name+"/"+m.String(), func(t *testing.T) {
				g := build(t)
				before := Components(g)
				thin(t, m, g)

				assert.Equal(t, before, Components(g))
				assert.Positive(t, g.Count())
				assert.False(t, HasSolidBlock(g))
			})
		}
	}
}

func TestThin_RingKeepsHole(t *testing.T) {
	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			g := ringGrid(t)
			thin(t, m, g)

			assert.False(t, g.At(7, 7))
			assert.Equal(t, 0, Endpoints(g), "a closed loop has no free ends")
		})
	}
}

func TestThin_Idempotent(t *testing.T) {
	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			g := ringGrid(t)
			thin(t, m, g)
			once := g.Clone()

			stats := thin(t, m, g)
			assert.True(t, once.Equal(g))
			assert.Equal(t, 0, stats.Removed)
		})
	}
}

func TestThin_WorkerCountDoesNotChangeResult(t *testing.T) {
	build := func() *Grid {
		g := rectGrid(t, 300, 300,
			[4]int{10, 10, 120, 40},
			[4]int{40, 60, 30, 200},
			[4]int{150, 20, 100, 100},
			[4]int{160, 180, 120, 90},
		)
		for y := 0; y < 300; y++ {
			for x := 0; x < 300; x++ {
				dx, dy := x-220, y-230
				if dx*dx+dy*dy < 35*35 {
					g.Set(x, y, false)
				}
			}
		}
		return g
	}

	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			serial := build()
			serialStats := thin(t, m, serial, WithWorkers(1))

			parallel := build()
			parallelStats := thin(t, m, parallel, WithWorkers(4))

			assert.True(t, serial.Equal(parallel))
			assert.Equal(t, serialStats.Removed, parallelStats.Removed)
			assert.Equal(t, serialStats.Iterations, parallelStats.Iterations)
		})
	}
}

func TestThin_BorderPixelsKept(t *testing.T) {
	g := rectGrid(t, 6, 6, [4]int{0, 0, 6, 6})
	thin(t, ZhangSuen, g)

	for i := 0; i < 6; i++ {
		assert.True(t, g.At(i, 0))
		assert.True(t, g.At(i, 5))
		assert.True(t, g.At(0, i))
		assert.True(t, g.At(5, i))
	}
}

func TestThin_OutputIsBinary(t *testing.T) {
	data := make([]byte, 12*12)
	for i := range data {
		data[i] = byte(i * 7)
	}
	g, err := GridFromBytes(12, 12, data)
	require.NoError(t, err)
	thin(t, GuoHall, g)

	for _, v := range g.Bytes() {
		assert.Contains(t, []byte{Background, Foreground}, v)
	}
}

func TestThin_MaxIterations(t *testing.T) {
	g := rectGrid(t, 9, 9, [4]int{2, 2, 5, 5})
	stats := thin(t, ZhangSuen, g, WithMaxIterations(1))

	assert.Equal(t, 1, stats.Iterations)
	assert.Greater(t, g.Count(), 1)
}

func TestThin_Cancelled(t *testing.T) {
	thinner, err := NewThinner(GuoHall)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := rectGrid(t, 9, 9, [4]int{2, 2, 5, 5})
	_, err = thinner.Thin(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 25, g.Count())
}

func TestThin_InvalidInput(t *testing.T) {
	_, err := NewThinner(Method(7))
	assert.Error(t, err)

	thinner, err := NewThinner(ZhangSuen)
	require.NoError(t, err)
	_, err = thinner.Thin(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "zhang_suen", want: ZhangSuen},
		{in: "Zhang-Suen", want: ZhangSuen},
		{in: "zs", want: ZhangSuen},
		{in: " guo_hall ", want: GuoHall},
		{in: "GH", want: GuoHall},
		{in: "medial_axis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
