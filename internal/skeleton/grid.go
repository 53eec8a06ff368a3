// Binary pixel grid shared by the thinning kernel and connectivity analysis
package skeleton

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned when grid dimensions or backing data are inconsistent
var ErrInvalidGrid = errors.New("invalid grid")

const (
	// Foreground is the 8-bit value written for set pixels
	Foreground uint8 = 255
	// Background is the 8-bit value written for cleared pixels
	Background uint8 = 0

	// bytes at or above this value are read as foreground (255 scaled to 1 with rounding)
	foregroundCutoff = 128
)

// Grid is a binary image stored row-major, one state byte (0 or 1) per pixel
type Grid struct {
	width  int
	height int
	pix    []uint8
}

// NewGrid creates an empty grid of the given size
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, width, height)
	}

	return &Grid{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}, nil
}

// GridFromBytes builds a grid from row-major 8-bit intensities
func GridFromBytes(width, height int, data []byte) (*Grid, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidGrid, width*height, len(data))
	}

	for i, v := range data {
		if v >= foregroundCutoff {
			g.pix[i] = 1
		}
	}

	return g, nil
}

// Width returns the grid width in pixels
func (g *Grid) Width() int {
	return g.width
}

// Height returns the grid height in pixels
func (g *Grid) Height() int {
	return g.height
}

// At reports whether the pixel is foreground. Out of range reads are background.
func (g *Grid) At(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return false
	}
	return g.pix[y*g.width+x] != 0
}

// Set sets or clears a pixel. Out of range writes are ignored.
func (g *Grid) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	g.pix[y*g.width+x] = v
}

// Count returns the number of foreground pixels
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.pix {
		n += int(v)
	}
	return n
}

// Bytes returns the grid as row-major 8-bit data holding only Foreground and Background
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.pix))
	for i, v := range g.pix {
		if v != 0 {
			out[i] = Foreground
		}
	}
	return out
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	pix := make([]uint8, len(g.pix))
	copy(pix, g.pix)
	return &Grid{width: g.width, height: g.height, pix: pix}
}

// Equal reports whether both grids have the same size and pixels
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.pix {
		if g.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// neighbours returns P2..P9 of (x, y) clockwise from north. Callers keep (x, y) off the border.
func (g *Grid) neighbours(x, y int) (p2, p3, p4, p5, p6, p7, p8, p9 uint8) {
	w := g.width
	up := (y-1)*w + x
	mid := y*w + x
	down := (y+1)*w + x

	p2 = g.pix[up]
	p3 = g.pix[up+1]
	p4 = g.pix[mid+1]
	p5 = g.pix[down+1]
	p6 = g.pix[down]
	p7 = g.pix[down-1]
	p8 = g.pix[mid-1]
	p9 = g.pix[up-1]
	return
}
