package skeleton

// Components returns the number of 8-connected foreground components
func Components(g *Grid) int {
	seen := make([]bool, len(g.pix))
	stack := make([]int, 0, 64)
	count := 0

	for start, v := range g.pix {
		if v == 0 || seen[start] {
			continue
		}
		count++
		seen[start] = true
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%g.width, i/g.width

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if !g.At(nx, ny) {
						continue
					}
					j := ny*g.width + nx
					if !seen[j] {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
	}

	return count
}

// NeighbourCount returns how many of the 8 neighbours of (x, y) are foreground
func NeighbourCount(g *Grid, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && g.At(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// Endpoints counts foreground pixels with exactly one foreground neighbour
func Endpoints(g *Grid) int {
	return countByNeighbours(g, func(n int) bool { return n == 1 })
}

// Junctions counts foreground pixels where three or more branches meet
func Junctions(g *Grid) int {
	return countByNeighbours(g, func(n int) bool { return n >= 3 })
}

func countByNeighbours(g *Grid, match func(int) bool) int {
	count := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.At(x, y) && match(NeighbourCount(g, x, y)) {
				count++
			}
		}
	}
	return count
}

// HasSolidBlock reports whether any 2x2 block is fully foreground,
// which a one pixel wide skeleton never contains
func HasSolidBlock(g *Grid) bool {
	for y := 0; y+1 < g.height; y++ {
		for x := 0; x+1 < g.width; x++ {
			if g.At(x, y) && g.At(x+1, y) && g.At(x, y+1) && g.At(x+1, y+1) {
				return true
			}
		}
	}
	return false
}
