package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents(t *testing.T) {
	tests := []struct {
		name string
		art  string
		want int
	}{
		{
			name: "empty",
			art: `
				.....
				.....`,
			want: 0,
		},
		{
			name: "diagonal touch is connected",
			art: `
				#....
				.#...
				..#.#`,
			want: 2,
		},
		{
			name: "separate blobs",
			art: `
				##..#
				##..#
				.....
				#####`,
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Components(gridFromArt(t, tt.art)))
		})
	}
}

func TestEndpointsAndJunctions(t *testing.T) {
	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			line := rectGrid(t, 20, 12, [4]int{2, 2, 16, 8})
			thin(t, m, line)
			assert.Equal(t, 2, Endpoints(line))
			assert.Equal(t, 0, Junctions(line))

			plus := rectGrid(t, 15, 15, [4]int{2, 6, 11, 3}, [4]int{6, 2, 3, 11})
			thin(t, m, plus)
			assert.Equal(t, 4, Endpoints(plus))
			assert.Equal(t, 5, Junctions(plus))
		})
	}
}

func TestHasSolidBlock(t *testing.T) {
	assert.True(t, HasSolidBlock(gridFromArt(t, `
		.##.
		.##.`)))
	assert.False(t, HasSolidBlock(gridFromArt(t, `
		.#..
		..#.
		.##.`)))
}

func TestGridFromBytes(t *testing.T) {
	g, err := GridFromBytes(4, 1, []byte{0, 127, 128, 255})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255, 255}, g.Bytes())

	_, err = GridFromBytes(4, 2, []byte{0, 1})
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = NewGrid(0, 3)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}
