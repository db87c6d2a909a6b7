package pathfind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockedGrid(w, h int, blocked ...Point) Grid {
	wall := make(map[Point]bool, len(blocked))
	for _, b := range blocked {
		wall[b] = true
	}
	return Grid{
		Width:  w,
		Height: h,
		CanTraverse: func(_, to Point) bool {
			return !wall[to]
		},
	}
}

func TestSearchUnitOpenGrid(t *testing.T) {
	res := Search(blockedGrid(5, 5), Point{0, 0}, Unit)

	d, ok := res.Distance(Point{4, 4})
	require.True(t, ok)
	assert.Equal(t, 8.0, d)
	assert.Len(t, res.Dist, 25)

	path := res.Path(Point{4, 4})
	require.Len(t, path, 9)
	assert.Equal(t, Point{0, 0}, path[0])
	assert.Equal(t, Point{4, 4}, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		dx := math.Abs(float64(path[i].X - path[i-1].X))
		dy := math.Abs(float64(path[i].Y - path[i-1].Y))
		assert.Equal(t, 1.0, dx+dy, "step %d is not a unit move", i)
	}
}

func TestSearchEnclosedCellUnreachable(t *testing.T) {
	g := blockedGrid(5, 5, Point{1, 2}, Point{3, 2}, Point{2, 1}, Point{2, 3})
	res := Search(g, Point{0, 0}, Unit)

	assert.False(t, res.Reachable(Point{2, 2}))
	assert.Nil(t, res.Path(Point{2, 2}))

	d, ok := res.Distance(Point{4, 4})
	require.True(t, ok)
	assert.Equal(t, 8.0, d)
}

func TestSearchStartOutOfBounds(t *testing.T) {
	start := Point{-1, 3}
	res := Search(blockedGrid(3, 3), start, Unit)

	assert.Equal(t, map[Point]float64{start: 0}, res.Dist)
	assert.Empty(t, res.Prev)
}

func TestSearchPotentialWeights(t *testing.T) {
	// Uniform potential of -0.1 per cell makes every step cost 0.1.
	g := blockedGrid(4, 1)
	g.Potential = func(Point) float64 { return -0.1 }

	res := Search(g, Point{0, 0}, Potential)
	d, ok := res.Distance(Point{3, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.3, d, 1e-9)
}

func TestSearchPotentialPrefersCheapCells(t *testing.T) {
	// A 3x2 grid where the direct row is expensive water and the detour is cheap.
	water := map[Point]bool{{1, 0}: true}
	g := blockedGrid(3, 2)
	g.Potential = func(p Point) float64 {
		if water[p] {
			return -10
		}
		return -0.1
	}

	res := Search(g, Point{0, 0}, Potential)
	d, ok := res.Distance(Point{2, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.4, d, 1e-9)
	assert.Equal(t, []Point{{0, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 0}}, res.Path(Point{2, 0}))
}

func TestSearchRespectsDirectionalTraversal(t *testing.T) {
	// Only eastward moves are allowed.
	g := Grid{
		Width:  3,
		Height: 1,
		CanTraverse: func(from, to Point) bool {
			return to.X > from.X
		},
	}
	res := Search(g, Point{1, 0}, Unit)
	assert.True(t, res.Reachable(Point{2, 0}))
	assert.False(t, res.Reachable(Point{0, 0}))
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Unit, "unit"},
		{Potential, "potential"},
		{Mode(9), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}
