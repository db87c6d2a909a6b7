package engine

import (
	"math"

	"github.com/wricardo/gridworld/game/pathfind"
)

// PotentialMap holds the per-cell approximate reward of landing on a cell.
// It is built once per episode and read by the reward estimate searches.
type PotentialMap struct {
	width  int
	height int
	values []float64
}

func newPotentialMap(width, height int, seed float64) *PotentialMap {
	values := make([]float64, width*height)
	for i := range values {
		values[i] = seed
	}
	return &PotentialMap{width: width, height: height, values: values}
}

func (p *PotentialMap) inBounds(loc Location) bool {
	return loc.X >= 0 && loc.Y >= 0 && loc.X < p.width && loc.Y < p.height
}

// At returns the potential of loc, or 0 outside the grid
func (p *PotentialMap) At(loc Location) float64 {
	if !p.inBounds(loc) {
		return 0
	}
	return p.values[loc.Y*p.width+loc.X]
}

// Set overwrites the potential of loc
func (p *PotentialMap) Set(loc Location, v float64) {
	if p.inBounds(loc) {
		p.values[loc.Y*p.width+loc.X] = v
	}
}

// Add shifts the potential of loc by delta
func (p *PotentialMap) Add(loc Location, delta float64) {
	if p.inBounds(loc) {
		p.values[loc.Y*p.width+loc.X] += delta
	}
}

// Override temporarily sets loc to value while fn runs, then restores it.
// Estimators use it to ask whether a path exists that avoids a
// conditionally passable cell.
func (p *PotentialMap) Override(loc Location, value float64, fn func()) {
	if !p.inBounds(loc) {
		fn()
		return
	}
	i := loc.Y*p.width + loc.X
	saved := p.values[i]
	p.values[i] = value
	defer func() { p.values[i] = saved }()
	fn()
}

// Estimate approximates the reward of walking from one cell to another
// along the potential map. It returns -Inf when to is unreachable.
func Estimate(g *GameEngine, from, to Location) float64 {
	return EstimateOn(g, WalkGrid(g.world), from, to)
}

// EstimateOn is Estimate over a caller-supplied adjacency
func EstimateOn(g *GameEngine, grid pathfind.Grid, from, to Location) float64 {
	grid.Potential = g.potential.At
	res := pathfind.Search(grid, from, pathfind.Potential)
	d, ok := res.Distance(to)
	if !ok {
		return math.Inf(-1)
	}
	return -d
}

// Reachable runs a unit-cost walk search from start
func Reachable(g *GameEngine, start Location) pathfind.Result {
	return pathfind.Search(WalkGrid(g.world), start, pathfind.Unit)
}
