package tasks

import (
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
	"github.com/wricardo/gridworld/game/pathfind"
)

// Sprinkling places an entity on a cell with probability Pct
type Sprinkling struct {
	Pct float64
	New func(loc engine.Location) engine.Entity
}

// Sprinkle visits each candidate cell (every empty cell when cells is nil)
// and places at most one entity there, trying the sprinklings in random
// order. It returns the ids of the placed entities.
func Sprinkle(g *engine.GameEngine, sprinklings []Sprinkling, cells []engine.Location) ([]string, error) {
	if cells == nil {
		cells = EmptyLocations(g.World(), nil, nil)
	}
	rng := g.Rand()
	order := make([]Sprinkling, len(sprinklings))
	copy(order, sprinklings)

	var ids []string
	for _, loc := range cells {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, s := range order {
			if rng.Float64() < s.Pct {
				id, err := g.World().Add(s.New(loc), "")
				if err != nil {
					return ids, err
				}
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

// EmptyLocations lists cells in row-major order. With a nil avoid predicate
// a cell must hold no entity at all; otherwise it must hold no entity
// matching avoid. A non-nil mask further restricts the cells.
func EmptyLocations(w *engine.World, avoid func(engine.Entity) bool, mask func(engine.Location) bool) []engine.Location {
	var out []engine.Location
	for y := 0; y < w.Height(); y++ {
		for x := 0; x < w.Width(); x++ {
			loc := engine.Loc(x, y)
			if mask != nil && !mask(loc) {
				continue
			}
			if avoid == nil {
				if len(w.EntitiesAt(loc)) == 0 {
					out = append(out, loc)
				}
				continue
			}
			if w.FindFirst(loc, avoid) == nil {
				out = append(out, loc)
			}
		}
	}
	return out
}

// Choose picks a random element. An empty list is a construction failure.
func Choose[T any](g *engine.GameEngine, list []T) (T, error) {
	var zero T
	if len(list) == 0 {
		return zero, engine.Unsatisfiable("choose from empty list")
	}
	return list[g.Rand().Intn(len(list))], nil
}

// Avoiding builds an avoid predicate from entity predicates
func Avoiding(preds ...func(engine.Entity) bool) func(engine.Entity) bool {
	return func(e engine.Entity) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// PushBlockGrid describes how a pushable block can travel: a move is legal
// when the destination is free of blocks and the cell behind the block,
// where the pushing agent stands, is on the grid and free of blocks.
func PushBlockGrid(w *engine.World) pathfind.Grid {
	return pathfind.Grid{
		Width:  w.Width(),
		Height: w.Height(),
		CanTraverse: func(from, to pathfind.Point) bool {
			behind := pathfind.Point{X: 2*from.X - to.X, Y: 2*from.Y - to.Y}
			return w.InBounds(behind) &&
				!hasBlock(w, to) &&
				!hasBlock(w, behind)
		},
	}
}

func hasBlock(w *engine.World, loc engine.Location) bool {
	return w.FindFirst(loc, items.IsBlock) != nil
}

// PushWaypoints converts a block path into the cells the agent must stand
// on to push the block along it
func PushWaypoints(res pathfind.Result, start, end engine.Location) []engine.Location {
	path := res.Path(end)
	if len(path) == 0 || path[0] != start {
		return nil
	}
	waypoints := make([]engine.Location, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		cur, next := path[i], path[i+1]
		waypoints = append(waypoints, engine.Loc(2*cur.X-next.X, 2*cur.Y-next.Y))
	}
	return waypoints
}

// AddWall splits the map with a straight wall of blocks that has a single
// opening. dim is the axis the wall runs along: 0 builds a horizontal wall
// (constant y), 1 a vertical one. It returns the opening and dim.
func AddWall(g *engine.GameEngine) (engine.Location, int, error) {
	w := g.World()
	size := [2]int{w.Width(), w.Height()}
	dim := g.Rand().Intn(2)
	if size[1-dim] < 3 {
		return engine.Location{}, 0, engine.Unsatisfiable("map too small for a wall")
	}
	line := 1 + g.Rand().Intn(size[1-dim]-2)
	opening := g.Rand().Intn(size[dim])

	at := func(i int) engine.Location {
		c := [2]int{line, line}
		c[dim] = i
		return engine.Loc(c[0], c[1])
	}
	for i := 0; i < size[dim]; i++ {
		if i == opening {
			continue
		}
		if _, err := w.Add(items.NewBlock(at(i)), ""); err != nil {
			return engine.Location{}, 0, err
		}
	}
	return at(opening), dim, nil
}

// constructFunc adapts a function to engine.Constructor
type constructFunc func(g *engine.GameEngine) error

func (f constructFunc) Construct(g *engine.GameEngine) error { return f(g) }
