// Package pathfind implements the weighted shortest-path search used by the
// gridworld engine for reachability checks and reward estimation.
//
// The search runs over a 4-connected rectangular grid. Callers describe the
// graph with a Grid value: an adjacency predicate deciding which cardinal
// moves are legal, and a potential function used as the edge weight source in
// Potential mode.
//
// Usage:
//
//	res := pathfind.Search(pathfind.Grid{
//		Width:  5,
//		Height: 5,
//		CanTraverse: func(from, to pathfind.Point) bool {
//			return !blocked[to]
//		},
//	}, pathfind.Point{X: 0, Y: 0}, pathfind.Unit)
//
//	if d, ok := res.Distance(pathfind.Point{X: 4, Y: 4}); ok {
//		fmt.Println("distance", d)
//	}
//
// Negative weights:
//
// In Potential mode the cost of entering a cell is the negated potential of
// that cell, which can be negative. The search still uses greedy
// priority-first relaxation, so with negative weights the result is an
// estimate rather than a guaranteed shortest path. Reward estimates built on
// top of this package depend on that exact behaviour.
package pathfind
