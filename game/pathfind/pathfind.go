package pathfind

import "container/heap"

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Mode selects how edge weights are computed.
type Mode int

const (
	// Unit costs 1 per step.
	Unit Mode = iota
	// Potential costs the negated potential of the destination cell.
	Potential
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Unit:
		return "unit"
	case Potential:
		return "potential"
	default:
		return "unknown"
	}
}

// Cardinal lists the neighbour offsets in the order they are relaxed.
var Cardinal = [4]Point{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// Grid describes the searchable graph.
type Grid struct {
	Width  int
	Height int

	// CanTraverse reports whether a step from one in-bounds cell to an
	// adjacent in-bounds cell is legal. Nil allows every step.
	CanTraverse func(from, to Point) bool

	// Potential returns the per-cell potential. Required in Potential mode.
	Potential func(p Point) float64
}

// InBounds reports whether p lies inside the grid.
func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

// Neighbors returns the in-bounds cells reachable from p in one step.
func (g Grid) Neighbors(p Point) []Point {
	out := make([]Point, 0, len(Cardinal))
	for _, d := range Cardinal {
		n := p.Add(d.X, d.Y)
		if !g.InBounds(n) {
			continue
		}
		if g.CanTraverse != nil && !g.CanTraverse(p, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (g Grid) index(p Point) int {
	return p.Y*g.Width + p.X
}

// Result holds the outcome of a search. Cells that were never reached are
// absent from both maps.
type Result struct {
	Dist map[Point]float64
	Prev map[Point]Point
}

// Distance returns the accumulated cost to p and whether p was reached.
func (r Result) Distance(p Point) (float64, bool) {
	d, ok := r.Dist[p]
	return d, ok
}

// Reachable reports whether p was reached.
func (r Result) Reachable(p Point) bool {
	_, ok := r.Dist[p]
	return ok
}

// Path reconstructs the cells from the search start to p, both inclusive.
// It returns nil when p was not reached.
func (r Result) Path(p Point) []Point {
	if _, ok := r.Dist[p]; !ok {
		return nil
	}
	path := []Point{p}
	seen := map[Point]struct{}{p: {}}
	cur := p
	for {
		prev, ok := r.Prev[cur]
		if !ok {
			break
		}
		if _, loop := seen[prev]; loop {
			// Relaxing finalised cells with negative weights can form a
			// predecessor cycle; stop at the first repeat.
			break
		}
		seen[prev] = struct{}{}
		path = append(path, prev)
		cur = prev
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type queueItem struct {
	point Point
	cost  float64
	order int
	index int
}

type costQueue []*queueItem

func (q costQueue) Len() int { return len(q) }

func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].order < q[j].order
}

func (q costQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *costQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *costQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// Search runs greedy priority-first relaxation from start.
//
// The unvisited cell with the smallest tentative cost is expanded next (ties
// go to the lower row-major index). Every legal neighbour is relaxed,
// including cells that were already expanded: their cost and predecessor can
// still drop, but they are never expanded again. With non-negative weights
// this is Dijkstra's algorithm; with negative weights it is a heuristic.
func Search(g Grid, start Point, mode Mode) Result {
	res := Result{
		Dist: map[Point]float64{start: 0},
		Prev: map[Point]Point{},
	}
	if !g.InBounds(start) {
		return res
	}

	done := make(map[Point]struct{}, g.Width*g.Height)
	open := &costQueue{}
	heap.Init(open)
	heap.Push(open, &queueItem{point: start, cost: 0, order: g.index(start)})

	for open.Len() > 0 {
		current := heap.Pop(open).(*queueItem)
		if _, seen := done[current.point]; seen {
			continue
		}
		if current.cost != res.Dist[current.point] {
			// Stale entry; a cheaper one was queued later.
			continue
		}
		done[current.point] = struct{}{}

		for _, next := range g.Neighbors(current.point) {
			w := 1.0
			if mode == Potential {
				w = -g.Potential(next)
			}
			cost := current.cost + w
			if prev, ok := res.Dist[next]; ok && cost >= prev {
				continue
			}
			res.Dist[next] = cost
			res.Prev[next] = current.point
			if _, seen := done[next]; !seen {
				heap.Push(open, &queueItem{point: next, cost: cost, order: g.index(next)})
			}
		}
	}
	return res
}
