package featurize

import (
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/vocab"
)

// GridFeatures is the output of Grid: per-cell token lists indexed
// [x][y] plus padded side information
type GridFeatures struct {
	Grid     [][][]string `json:"grid"`
	SideInfo [][]string   `json:"side_info"`
}

// Grid lays out visible entity features cell by cell. The absolute grid
// covers the largest possible map; the relative grid is a
// (2*Bounds-1)-wide window centred on the observer, whose centre cell
// also carries the observer's absolute coordinates.
type Grid struct {
	Relative bool
	Bounds   int
	// Notify marks window cells beyond the map edge with OutOfBounds
	Notify        bool
	MaxInfoLength int
	MaxInfos      int
}

func NewGrid(relative bool, bounds int) *Grid {
	return &Grid{
		Relative:      relative,
		Bounds:        bounds,
		MaxInfoLength: DefaultMaxInfoLength,
		MaxInfos:      DefaultMaxInfos,
	}
}

func (f *Grid) Featurize(s *engine.Snapshot, agentID string) (any, error) {
	var (
		grid [][][]string
		err  error
	)
	if f.Relative {
		grid, err = f.relative(s, agentID)
	} else {
		grid = f.absolute(s)
	}
	if err != nil {
		return nil, err
	}

	info, err := pad(s.SideInfo, f.MaxInfos, f.MaxInfoLength)
	if err != nil {
		return nil, err
	}
	return GridFeatures{Grid: grid, SideInfo: info}, nil
}

func newCells(w, h int) [][][]string {
	cells := make([][][]string, w)
	for x := range cells {
		cells[x] = make([][]string, h)
		for y := range cells[x] {
			cells[x][y] = []string{}
		}
	}
	return cells
}

// visible appends the features of the visible entities on loc
func visible(w *engine.World, loc engine.Location, dst []string) []string {
	for _, e := range w.EntitiesAt(loc) {
		if e.Attrs().Visible {
			dst = append(dst, e.Features()...)
		}
	}
	return dst
}

func (f *Grid) absolute(s *engine.Snapshot) [][][]string {
	cells := newCells(max(s.MaxWidth, s.World.Width()), max(s.MaxHeight, s.World.Height()))
	for x := 0; x < s.World.Width(); x++ {
		for y := 0; y < s.World.Height(); y++ {
			cells[x][y] = visible(s.World, engine.Loc(x, y), cells[x][y])
		}
	}
	return cells
}

func (f *Grid) relative(s *engine.Snapshot, agentID string) ([][][]string, error) {
	origin, err := observer(s, agentID)
	if err != nil {
		return nil, err
	}
	size := 2*f.Bounds - 1
	center := f.Bounds - 1
	cells := newCells(size, size)
	cells[center][center] = append(cells[center][center], vocab.Coords(origin.X, origin.Y))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			loc := engine.Loc(origin.X+x-center, origin.Y+y-center)
			if !s.World.InBounds(loc) {
				if f.Notify {
					cells[x][y] = append(cells[x][y], OutOfBounds)
				}
				continue
			}
			cells[x][y] = visible(s.World, loc, cells[x][y])
		}
	}
	return cells, nil
}

func (f *Grid) Vocabulary(maxWidth, maxHeight int) []string {
	if f.Relative {
		return append(absoluteCoords(maxWidth, maxHeight), OutOfBounds)
	}
	return nil
}
