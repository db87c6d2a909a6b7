package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/gridworld/game/pathfind"
)

// IDSeparator delimits the namespace and name parts of an entity id
const IDSeparator = "|"

// World owns every entity of an episode and the cell index over them
type World struct {
	namespace string
	width     int
	height    int
	uid       int

	cells [][]Entity
	byID  map[string]Entity
}

// NewWorld creates an empty width x height grid whose ids are prefixed by namespace
func NewWorld(namespace string, width, height int) *World {
	return &World{
		namespace: namespace,
		width:     width,
		height:    height,
		cells:     make([][]Entity, width*height),
		byID:      make(map[string]Entity),
	}
}

// Width returns the grid width
func (w *World) Width() int { return w.width }

// Height returns the grid height
func (w *World) Height() int { return w.height }

// Len returns the number of live entities
func (w *World) Len() int { return len(w.byID) }

// InBounds reports whether loc lies on the grid
func (w *World) InBounds(loc Location) bool {
	return loc.X >= 0 && loc.Y >= 0 && loc.X < w.width && loc.Y < w.height
}

func (w *World) cell(loc Location) int {
	return loc.Y*w.width + loc.X
}

// Add places e at its current location. An empty name assigns a fresh
// anonymous id; otherwise the id is derived from name and must be unused.
// An entity already placed in a world is rejected.
func (w *World) Add(e Entity, name string) (string, error) {
	if strings.Contains(name, IDSeparator) {
		return "", fmt.Errorf("add %q: %w: must not contain %q", name, ErrInvalidID, IDSeparator)
	}
	attrs := e.Attrs()
	if attrs.world != nil {
		return "", fmt.Errorf("add %q: %w: entity is already placed", attrs.ID, ErrDuplicateID)
	}
	if !w.InBounds(attrs.Loc) {
		return "", fmt.Errorf("add %s at (%d,%d): %w", attrs.Type, attrs.Loc.X, attrs.Loc.Y, ErrOutOfBounds)
	}

	w.uid++
	var id string
	if name == "" {
		id = w.namespace + IDSeparator + strconv.Itoa(w.uid) + IDSeparator
	} else {
		id = w.namespace + IDSeparator + name
	}
	if _, exists := w.byID[id]; exists {
		return "", fmt.Errorf("add %q: %w", id, ErrDuplicateID)
	}

	attrs.ID = id
	attrs.world = w
	w.byID[id] = e
	i := w.cell(attrs.Loc)
	w.cells[i] = append(w.cells[i], e)
	return id, nil
}

// Move relocates an entity. Out-of-bounds targets are ignored; passability
// is the caller's concern.
func (w *World) Move(id string, to Location) error {
	if !w.InBounds(to) {
		return nil
	}
	e, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("move %q: %w", id, ErrUnknownID)
	}
	attrs := e.Attrs()
	w.detach(e)
	attrs.Loc = to
	i := w.cell(to)
	w.cells[i] = append(w.cells[i], e)
	return nil
}

// Remove deletes an entity from the grid and the id index
func (w *World) Remove(id string) error {
	e, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownID)
	}
	w.detach(e)
	delete(w.byID, id)
	e.Attrs().world = nil
	return nil
}

func (w *World) detach(e Entity) {
	i := w.cell(e.Attrs().Loc)
	cell := w.cells[i]
	for j, other := range cell {
		if other == e {
			w.cells[i] = append(cell[:j:j], cell[j+1:]...)
			return
		}
	}
}

// Get returns the entity with the given id
func (w *World) Get(id string) (Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// EntitiesAt returns a copy of the entities in a cell, in insertion order.
// Out-of-bounds locations yield nil.
func (w *World) EntitiesAt(loc Location) []Entity {
	if !w.InBounds(loc) {
		return nil
	}
	cell := w.cells[w.cell(loc)]
	out := make([]Entity, len(cell))
	copy(out, cell)
	return out
}

// FindFirst returns the first entity at loc matching pred, or nil
func (w *World) FindFirst(loc Location, pred func(Entity) bool) Entity {
	if !w.InBounds(loc) {
		return nil
	}
	for _, e := range w.cells[w.cell(loc)] {
		if pred(e) {
			return e
		}
	}
	return nil
}

// FirstAt returns the first entity at loc whose dynamic type is T
func FirstAt[T Entity](w *World, loc Location) (T, bool) {
	var zero T
	e := w.FindFirst(loc, func(e Entity) bool {
		_, ok := e.(T)
		return ok
	})
	if e == nil {
		return zero, false
	}
	return e.(T), true
}

// Blocked reports whether loc holds an impassable entity
func (w *World) Blocked(loc Location) bool {
	return w.FindFirst(loc, func(e Entity) bool { return !e.Attrs().Passable }) != nil
}

// Entities returns every live entity in row-major cell order
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, len(w.byID))
	for _, cell := range w.cells {
		out = append(out, cell...)
	}
	return out
}

// Verify checks that the cell index and entity locations agree
func (w *World) Verify() error {
	seen := make(map[string]int, len(w.byID))
	for i, cell := range w.cells {
		loc := Location{X: i % w.width, Y: i / w.width}
		for _, e := range cell {
			attrs := e.Attrs()
			if attrs.Loc != loc {
				return fmt.Errorf("entity %q indexed at (%d,%d) but located at (%d,%d)", attrs.ID, loc.X, loc.Y, attrs.Loc.X, attrs.Loc.Y)
			}
			if indexed, ok := w.byID[attrs.ID]; !ok || indexed != e {
				return fmt.Errorf("entity %q in cell (%d,%d) is not in the id index", attrs.ID, loc.X, loc.Y)
			}
			seen[attrs.ID]++
		}
	}
	for id := range w.byID {
		if n := seen[id]; n != 1 {
			return fmt.Errorf("entity %q present in %d cells", id, n)
		}
	}
	return nil
}

// WalkGrid describes movement for reachability and reward estimates: any
// in-bounds step into a cell without an impassable entity.
func WalkGrid(w *World) pathfind.Grid {
	return pathfind.Grid{
		Width:  w.width,
		Height: w.height,
		CanTraverse: func(_, to pathfind.Point) bool {
			return !w.Blocked(to)
		},
	}
}

// release drops every entity's back-reference so the entities can be
// placed again after the world is discarded
func (w *World) release() {
	for _, e := range w.byID {
		e.Attrs().world = nil
	}
}
