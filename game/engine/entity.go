package engine

import "github.com/wricardo/gridworld/game/pathfind"

// Location is a grid coordinate
type Location = pathfind.Point

// Loc is shorthand for Location{X: x, Y: y}
func Loc(x, y int) Location {
	return Location{X: x, Y: y}
}

// Entity is anything placed on the grid
type Entity interface {
	// Attrs exposes the shared placement attributes.
	Attrs() *Base
	// Features returns the tokens used to encode the entity in observations.
	Features() []string
}

// Base carries the attributes every entity shares. Embed it by value and
// use the embedding type through a pointer.
type Base struct {
	ID       string
	Loc      Location
	Visible  bool
	Passable bool
	Priority int
	Type     string

	world *World
}

// NewBase returns visible, passable attributes for an entity of the given type
func NewBase(typ string, loc Location) Base {
	return Base{Type: typ, Loc: loc, Visible: true, Passable: true}
}

func (b *Base) Attrs() *Base { return b }

// Location returns the entity's current cell
func (b *Base) Location() Location { return b.Loc }

// Kind returns the type tag
func (b *Base) Kind() string { return b.Type }

// World returns the store the entity was added to, or nil before insertion.
// The link is only used for lookups and moves.
func (b *Base) World() *World { return b.world }

// Features defaults to the type tag
func (b *Base) Features() []string { return []string{b.Type} }

// Corner marks the four grid corners. Reset places one in each corner after
// construction.
type Corner struct {
	Base
}

// CornerType is the type tag of Corner
const CornerType = "Corner"

// NewCorner creates a corner marker at loc
func NewCorner(loc Location) *Corner {
	return &Corner{Base: NewBase(CornerType, loc)}
}
