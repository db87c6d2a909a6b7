package items

import (
	"fmt"

	"github.com/wricardo/gridworld/game/engine"
)

// Type tags
const (
	BlockType      = "Block"
	WaterType      = "Water"
	GoalType       = "Goal"
	BreadcrumbType = "Breadcrumb"
	PushableType   = "Pushable"
	SwitchType     = "Switch"
	DoorType       = "Door"
)

const (
	// MaxGoalIDs bounds goal ids to 0..MaxGoalIDs-1
	MaxGoalIDs = 10
	// MaxStates bounds switch and door states to 0..MaxStates-1
	MaxStates = 10

	WaterPriority      = -100
	BreadcrumbPriority = -50
)

// Blocker marks impassable terrain. Pushable blocks are blockers too.
type Blocker interface {
	engine.Entity
	isBlock()
}

// Block is an impassable cell
type Block struct {
	engine.Base
}

func NewBlock(loc engine.Location) *Block {
	b := &Block{Base: engine.NewBase(BlockType, loc)}
	b.Passable = false
	return b
}

func (*Block) isBlock() {}

// Pushable is a block agents with the Pushing capability can shove
type Pushable struct {
	Block
}

func NewPushable(loc engine.Location) *Pushable {
	p := &Pushable{Block: *NewBlock(loc)}
	p.Type = PushableType
	return p
}

// Water is a passable hazard
type Water struct {
	engine.Base
}

func NewWater(loc engine.Location) *Water {
	w := &Water{Base: engine.NewBase(WaterType, loc)}
	w.Priority = WaterPriority
	return w
}

// Goal is a numbered target cell
type Goal struct {
	engine.Base
	GoalID int
}

// NewGoal creates goal number id. Ids outside 0..MaxGoalIDs-1 panic.
func NewGoal(loc engine.Location, id int) *Goal {
	if id < 0 || id >= MaxGoalIDs {
		panic(fmt.Sprintf("items: goal id %d out of range", id))
	}
	return &Goal{Base: engine.NewBase(GoalType, loc), GoalID: id}
}

// Hidden makes the goal invisible to observations
func (g *Goal) Hidden() *Goal {
	g.Visible = false
	return g
}

func (g *Goal) Features() []string {
	return []string{GoalType, GoalIDFeature(g.GoalID)}
}

// GoalIDFeature returns the token for goal number id
func GoalIDFeature(id int) string {
	return fmt.Sprintf("goal_id%d", id)
}

// Breadcrumb marks a cell an agent dropped a crumb on
type Breadcrumb struct {
	engine.Base
}

func NewBreadcrumb(loc engine.Location) *Breadcrumb {
	b := &Breadcrumb{Base: engine.NewBase(BreadcrumbType, loc)}
	b.Priority = BreadcrumbPriority
	return b
}

// StateFeature returns the token for state n
func StateFeature(n int) string {
	return fmt.Sprintf("state%d", n)
}

// Switch cycles through NStates colours when toggled
type Switch struct {
	engine.Base
	State   int
	NStates int
}

// NewSwitch creates a switch in state start. nstates must be in 1..MaxStates-1.
func NewSwitch(loc engine.Location, nstates, start int) *Switch {
	if nstates < 1 || nstates >= MaxStates {
		panic(fmt.Sprintf("items: switch with %d states", nstates))
	}
	return &Switch{Base: engine.NewBase(SwitchType, loc), State: start % nstates, NStates: nstates}
}

// Toggle advances the state
func (s *Switch) Toggle() {
	s.State = (s.State + 1) % s.NStates
}

func (s *Switch) Features() []string {
	return []string{SwitchType, StateFeature(s.State)}
}

// Door blocks agents while closed. State is the switch colour that opens it.
type Door struct {
	engine.Base
	Open  bool
	State int
}

func NewDoor(loc engine.Location, state int) *Door {
	return &Door{Base: engine.NewBase(DoorType, loc), State: state}
}

func (d *Door) Features() []string {
	openness := "closed"
	if d.Open {
		openness = "open"
	}
	return []string{DoorType, openness, StateFeature(d.State)}
}

// IsBlock reports whether e is impassable terrain
func IsBlock(e engine.Entity) bool {
	_, ok := e.(Blocker)
	return ok
}

// IsAgent reports whether e is an agent
func IsAgent(e engine.Entity) bool {
	_, ok := e.(engine.Agent)
	return ok
}

// IsClosedDoor reports whether e is a closed door
func IsClosedDoor(e engine.Entity) bool {
	d, ok := e.(*Door)
	return ok && !d.Open
}

// OfType returns a predicate matching entities with any of the given type tags
func OfType(types ...string) func(engine.Entity) bool {
	return func(e engine.Entity) bool {
		k := e.Attrs().Type
		for _, t := range types {
			if k == t {
				return true
			}
		}
		return false
	}
}
