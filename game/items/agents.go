package items

import (
	"math/rand"

	"github.com/wricardo/gridworld/game/engine"
)

// Capability contributes named actions to an agent
type Capability struct {
	Name    string
	Actions []string
	install func(a *engine.AgentBase)
}

// Agent is a player-controlled agent
type Agent struct {
	engine.AgentBase
}

// NewAgent creates an agent with the given capabilities and speed 1
func NewAgent(loc engine.Location, caps ...Capability) *Agent {
	return NewAgentWithSpeed(loc, 1, caps...)
}

// NewAgentWithSpeed creates an agent acting once every speed ticks
func NewAgentWithSpeed(loc engine.Location, speed int, caps ...Capability) *Agent {
	a := &Agent{}
	equip(&a.AgentBase, loc, speed, caps)
	return a
}

// RandomWalker is an autonomous agent picking uniformly among its actions
type RandomWalker struct {
	engine.AgentBase
}

// NewRandomWalker creates an autonomous agent
func NewRandomWalker(loc engine.Location, speed int, caps ...Capability) *RandomWalker {
	w := &RandomWalker{}
	equip(&w.AgentBase, loc, speed, caps)
	return w
}

// NextAction draws an action name
func (w *RandomWalker) NextAction(rng *rand.Rand) string {
	names := engine.ActionNames(w)
	return names[rng.Intn(len(names))]
}

func equip(a *engine.AgentBase, loc engine.Location, speed int, caps []Capability) {
	a.Init(loc, speed)
	for _, c := range caps {
		a.AddCapability(c.Name)
		c.install(a)
	}
}

// Directions of the movement and push actions. Up increases y.
var directions = []struct {
	suffix string
	dx, dy int
}{
	{"up", 0, 1},
	{"down", 0, -1},
	{"left", -1, 0},
	{"right", 1, 0},
}

// Movement moves one cell per turn. Blocks, agents and closed doors stop it.
var Movement = Capability{
	Name:    "Movable",
	Actions: []string{"up", "down", "left", "right"},
	install: func(a *engine.AgentBase) {
		for _, d := range directions {
			dx, dy := d.dx, d.dy
			a.AddAction(d.suffix, func() { step(a, dx, dy) })
		}
	},
}

// CanEnter reports whether an agent may step onto loc
func CanEnter(w *engine.World, loc engine.Location) bool {
	return w.FindFirst(loc, func(e engine.Entity) bool {
		return IsBlock(e) || IsAgent(e) || IsClosedDoor(e)
	}) == nil
}

func step(a *engine.AgentBase, dx, dy int) {
	w := a.World()
	to := a.Loc.Add(dx, dy)
	if CanEnter(w, to) {
		_ = w.Move(a.ID, to)
	}
}

// Breadcrumbs drops a crumb on the agent's cell
var Breadcrumbs = Capability{
	Name:    "BreadcrumbDropping",
	Actions: []string{"breadcrumb"},
	install: func(a *engine.AgentBase) {
		a.AddAction("breadcrumb", func() {
			w := a.World()
			if w.FindFirst(a.Loc, OfType(BreadcrumbType)) == nil {
				_, _ = w.Add(NewBreadcrumb(a.Loc), "")
			}
		})
	},
}

// Pushing shoves an adjacent pushable block one cell further when the
// destination holds no block and no agent
var Pushing = Capability{
	Name:    "Pushing",
	Actions: []string{"push_up", "push_down", "push_left", "push_right"},
	install: func(a *engine.AgentBase) {
		for _, d := range directions {
			dx, dy := d.dx, d.dy
			a.AddAction("push_"+d.suffix, func() { push(a, dx, dy) })
		}
	},
}

func push(a *engine.AgentBase, dx, dy int) {
	w := a.World()
	target := a.Loc.Add(dx, dy)
	dest := target.Add(dx, dy)
	block, ok := engine.FirstAt[*Pushable](w, target)
	if !ok {
		return
	}
	if w.FindFirst(dest, func(e engine.Entity) bool { return IsAgent(e) || IsBlock(e) }) != nil {
		return
	}
	_ = w.Move(block.ID, dest)
}

// Toggling toggles a switch on the agent's cell
var Toggling = Capability{
	Name:    "Toggling",
	Actions: []string{"toggle_switch"},
	install: func(a *engine.AgentBase) {
		a.AddAction("toggle_switch", func() {
			if sw, ok := engine.FirstAt[*Switch](a.World(), a.Loc); ok {
				sw.Toggle()
			}
		})
	},
}

// Capabilities lists every capability
func Capabilities() []Capability {
	return []Capability{Movement, Breadcrumbs, Pushing, Toggling}
}
