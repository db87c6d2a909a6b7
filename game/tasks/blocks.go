package tasks

import (
	"math"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
	"github.com/wricardo/gridworld/game/pathfind"
	"github.com/wricardo/gridworld/game/vocab"
)

// waypointEstimate sums the walk estimates along a list of cells. The
// first leg walks around the block; later legs ignore it, since the
// block has left its start cell by then.
func waypointEstimate(g *engine.GameEngine, block *items.Pushable, start engine.Location, waypoints []engine.Location) float64 {
	if len(waypoints) == 0 {
		return 0
	}
	r := engine.Estimate(g, start, waypoints[0])
	grid := walkGridWithout(g.World(), block)
	for i := 1; i < len(waypoints); i++ {
		r += engine.EstimateOn(g, grid, waypoints[i-1], waypoints[i])
	}
	return r
}

// walkWaypoints fails construction unless every leg of the waypoint walk
// is reachable the way waypointEstimate walks it
func walkWaypoints(g *engine.GameEngine, block *items.Pushable, start engine.Location, waypoints []engine.Location) error {
	if len(waypoints) == 0 {
		return nil
	}
	if err := walkTo(g, start, waypoints[0]); err != nil {
		return err
	}
	grid := walkGridWithout(g.World(), block)
	for i := 1; i < len(waypoints); i++ {
		from, to := waypoints[i-1], waypoints[i]
		if !pathfind.Search(grid, from, pathfind.Unit).Reachable(to) {
			return engine.Unsatisfiable("no path from (%d,%d) to (%d,%d)", from.X, from.Y, to.X, to.Y)
		}
	}
	return nil
}

// walkGridWithout is the walk grid with block removed
func walkGridWithout(w *engine.World, block *items.Pushable) pathfind.Grid {
	grid := engine.WalkGrid(w)
	at := block.Loc
	grid.CanTraverse = func(_, to pathfind.Point) bool {
		if to == at {
			return w.FindFirst(to, func(e engine.Entity) bool {
				return !e.Attrs().Passable && e != engine.Entity(block)
			}) == nil
		}
		return !w.Blocked(to)
	}
	return grid
}

// PushBlock: push the block onto the switch
type PushBlock struct {
	base
	components []engine.Component

	sw        *items.Switch
	pushable  *items.Pushable
	waypoints []engine.Location
	agent     *items.Agent
}

func NewPushBlock(cfg Config) *PushBlock {
	t := &PushBlock{base: newBase("PushBlock", cfg)}
	t.components = []engine.Component{t.hazards, t.onEnd, t}
	return t
}

func (t *PushBlock) Components() []engine.Component { return t.components }

func (t *PushBlock) Construct(g *engine.GameEngine) error {
	w := g.World()
	loc, err := Choose(g, EmptyLocations(w, nil, nil))
	if err != nil {
		return err
	}
	t.sw = items.NewSwitch(loc, 2, 0)
	if _, err := w.Add(t.sw, ""); err != nil {
		return err
	}

	if loc, err = Choose(g, EmptyLocations(w, nil, nil)); err != nil {
		return err
	}
	t.pushable = items.NewPushable(loc)
	if _, err := w.Add(t.pushable, ""); err != nil {
		return err
	}

	res := pathfind.Search(PushBlockGrid(w), t.pushable.Loc, pathfind.Unit)
	if !res.Reachable(t.sw.Loc) {
		return engine.Unsatisfiable("block cannot be pushed to the switch")
	}
	t.waypoints = PushWaypoints(res, t.pushable.Loc, t.sw.Loc)

	if t.agent, err = placeAgent(g, "PushBlockAgent", items.IsBlock, nil, items.Movement, items.Pushing); err != nil {
		return err
	}
	return walkWaypoints(g, t.pushable, t.agent.Loc, t.waypoints)
}

func (t *PushBlock) Finished(*engine.GameEngine) bool {
	return t.pushable.Loc == t.sw.Loc
}

func (t *PushBlock) SideInformation(*engine.GameEngine) [][]string {
	line := append([]string{vocab.Push}, t.pushable.Features()...)
	return [][]string{append(line, t.sw.Features()...)}
}

// ApproxReward walks the push waypoints, ignoring the block itself
func (t *PushBlock) ApproxReward(g *engine.GameEngine) float64 {
	return waypointEstimate(g, t.pushable, t.agent.Loc, t.waypoints)
}

// PushBlockCardinal: push the block against the announced wall
type PushBlockCardinal struct {
	base
	components []engine.Component

	pushable  *items.Pushable
	direction string
	goals     []engine.Location
	waypoints []engine.Location
	agent     *items.Agent
}

func NewPushBlockCardinal(cfg Config) *PushBlockCardinal {
	t := &PushBlockCardinal{base: newBase("PushBlockCardinal", cfg)}
	t.components = []engine.Component{t.hazards, t.onEnd, t}
	return t
}

func (t *PushBlockCardinal) Components() []engine.Component { return t.components }

func (t *PushBlockCardinal) Construct(g *engine.GameEngine) error {
	w := g.World()
	loc, err := Choose(g, EmptyLocations(w, nil, nil))
	if err != nil {
		return err
	}
	t.pushable = items.NewPushable(loc)
	if _, err := w.Add(t.pushable, ""); err != nil {
		return err
	}

	if t.direction, err = Choose(g, []string{vocab.Up, vocab.Down, vocab.Left, vocab.Right}); err != nil {
		return err
	}
	t.goals = edgeCells(w, t.direction)

	res := pathfind.Search(PushBlockGrid(w), t.pushable.Loc, pathfind.Unit)
	closest, found := engine.Location{}, false
	bestDist := math.Inf(1)
	for _, goal := range t.goals {
		if d, ok := res.Distance(goal); ok && d < bestDist {
			closest, found, bestDist = goal, true, d
		}
	}
	if !found {
		return engine.Unsatisfiable("block cannot reach the %s wall", t.direction)
	}
	t.waypoints = PushWaypoints(res, t.pushable.Loc, closest)

	if t.agent, err = placeAgent(g, "PushBlockCardinalAgent", items.IsBlock, nil, items.Movement, items.Pushing); err != nil {
		return err
	}
	return walkWaypoints(g, t.pushable, t.agent.Loc, t.waypoints)
}

// edgeCells lists the cells along the wall named by direction
func edgeCells(w *engine.World, direction string) []engine.Location {
	var cells []engine.Location
	switch direction {
	case vocab.Up:
		for x := 0; x < w.Width(); x++ {
			cells = append(cells, engine.Loc(x, w.Height()-1))
		}
	case vocab.Down:
		for x := 0; x < w.Width(); x++ {
			cells = append(cells, engine.Loc(x, 0))
		}
	case vocab.Left:
		for y := 0; y < w.Height(); y++ {
			cells = append(cells, engine.Loc(0, y))
		}
	case vocab.Right:
		for y := 0; y < w.Height(); y++ {
			cells = append(cells, engine.Loc(w.Width()-1, y))
		}
	}
	return cells
}

func (t *PushBlockCardinal) Finished(*engine.GameEngine) bool {
	for _, goal := range t.goals {
		if t.pushable.Loc == goal {
			return true
		}
	}
	return false
}

func (t *PushBlockCardinal) SideInformation(*engine.GameEngine) [][]string {
	return [][]string{append([]string{vocab.Push, t.direction}, t.pushable.Features()...)}
}

// ApproxReward walks the waypoints toward the wall cell closest to the block
func (t *PushBlockCardinal) ApproxReward(g *engine.GameEngine) float64 {
	return waypointEstimate(g, t.pushable, t.agent.Loc, t.waypoints)
}

// Switches: toggle every switch to the same colour
type Switches struct {
	base
	components []engine.Component

	switches []*items.Switch
	agent    *items.Agent
}

func NewSwitches(cfg Config) *Switches {
	t := &Switches{base: newBase("Switches", cfg)}
	t.components = []engine.Component{t.hazards, t.onEnd, t}
	return t
}

func (t *Switches) Components() []engine.Component { return t.components }

func (t *Switches) Construct(g *engine.GameEngine) error {
	var err error
	if t.agent, err = placeAgent(g, "SwitchesAgent", items.IsBlock, nil, items.Movement, items.Toggling); err != nil {
		return err
	}
	res := engine.Reachable(g, t.agent.Loc)

	w := g.World()
	t.switches = t.switches[:0]
	for i := 0; i < t.cfg.NSwitches; i++ {
		loc, err := Choose(g, EmptyLocations(w, nil, nil))
		if err != nil {
			return err
		}
		sw := items.NewSwitch(loc, t.cfg.SwitchStates, g.Rand().Intn(t.cfg.SwitchStates))
		if _, err := w.Add(sw, ""); err != nil {
			return err
		}
		t.switches = append(t.switches, sw)
		if !res.Reachable(loc) {
			return engine.Unsatisfiable("switch %d unreachable", i)
		}
	}
	return nil
}

func (t *Switches) Finished(*engine.GameEngine) bool {
	for _, sw := range t.switches[1:] {
		if sw.State != t.switches[0].State {
			return false
		}
	}
	return true
}

func (t *Switches) SideInformation(*engine.GameEngine) [][]string {
	return [][]string{{vocab.Switch, vocab.State, vocab.Same}}
}

// ApproxReward visits the switches nearest-first and charges the toggles
// needed to reach the cheapest common colour. Switches already showing the
// target colour earn a small bonus.
func (t *Switches) ApproxReward(g *engine.GameEngine) float64 {
	k := t.cfg.SwitchStates
	best := math.Inf(1)
	for _, target := range t.switches {
		cost := 0
		for _, sw := range t.switches {
			if d := ((target.State-sw.State)%k + k) % k; d > 0 {
				cost += d
			} else {
				cost -= 2
			}
		}
		best = math.Min(best, float64(cost))
	}

	grid := engine.WalkGrid(g.World())
	grid.Potential = g.Potential().At
	remaining := make([]engine.Location, len(t.switches))
	for i, sw := range t.switches {
		remaining[i] = sw.Loc
	}
	cur := t.agent.Loc
	r := 0.0
	for len(remaining) > 0 {
		res := pathfind.Search(grid, cur, pathfind.Potential)
		idx, dist := 0, math.Inf(1)
		for i, loc := range remaining {
			if d, ok := res.Distance(loc); ok && d < dist {
				idx, dist = i, d
			}
		}
		r -= dist
		cur = remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return r - best*g.Params().TurnPenalty
}

// LightKey: a wall with a door splits the map. Toggling the switch to the
// door's colour opens it; then walk to the goal.
type LightKey struct {
	base
	components []engine.Component

	hole  engine.Location
	dim   int
	door  *items.Door
	goal  *items.Goal
	sw    *items.Switch
	agent *items.Agent
}

func NewLightKey(cfg Config) *LightKey {
	t := &LightKey{base: newBase("LightKey", cfg)}
	t.components = []engine.Component{constructFunc(t.buildWall), t.hazards, t.onEnd, t}
	return t
}

func (t *LightKey) Components() []engine.Component { return t.components }

func (t *LightKey) buildWall(g *engine.GameEngine) error {
	var err error
	if t.hole, t.dim, err = AddWall(g); err != nil {
		return err
	}
	t.door = items.NewDoor(t.hole, 1+g.Rand().Intn(t.cfg.SwitchStates-1))
	_, err = g.World().Add(t.door, "")
	return err
}

func (t *LightKey) Construct(g *engine.GameEngine) error {
	w := g.World()
	wallOrDoor := Avoiding(items.IsBlock, items.OfType(items.DoorType))

	var err error
	if t.goal, err = placeGoal(g, 0, wallOrDoor); err != nil {
		return err
	}

	side, err := Choose(g, []int{-1, 1})
	if err != nil {
		return err
	}
	axis := 1 - t.dim
	onSide := func(l engine.Location) bool {
		c, h := [2]int{l.X, l.Y}, [2]int{t.hole.X, t.hole.Y}
		return side*(c[axis]-h[axis]) > 0
	}

	loc, err := Choose(g, EmptyLocations(w, Avoiding(wallOrDoor, items.OfType(items.GoalType)), onSide))
	if err != nil {
		return err
	}
	t.sw = items.NewSwitch(loc, t.cfg.SwitchStates, 0)
	if _, err := w.Add(t.sw, ""); err != nil {
		return err
	}

	if t.agent, err = placeAgent(g, "LightKeyAgent", wallOrDoor, onSide, items.Movement, items.Toggling); err != nil {
		return err
	}
	return walkTo(g, t.agent.Loc, t.goal.Loc, t.sw.Loc)
}

// Step opens the door while the switch shows the door's colour
func (t *LightKey) Step(*engine.GameEngine) {
	t.door.Open = t.sw.State == t.door.State
}

func (t *LightKey) Finished(*engine.GameEngine) bool {
	return t.agent.Loc == t.goal.Loc
}

func (t *LightKey) SideInformation(*engine.GameEngine) [][]string {
	return [][]string{append([]string{vocab.Goto}, t.goal.Features()...)}
}

// ApproxReward first looks for a route that avoids the door. If every
// route crosses it, the agent detours through the switch.
func (t *LightKey) ApproxReward(g *engine.GameEngine) float64 {
	var r float64
	g.Potential().Override(t.door.Loc, -1e100, func() {
		r = engine.Estimate(g, t.agent.Loc, t.goal.Loc)
	})
	if r < -1e90 {
		r = engine.Estimate(g, t.agent.Loc, t.sw.Loc) + engine.Estimate(g, t.sw.Loc, t.goal.Loc)
	}
	return r
}

// BlockedDoor: a pushable block plugs the only opening of a wall. Push it
// aside and walk to the goal.
type BlockedDoor struct {
	base
	components []engine.Component

	hole     engine.Location
	pushable *items.Pushable
	goal     *items.Goal
	agent    *items.Agent
}

func NewBlockedDoor(cfg Config) *BlockedDoor {
	t := &BlockedDoor{base: newBase("BlockedDoor", cfg)}
	t.components = []engine.Component{constructFunc(t.buildWall), t.hazards, t.onEnd, t}
	return t
}

func (t *BlockedDoor) Components() []engine.Component { return t.components }

func (t *BlockedDoor) buildWall(g *engine.GameEngine) error {
	var err error
	if t.hole, _, err = AddWall(g); err != nil {
		return err
	}
	t.pushable = items.NewPushable(t.hole)
	_, err = g.World().Add(t.pushable, "")
	return err
}

func (t *BlockedDoor) Construct(g *engine.GameEngine) error {
	wallOrDoor := Avoiding(items.IsBlock, items.OfType(items.DoorType))
	var err error
	if t.goal, err = placeGoal(g, 0, wallOrDoor); err != nil {
		return err
	}
	if t.agent, err = placeAgent(g, "BlockedDoorAgent", wallOrDoor, nil, items.Movement, items.Pushing); err != nil {
		return err
	}
	res := pathfind.Search(t.unpluggedGrid(g), t.agent.Loc, pathfind.Unit)
	if !res.Reachable(t.goal.Loc) {
		return engine.Unsatisfiable("goal unreachable even without the block")
	}
	return nil
}

// unpluggedGrid is the walk grid with the pushable block removed
func (t *BlockedDoor) unpluggedGrid(g *engine.GameEngine) pathfind.Grid {
	return walkGridWithout(g.World(), t.pushable)
}

func (t *BlockedDoor) Finished(*engine.GameEngine) bool {
	return t.agent.Loc == t.goal.Loc
}

func (t *BlockedDoor) SideInformation(*engine.GameEngine) [][]string {
	return [][]string{append([]string{vocab.Goto}, t.goal.Features()...)}
}

// pushCost approximates the turns spent moving the block out of the way
const pushCost = 4

func (t *BlockedDoor) ApproxReward(g *engine.GameEngine) float64 {
	r := engine.Estimate(g, t.agent.Loc, t.goal.Loc)
	if r < -1e90 {
		r = engine.EstimateOn(g, t.unpluggedGrid(g), t.agent.Loc, t.goal.Loc)
		r -= pushCost * g.Params().TurnPenalty
	}
	return r
}
