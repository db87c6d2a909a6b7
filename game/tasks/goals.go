package tasks

import (
	"math"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
	"github.com/wricardo/gridworld/game/vocab"
)

// SingleGoal: walk to the goal
type SingleGoal struct {
	base
	components []engine.Component

	goal  *items.Goal
	agent *items.Agent
}

func NewSingleGoal(cfg Config) *SingleGoal {
	t := &SingleGoal{base: newBase("SingleGoal", cfg)}
	t.components = []engine.Component{
		t.hazards,
		t.onEnd,
		t,
		SingleGoalEstimate{Route: func() (engine.Location, engine.Location) { return t.agent.Loc, t.goal.Loc }},
	}
	return t
}

func (t *SingleGoal) Components() []engine.Component { return t.components }

func (t *SingleGoal) Construct(g *engine.GameEngine) error {
	var err error
	if t.goal, err = placeGoal(g, 0, nil); err != nil {
		return err
	}
	if t.agent, err = placeAgent(g, "SingleGoalAgent", items.IsBlock, nil, items.Movement); err != nil {
		return err
	}
	return walkTo(g, t.agent.Loc, t.goal.Loc)
}

func (t *SingleGoal) Finished(*engine.GameEngine) bool {
	return t.agent.Loc == t.goal.Loc
}

func (t *SingleGoal) SideInformation(*engine.GameEngine) [][]string {
	return [][]string{append([]string{vocab.Goto}, t.goal.Features()...)}
}

// MultiGoals: visit every goal in the announced order. Visiting out of
// order is not penalised.
type MultiGoals struct {
	base
	components []engine.Component

	goals []*items.Goal
	next  int
	agent *items.Agent
}

func NewMultiGoals(cfg Config) *MultiGoals {
	t := &MultiGoals{base: newBase("MultiGoals", cfg)}
	t.components = []engine.Component{t.hazards, t.onEnd, t}
	return t
}

func (t *MultiGoals) Components() []engine.Component { return t.components }

func (t *MultiGoals) Construct(g *engine.GameEngine) error {
	t.goals = t.goals[:0]
	t.next = 0
	for i := 0; i < t.cfg.NGoals; i++ {
		goal, err := placeGoal(g, i, nil)
		if err != nil {
			return err
		}
		t.goals = append(t.goals, goal)
	}
	g.Rand().Shuffle(len(t.goals), func(i, j int) { t.goals[i], t.goals[j] = t.goals[j], t.goals[i] })

	var err error
	if t.agent, err = placeAgent(g, "MultiGoalsAgent", items.IsBlock, nil, items.Movement); err != nil {
		return err
	}
	return walkTo(g, t.agent.Loc, goalLocations(t.goals)...)
}

func (t *MultiGoals) Step(*engine.GameEngine) {
	if t.next < len(t.goals) && t.agent.Loc == t.goals[t.next].Loc {
		t.next++
	}
}

func (t *MultiGoals) Finished(*engine.GameEngine) bool {
	return t.next == len(t.goals)
}

func (t *MultiGoals) SideInformation(*engine.GameEngine) [][]string {
	info := make([][]string, 0, len(t.goals))
	for i, goal := range t.goals {
		info = append(info, append([]string{vocab.Ordered(i), vocab.Goto}, goal.Features()...))
	}
	return info
}

func (t *MultiGoals) ApproxReward(g *engine.GameEngine) float64 {
	cur := t.agent.Loc
	r := 0.0
	for _, goal := range t.goals {
		r += engine.Estimate(g, cur, goal.Loc)
		cur = goal.Loc
	}
	return r
}

// ConditionedGoals: the switch colour selects the goal to visit. Stepping
// on any other goal costs GoalPenalty.
type ConditionedGoals struct {
	base
	components  []engine.Component
	goalPenalty float64

	sw         *items.Switch
	goals      []*items.Goal
	conditions []int
	agent      *items.Agent
}

func NewConditionedGoals(cfg Config) *ConditionedGoals {
	t := &ConditionedGoals{base: newBase("ConditionedGoals", cfg), goalPenalty: cfg.goalPenalty(0.2)}
	t.components = []engine.Component{t.hazards, t.onEnd, t}
	return t
}

func (t *ConditionedGoals) Components() []engine.Component { return t.components }

func (t *ConditionedGoals) Construct(g *engine.GameEngine) error {
	w := g.World()
	loc, err := Choose(g, EmptyLocations(w, nil, nil))
	if err != nil {
		return err
	}
	t.sw = items.NewSwitch(loc, t.cfg.NColors, g.Rand().Intn(t.cfg.NColors))
	if _, err := w.Add(t.sw, ""); err != nil {
		return err
	}

	t.goals = t.goals[:0]
	for i := 0; i < t.cfg.NGoals; i++ {
		goal, err := placeGoal(g, i, nil)
		if err != nil {
			return err
		}
		t.goals = append(t.goals, goal)
	}
	t.conditions = make([]int, len(t.goals))
	for i := range t.conditions {
		t.conditions[i] = g.Rand().Intn(t.cfg.NGoals)
	}

	if t.agent, err = placeAgent(g, "ConditionedGoalsAgent", items.IsBlock, nil, items.Movement, items.Toggling); err != nil {
		return err
	}

	res := engine.Reachable(g, t.agent.Loc)
	if !res.Reachable(t.sw.Loc) {
		return engine.Unsatisfiable("switch unreachable")
	}
	for _, c := range t.conditions {
		if res.Reachable(t.goals[c].Loc) {
			return nil
		}
	}
	return engine.Unsatisfiable("no conditioned goal reachable")
}

// target returns the goal selected by the switch, or nil when the switch
// colour has no condition
func (t *ConditionedGoals) target() *items.Goal {
	if t.sw.State >= len(t.conditions) {
		return nil
	}
	return t.goals[t.conditions[t.sw.State]]
}

func (t *ConditionedGoals) Finished(*engine.GameEngine) bool {
	target := t.target()
	return target != nil && t.agent.Loc == target.Loc
}

func (t *ConditionedGoals) AdjustReward(_ *engine.GameEngine, _ string, r float64) float64 {
	target := t.target()
	for _, goal := range t.goals {
		if target != nil && goal.Loc == target.Loc {
			continue
		}
		if t.agent.Loc == goal.Loc {
			return r - t.goalPenalty
		}
	}
	return r
}

func (t *ConditionedGoals) AdjustPotential(_ *engine.GameEngine, p *engine.PotentialMap) {
	for _, goal := range t.goals {
		p.Add(goal.Loc, -t.goalPenalty)
	}
}

func (t *ConditionedGoals) SideInformation(*engine.GameEngine) [][]string {
	info := make([][]string, 0, len(t.conditions))
	for state, goalIdx := range t.conditions {
		line := []string{vocab.If, items.SwitchType, items.StateFeature(state), vocab.Goto}
		info = append(info, append(line, t.goals[goalIdx].Features()...))
	}
	return info
}

func (t *ConditionedGoals) ApproxReward(g *engine.GameEngine) float64 {
	best := -1e100
	if target := t.target(); target != nil {
		best = engine.Estimate(g, t.agent.Loc, target.Loc)
	}
	toSwitch := engine.Estimate(g, t.agent.Loc, t.sw.Loc)
	n := t.cfg.NColors
	for i := 0; i < min(t.cfg.NGoals, n); i++ {
		toggles := ((i-t.sw.State)%n + n) % n
		via := engine.Estimate(g, t.sw.Loc, t.goals[t.conditions[i]].Loc) -
			float64(toggles)*g.Params().TurnPenalty + toSwitch
		best = math.Max(best, via)
	}
	return best + t.goalPenalty
}

// Exclusion: visit every goal except the excluded ones. Stepping on an
// excluded goal costs GoalPenalty.
type Exclusion struct {
	base
	components  []engine.Component
	goalPenalty float64

	goals   []*items.Goal
	visit   []int
	visited map[int]bool
	exclude []int
	agent   *items.Agent
}

func NewExclusion(cfg Config) *Exclusion {
	t := &Exclusion{base: newBase("Exclusion", cfg), goalPenalty: cfg.goalPenalty(0.5)}
	t.components = []engine.Component{t.hazards, t.onEnd, t}
	return t
}

func (t *Exclusion) Components() []engine.Component { return t.components }

func (t *Exclusion) Construct(g *engine.GameEngine) error {
	visitMax := t.cfg.VisitMax
	if visitMax == -1 {
		visitMax = t.cfg.NGoals
	}
	order := g.Rand().Perm(t.cfg.NGoals)
	n := t.cfg.VisitMin + g.Rand().Intn(visitMax-t.cfg.VisitMin+1)
	t.visit = order[:n]
	t.exclude = order[n:]
	t.visited = make(map[int]bool, n)

	t.goals = t.goals[:0]
	for i := 0; i < t.cfg.NGoals; i++ {
		goal, err := placeGoal(g, i, nil)
		if err != nil {
			return err
		}
		t.goals = append(t.goals, goal)
	}

	var err error
	if t.agent, err = placeAgent(g, "ExclusionAgent", items.IsBlock, nil, items.Movement, items.Toggling); err != nil {
		return err
	}
	return walkTo(g, t.agent.Loc, goalLocations(t.goals)...)
}

func (t *Exclusion) Step(*engine.GameEngine) {
	for _, i := range t.visit {
		if t.agent.Loc == t.goals[i].Loc {
			t.visited[i] = true
		}
	}
}

func (t *Exclusion) Finished(*engine.GameEngine) bool {
	for _, i := range t.visit {
		if !t.visited[i] {
			return false
		}
	}
	return true
}

func (t *Exclusion) AdjustReward(_ *engine.GameEngine, _ string, r float64) float64 {
	for _, i := range t.exclude {
		if t.agent.Loc == t.goals[i].Loc {
			r -= t.goalPenalty
		}
	}
	return r
}

func (t *Exclusion) AdjustPotential(_ *engine.GameEngine, p *engine.PotentialMap) {
	for _, i := range t.exclude {
		p.Add(t.goals[i].Loc, -t.goalPenalty)
	}
}

func (t *Exclusion) SideInformation(*engine.GameEngine) [][]string {
	info := [][]string{{vocab.Goto, vocab.All}}
	for _, i := range t.exclude {
		info = append(info, append([]string{vocab.Avoid}, t.goals[i].Features()...))
	}
	return info
}

// ApproxReward greedily walks to the best-estimated unvisited goal
func (t *Exclusion) ApproxReward(g *engine.GameEngine) float64 {
	done := make(map[int]bool, len(t.visit))
	cur := t.agent.Loc
	total := 0.0
	for range t.visit {
		bestIdx, best := -1, math.Inf(-1)
		for _, i := range t.visit {
			if done[i] {
				continue
			}
			if est := engine.Estimate(g, cur, t.goals[i].Loc); bestIdx == -1 || est > best {
				bestIdx, best = i, est
			}
		}
		done[bestIdx] = true
		cur = t.goals[bestIdx].Loc
		total += best
	}
	return total
}

// Goto: walk to an invisible goal given by its absolute coordinates
type Goto struct {
	base
	components []engine.Component

	goal  *items.Goal
	agent *items.Agent
}

func NewGoto(cfg Config) *Goto {
	t := &Goto{base: newBase("Goto", cfg)}
	t.components = []engine.Component{
		t.hazards,
		t.onEnd,
		t,
		SingleGoalEstimate{Route: func() (engine.Location, engine.Location) { return t.agent.Loc, t.goal.Loc }},
	}
	return t
}

func (t *Goto) Components() []engine.Component { return t.components }

func (t *Goto) Construct(g *engine.GameEngine) error {
	var err error
	if t.goal, err = placeGoal(g, 0, nil); err != nil {
		return err
	}
	t.goal.Hidden()
	if t.agent, err = placeAgent(g, "GotoAgent", items.IsBlock, nil, items.Movement); err != nil {
		return err
	}
	return walkTo(g, t.agent.Loc, t.goal.Loc)
}

func (t *Goto) Finished(*engine.GameEngine) bool {
	return t.agent.Loc == t.goal.Loc
}

func (t *Goto) SideInformation(*engine.GameEngine) [][]string {
	return [][]string{{vocab.Goto, vocab.Coords(t.goal.Loc.X, t.goal.Loc.Y)}}
}

func (t *Goto) Vocabulary(maxWidth, maxHeight int) []string {
	return absoluteCoords(maxWidth, maxHeight)
}

// GotoHidden: several invisible goals are listed with their coordinates;
// side information names the one to reach
type GotoHidden struct {
	base
	components []engine.Component

	goals []*items.Goal
	goal  *items.Goal
	agent *items.Agent
}

func NewGotoHidden(cfg Config) *GotoHidden {
	t := &GotoHidden{base: newBase("GotoHidden", cfg)}
	t.components = []engine.Component{
		t.hazards,
		t.onEnd,
		t,
		SingleGoalEstimate{Route: func() (engine.Location, engine.Location) { return t.agent.Loc, t.goal.Loc }},
	}
	return t
}

func (t *GotoHidden) Components() []engine.Component { return t.components }

func (t *GotoHidden) Construct(g *engine.GameEngine) error {
	t.goals = t.goals[:0]
	for i := 0; i < t.cfg.NGoals; i++ {
		goal, err := placeGoal(g, i, nil)
		if err != nil {
			return err
		}
		t.goals = append(t.goals, goal.Hidden())
	}
	var err error
	if t.goal, err = Choose(g, t.goals); err != nil {
		return err
	}
	if t.agent, err = placeAgent(g, "GotoHiddenAgent", items.IsBlock, nil, items.Movement); err != nil {
		return err
	}
	return walkTo(g, t.agent.Loc, t.goal.Loc)
}

func (t *GotoHidden) Finished(*engine.GameEngine) bool {
	return t.agent.Loc == t.goal.Loc
}

func (t *GotoHidden) SideInformation(*engine.GameEngine) [][]string {
	info := make([][]string, 0, len(t.goals)+1)
	for _, goal := range t.goals {
		info = append(info, append([]string{vocab.Coords(goal.Loc.X, goal.Loc.Y)}, goal.Features()...))
	}
	return append(info, append([]string{vocab.Goto}, t.goal.Features()...))
}

func (t *GotoHidden) Vocabulary(maxWidth, maxHeight int) []string {
	return absoluteCoords(maxWidth, maxHeight)
}

func absoluteCoords(maxWidth, maxHeight int) []string {
	out := make([]string, 0, maxWidth*maxHeight)
	for x := 0; x < maxWidth; x++ {
		for y := 0; y < maxHeight; y++ {
			out = append(out, vocab.Coords(x, y))
		}
	}
	return out
}

func goalLocations(goals []*items.Goal) []engine.Location {
	locs := make([]engine.Location, len(goals))
	for i, g := range goals {
		locs[i] = g.Loc
	}
	return locs
}
