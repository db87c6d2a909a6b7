package tasks

import (
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
)

// Hazards sprinkles blocks and water over the empty cells and charges
// agents standing in water
type Hazards struct {
	BlockPct     float64
	WaterPct     float64
	WaterPenalty float64
}

func newHazards(cfg Config) *Hazards {
	return &Hazards{BlockPct: cfg.BlockPct, WaterPct: cfg.WaterPct, WaterPenalty: cfg.WaterPenalty}
}

func (h *Hazards) Construct(g *engine.GameEngine) error {
	_, err := Sprinkle(g, []Sprinkling{
		{Pct: h.BlockPct, New: func(l engine.Location) engine.Entity { return items.NewBlock(l) }},
		{Pct: h.WaterPct, New: func(l engine.Location) engine.Entity { return items.NewWater(l) }},
	}, nil)
	return err
}

func (h *Hazards) AdjustReward(g *engine.GameEngine, agentID string, r float64) float64 {
	e, ok := g.World().Get(agentID)
	if !ok {
		return r
	}
	if _, wet := engine.FirstAt[*items.Water](g.World(), e.Attrs().Loc); wet {
		r -= h.WaterPenalty
	}
	return r
}

func (h *Hazards) AdjustPotential(g *engine.GameEngine, p *engine.PotentialMap) {
	w := g.World()
	for y := 0; y < w.Height(); y++ {
		for x := 0; x < w.Width(); x++ {
			if _, wet := engine.FirstAt[*items.Water](w, engine.Loc(x, y)); wet {
				p.Add(engine.Loc(x, y), -h.WaterPenalty)
			}
		}
	}
}

// RewardOnEnd replaces the reward of the finishing turn with GoalReward.
// List it after the rules it overrides.
type RewardOnEnd struct {
	GoalReward float64
}

func (r *RewardOnEnd) AdjustReward(g *engine.GameEngine, _ string, reward float64) float64 {
	if g.Task().Finished(g) {
		return r.GoalReward
	}
	return reward
}

// ApproxReward adds the goal reward. The last turn's penalty is not paid,
// so it is added back.
func (r *RewardOnEnd) ApproxReward(g *engine.GameEngine) float64 {
	return r.GoalReward + g.Params().TurnPenalty
}

// SingleGoalEstimate estimates the walk from an agent to one target
type SingleGoalEstimate struct {
	Route func() (from, to engine.Location)
}

func (s SingleGoalEstimate) ApproxReward(g *engine.GameEngine) float64 {
	from, to := s.Route()
	return engine.Estimate(g, from, to)
}

// base holds the parts shared by every task
type base struct {
	name    string
	hazards *Hazards
	onEnd   *RewardOnEnd
	cfg     Config
}

func newBase(name string, cfg Config) base {
	return base{
		name:    name,
		hazards: newHazards(cfg),
		onEnd:   &RewardOnEnd{GoalReward: cfg.GoalReward},
		cfg:     cfg,
	}
}

func (b *base) Name() string { return b.name }

// walkTo fails construction unless every target is reachable from start
func walkTo(g *engine.GameEngine, start engine.Location, targets ...engine.Location) error {
	res := engine.Reachable(g, start)
	for _, t := range targets {
		if !res.Reachable(t) {
			return engine.Unsatisfiable("no path from (%d,%d) to (%d,%d)", start.X, start.Y, t.X, t.Y)
		}
	}
	return nil
}

// placeGoal adds goal number id on a random empty cell
func placeGoal(g *engine.GameEngine, id int, avoid func(engine.Entity) bool) (*items.Goal, error) {
	loc, err := Choose(g, EmptyLocations(g.World(), avoid, nil))
	if err != nil {
		return nil, err
	}
	goal := items.NewGoal(loc, id)
	if _, err := g.World().Add(goal, ""); err != nil {
		return nil, err
	}
	return goal, nil
}

// placeAgent adds a named agent on a random cell free of avoid
func placeAgent(g *engine.GameEngine, name string, avoid func(engine.Entity) bool, mask func(engine.Location) bool, caps ...items.Capability) (*items.Agent, error) {
	loc, err := Choose(g, EmptyLocations(g.World(), avoid, mask))
	if err != nil {
		return nil, err
	}
	a := items.NewAgent(loc, caps...)
	if _, err := g.AddAgent(a, name); err != nil {
		return nil, err
	}
	return a, nil
}
