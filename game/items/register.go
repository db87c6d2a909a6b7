package items

import (
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/vocab"
)

// RegisterFeatures adds every item token, capability name and action to r
func RegisterFeatures(r *vocab.Registry) {
	r.Register(BlockType, WaterType, GoalType, BreadcrumbType, PushableType, SwitchType, DoorType, "open", "closed")
	for i := 0; i < MaxGoalIDs; i++ {
		r.Register(GoalIDFeature(i))
	}
	for i := 0; i < MaxStates; i++ {
		r.Register(StateFeature(i))
	}
	r.Register(engine.AgentType)
	r.RegisterActions(engine.PassAction)
	for _, c := range Capabilities() {
		r.Register(c.Name)
		r.RegisterActions(c.Actions...)
	}
}
