package items

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/vocab"
)

func place(t *testing.T, w *engine.World, e engine.Entity) string {
	t.Helper()
	id, err := w.Add(e, "")
	require.NoError(t, err)
	return id
}

func TestMovementBlocking(t *testing.T) {
	tests := []struct {
		name     string
		obstacle func(loc engine.Location) engine.Entity
		want     engine.Location
	}{
		{"empty", nil, engine.Loc(2, 1)},
		{"block", func(l engine.Location) engine.Entity { return NewBlock(l) }, engine.Loc(1, 1)},
		{"pushable", func(l engine.Location) engine.Entity { return NewPushable(l) }, engine.Loc(1, 1)},
		{"agent", func(l engine.Location) engine.Entity { return NewAgent(l) }, engine.Loc(1, 1)},
		{"closed door", func(l engine.Location) engine.Entity { return NewDoor(l, 1) }, engine.Loc(1, 1)},
		{"open door", func(l engine.Location) engine.Entity { d := NewDoor(l, 1); d.Open = true; return d }, engine.Loc(2, 1)},
		{"water", func(l engine.Location) engine.Entity { return NewWater(l) }, engine.Loc(2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := engine.NewWorld("t", 4, 3)
			a := NewAgent(engine.Loc(1, 1), Movement)
			place(t, w, a)
			if tt.obstacle != nil {
				place(t, w, tt.obstacle(engine.Loc(2, 1)))
			}
			a.Actions()["right"]()
			assert.Equal(t, tt.want, a.Location())
		})
	}
}

func TestMovementDirections(t *testing.T) {
	w := engine.NewWorld("t", 3, 3)
	a := NewAgent(engine.Loc(1, 1), Movement)
	place(t, w, a)

	a.Actions()["up"]()
	assert.Equal(t, engine.Loc(1, 2), a.Location())
	a.Actions()["up"]() // off the grid
	assert.Equal(t, engine.Loc(1, 2), a.Location())
	a.Actions()["left"]()
	a.Actions()["down"]()
	assert.Equal(t, engine.Loc(0, 1), a.Location())
}

func TestPushing(t *testing.T) {
	w := engine.NewWorld("t", 5, 1)
	a := NewAgent(engine.Loc(0, 0), Movement, Pushing)
	box := NewPushable(engine.Loc(1, 0))
	place(t, w, a)
	place(t, w, box)

	a.Actions()["push_right"]()
	assert.Equal(t, engine.Loc(2, 0), box.Location())
	assert.Equal(t, engine.Loc(0, 0), a.Location(), "pushing does not move the agent")

	// Nothing adjacent to push.
	a.Actions()["push_right"]()
	assert.Equal(t, engine.Loc(2, 0), box.Location())

	a.Actions()["right"]()
	place(t, w, NewBlock(engine.Loc(3, 0)))
	a.Actions()["push_right"]()
	assert.Equal(t, engine.Loc(2, 0), box.Location(), "blocked push")
}

func TestPushIntoAgentFails(t *testing.T) {
	w := engine.NewWorld("t", 4, 1)
	a := NewAgent(engine.Loc(0, 0), Pushing)
	box := NewPushable(engine.Loc(1, 0))
	place(t, w, a)
	place(t, w, box)
	place(t, w, NewAgent(engine.Loc(2, 0)))

	a.Actions()["push_right"]()
	assert.Equal(t, engine.Loc(1, 0), box.Location())
}

func TestToggling(t *testing.T) {
	w := engine.NewWorld("t", 2, 2)
	a := NewAgent(engine.Loc(0, 0), Toggling)
	sw := NewSwitch(engine.Loc(0, 0), 3, 2)
	place(t, w, a)
	place(t, w, sw)

	a.Actions()["toggle_switch"]()
	assert.Equal(t, 0, sw.State)
	a.Actions()["toggle_switch"]()
	assert.Equal(t, 1, sw.State)
	assert.Equal(t, []string{SwitchType, "state1"}, sw.Features())
}

func TestBreadcrumbsOncePerCell(t *testing.T) {
	w := engine.NewWorld("t", 2, 2)
	a := NewAgent(engine.Loc(1, 1), Breadcrumbs)
	place(t, w, a)

	a.Actions()["breadcrumb"]()
	a.Actions()["breadcrumb"]()
	crumbs := 0
	for _, e := range w.EntitiesAt(engine.Loc(1, 1)) {
		if e.Attrs().Type == BreadcrumbType {
			crumbs++
		}
	}
	assert.Equal(t, 1, crumbs)
}

func TestAgentFeaturesAndActions(t *testing.T) {
	a := NewAgent(engine.Loc(0, 0), Toggling, Movement)
	assert.Equal(t, []string{"Movable", "Toggling"}, a.Features())
	assert.Equal(t, []string{"down", "left", "pass", "right", "toggle_switch", "up"}, engine.ActionNames(a))
	assert.Equal(t, engine.AgentPriority, a.Priority)

	bare := NewAgent(engine.Loc(0, 0))
	assert.Equal(t, []string{engine.AgentType}, bare.Features())
}

func TestDuplicateCapabilityPanics(t *testing.T) {
	assert.Panics(t, func() { NewAgent(engine.Loc(0, 0), Movement, Movement) })
}

func TestRandomWalker(t *testing.T) {
	w := NewRandomWalker(engine.Loc(0, 0), 2, Movement)
	var _ engine.Autonomous = w
	assert.Equal(t, 2, w.Speed())

	rng := rand.New(rand.NewSource(3))
	legal := map[string]bool{}
	for _, n := range engine.ActionNames(w) {
		legal[n] = true
	}
	for i := 0; i < 50; i++ {
		assert.True(t, legal[w.NextAction(rng)])
	}
}

func TestTerrainFeatures(t *testing.T) {
	tests := []struct {
		name string
		e    engine.Entity
		want []string
	}{
		{"goal", NewGoal(engine.Loc(0, 0), 3), []string{GoalType, "goal_id3"}},
		{"closed door", NewDoor(engine.Loc(0, 0), 2), []string{DoorType, "closed", "state2"}},
		{"water", NewWater(engine.Loc(0, 0)), []string{WaterType}},
		{"pushable", NewPushable(engine.Loc(0, 0)), []string{PushableType}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.Features())
		})
	}

	assert.True(t, IsBlock(NewPushable(engine.Loc(0, 0))))
	assert.False(t, NewBlock(engine.Loc(0, 0)).Passable)
	assert.Equal(t, WaterPriority, NewWater(engine.Loc(0, 0)).Priority)
	assert.False(t, NewGoal(engine.Loc(0, 0), 0).Hidden().Visible)
	assert.Panics(t, func() { NewGoal(engine.Loc(0, 0), MaxGoalIDs) })
}

func TestRegisterFeatures(t *testing.T) {
	r := vocab.NewRegistry()
	RegisterFeatures(r)

	for _, tok := range []string{"Goal", "goal_id9", "state0", "open", "Pushing", "Agent"} {
		assert.True(t, r.Has(tok), tok)
	}
	assert.Contains(t, r.Actions(), "push_left")
	assert.Contains(t, r.Actions(), "pass")
}
