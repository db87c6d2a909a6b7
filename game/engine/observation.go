package engine

import (
	"sort"

	"github.com/wricardo/gridworld/game/vocab"
)

// Observation is what a driver sees before choosing an action
type Observation struct {
	AgentID  string  `json:"agent_id"`
	Reward   float64 `json:"reward"`
	State    State   `json:"state"`
	Features any     `json:"features,omitempty"`
}

// State is the raw, encoder-independent view of an episode
type State struct {
	Task     string        `json:"task"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Over     bool          `json:"over"`
	Entities []EntityState `json:"entities"`
	SideInfo [][]string    `json:"side_info"`
}

// EntityState describes one placed entity
type EntityState struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Visible  bool     `json:"visible"`
	Passable bool     `json:"passable"`
	Priority int      `json:"priority"`
	Features []string `json:"features"`
}

// Snapshot is the input of a Featurizer
type Snapshot struct {
	World     *World
	MaxWidth  int
	MaxHeight int
	SideInfo  [][]string
}

// Featurizer encodes a snapshot for one agent
type Featurizer interface {
	Featurize(s *Snapshot, agentID string) (any, error)
	// Vocabulary returns the tokens the encoder adds for the given bounds.
	Vocabulary(maxWidth, maxHeight int) []string
}

// Observe returns the current agent's view. Calling it repeatedly without
// acting returns the same observation.
func (g *GameEngine) Observe() (Observation, error) {
	if !g.ready {
		return Observation{}, ErrNotReady
	}
	id := g.CurrentAgent()
	obs := Observation{
		AgentID: id,
		Reward:  g.reward,
		State:   g.State(),
	}
	if g.featurizer != nil {
		w, h := g.MaxBounds()
		snap := &Snapshot{World: g.world, MaxWidth: w, MaxHeight: h, SideInfo: g.SideInfo()}
		features, err := g.featurizer.Featurize(snap, id)
		if err != nil {
			return Observation{}, err
		}
		obs.Features = features
	}
	return obs, nil
}

// State captures every entity, ordered by cell then by priority
func (g *GameEngine) State() State {
	st := State{
		Task:     g.task.Name(),
		Width:    g.world.Width(),
		Height:   g.world.Height(),
		Over:     g.IsOver(),
		SideInfo: g.SideInfo(),
	}
	for y := 0; y < g.world.Height(); y++ {
		for x := 0; x < g.world.Width(); x++ {
			cell := g.world.EntitiesAt(Loc(x, y))
			sort.SliceStable(cell, func(i, j int) bool {
				return cell[i].Attrs().Priority > cell[j].Attrs().Priority
			})
			for _, e := range cell {
				a := e.Attrs()
				st.Entities = append(st.Entities, EntityState{
					ID:       a.ID,
					Type:     a.Type,
					X:        a.Loc.X,
					Y:        a.Loc.Y,
					Visible:  a.Visible,
					Passable: a.Passable,
					Priority: a.Priority,
					Features: e.Features(),
				})
			}
		}
	}
	return st
}

// SideInfo returns the task description sentences, each prefixed with INFO
func (g *GameEngine) SideInfo() [][]string {
	info := [][]string{{vocab.Info, vocab.Game, g.task.Name()}}
	eachComponent(g.task, func(s SideInformer) {
		for _, line := range s.SideInformation(g) {
			info = append(info, append([]string{vocab.Info}, line...))
		}
	})
	return info
}

// RegisterFeatures adds the engine's own tokens to r
func RegisterFeatures(r *vocab.Registry) {
	r.Register(vocab.Base()...)
	r.Register(CornerType, AgentType)
	r.RegisterActions(PassAction)
}
