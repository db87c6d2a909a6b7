package engine

import (
	"fmt"
	"math/rand"
	"sort"
)

// Mixture plays a randomly chosen engine each episode. Exactly one engine
// is active at a time; every driver call goes to it.
type Mixture struct {
	engines []Engine
	rng     *rand.Rand
	active  Engine
	maxW    int
	maxH    int
}

// NewMixture wraps engines and resets the first episode. A zero seed draws
// a random one.
func NewMixture(seed int64, engines ...Engine) (*Mixture, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("%w: mixture needs at least one engine", ErrInvalidParams)
	}
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, err
		}
	}
	m := &Mixture{engines: engines, rng: rand.New(rand.NewSource(seed))}
	for _, e := range engines {
		w, h := e.MaxBounds()
		m.maxW = max(m.maxW, w)
		m.maxH = max(m.maxH, h)
	}
	if err := m.Reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// Active returns the engine playing the current episode
func (m *Mixture) Active() Engine { return m.active }

// Reset picks an engine and resets it
func (m *Mixture) Reset() error {
	m.active = m.engines[m.rng.Intn(len(m.engines))]
	return m.active.Reset()
}

func (m *Mixture) IsOver() bool                  { return m.active.IsOver() }
func (m *Mixture) TaskName() string              { return m.active.TaskName() }
func (m *Mixture) Observe() (Observation, error) { return m.active.Observe() }
func (m *Mixture) Act(action string)             { m.active.Act(action) }
func (m *Mixture) CurrentAgent() string          { return m.active.CurrentAgent() }
func (m *Mixture) LegalActions() []string        { return m.active.LegalActions() }
func (m *Mixture) Reward() float64               { return m.active.Reward() }
func (m *Mixture) RewardSoFar() float64          { return m.active.RewardSoFar() }
func (m *Mixture) ApproxBestReward() float64     { return m.active.ApproxBestReward() }

// MaxBounds is the union of the wrapped engines' bounds
func (m *Mixture) MaxBounds() (int, int) { return m.maxW, m.maxH }

// AllActions is the union of the wrapped engines' actions
func (m *Mixture) AllActions() []string {
	return m.union(Engine.AllActions)
}

// AllFeatures is the union of the wrapped engines' features
func (m *Mixture) AllFeatures() []string {
	return m.union(Engine.AllFeatures)
}

func (m *Mixture) union(get func(Engine) []string) []string {
	set := make(map[string]struct{})
	for _, e := range m.engines {
		for _, s := range get(e) {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
