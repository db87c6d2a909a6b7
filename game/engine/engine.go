package engine

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/wricardo/gridworld/game/vocab"
)

// Engine provides the driver-facing episode operations
type Engine interface {
	// Episode lifecycle
	Reset() error
	IsOver() bool
	TaskName() string

	// Observation and control
	Observe() (Observation, error)
	Act(action string)
	CurrentAgent() string
	LegalActions() []string

	// Rewards
	Reward() float64
	RewardSoFar() float64
	ApproxBestReward() float64

	// Static properties
	MaxBounds() (width, height int)
	AllActions() []string
	AllFeatures() []string
}

// GameEngine runs episodes of a single Task
type GameEngine struct {
	task       Task
	params     Params
	rng        *rand.Rand
	logger     *slog.Logger
	featurizer Featurizer
	vocabulary *vocab.Registry
	namespace  string

	world     *World
	turns     *turns
	dispatch  map[string]map[string]func()
	potential *PotentialMap

	reward      float64
	rewardSoFar float64
	history     map[string]float64
	approxBest  float64
	ready       bool
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithLogger sets the logger used for engine diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(g *GameEngine) { g.logger = l }
}

// WithFeaturizer sets the observation encoder
func WithFeaturizer(f Featurizer) Option {
	return func(g *GameEngine) { g.featurizer = f }
}

// WithVocabulary sets the registry AllFeatures and AllActions read from
func WithVocabulary(r *vocab.Registry) Option {
	return func(g *GameEngine) { g.vocabulary = r }
}

// NewEngine validates params, builds the engine and resets the first episode
func NewEngine(task Task, params Params, opts ...Option) (*GameEngine, error) {
	g, err := newEngine(task, params, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Reset(); err != nil {
		return nil, err
	}
	return g, nil
}

func newEngine(task Task, params Params, opts ...Option) (*GameEngine, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task is required", ErrInvalidParams)
	}
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	seed := params.Seed
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, err
		}
	}
	id := uuid.New()

	g := &GameEngine{
		task:       task,
		params:     params,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     slog.Default(),
		vocabulary: vocab.Default,
		namespace:  hex.EncodeToString(id[:]),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Task returns the task the engine runs
func (g *GameEngine) Task() Task { return g.task }

// TaskName returns the task name
func (g *GameEngine) TaskName() string { return g.task.Name() }

// Params returns the engine settings
func (g *GameEngine) Params() Params { return g.params }

// Rand returns the episode generator. Content code must draw all randomness from it.
func (g *GameEngine) Rand() *rand.Rand { return g.rng }

// Logger returns the diagnostics logger
func (g *GameEngine) Logger() *slog.Logger { return g.logger }

// World returns the current episode's entity store
func (g *GameEngine) World() *World { return g.world }

// Potential returns the current episode's potential map
func (g *GameEngine) Potential() *PotentialMap { return g.potential }

// Namespace returns the id prefix of this engine's entities
func (g *GameEngine) Namespace() string { return g.namespace }

// AddAgent places an agent and registers it with the scheduler. Agents
// need a name so their id is stable across episodes.
func (g *GameEngine) AddAgent(a Agent, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("add agent: %w: agents must be named", ErrInvalidID)
	}
	id, err := g.world.Add(a, name)
	if err != nil {
		return "", err
	}
	g.turns.register(id, a.Speed())
	table := make(map[string]func(), len(a.Actions()))
	for name, fn := range a.Actions() {
		table[name] = fn
	}
	g.dispatch[id] = table
	return id, nil
}

// RemoveAgent removes a registered agent from the grid, the schedule and
// the dispatch table
func (g *GameEngine) RemoveAgent(id string) error {
	if _, ok := g.dispatch[id]; !ok {
		return fmt.Errorf("remove agent %q: %w", id, ErrUnknownID)
	}
	g.turns.unregister(id)
	delete(g.dispatch, id)
	if _, ok := g.world.Get(id); ok {
		return g.world.Remove(id)
	}
	return nil
}

// Agent returns the registered agent with the given id
func (g *GameEngine) Agent(id string) (Agent, bool) {
	if _, ok := g.dispatch[id]; !ok {
		return nil, false
	}
	e, ok := g.world.Get(id)
	if !ok {
		return nil, false
	}
	a, ok := e.(Agent)
	return a, ok
}

// IsOver reports whether the episode reached a terminal state
func (g *GameEngine) IsOver() bool {
	return g.ready && g.task.Finished(g)
}

// CurrentAgent returns the id of the agent whose turn it is. Autonomous
// agents scheduled before it act first. An empty id means no agent is
// registered.
func (g *GameEngine) CurrentAgent() string {
	if !g.ready {
		return ""
	}
	for {
		id, ok := g.turns.next()
		if !ok {
			return ""
		}
		a, ok := g.Agent(id)
		if !ok {
			// removed from the world behind the engine's back
			g.turns.unregister(id)
			delete(g.dispatch, id)
			continue
		}
		auto, isAuto := a.(Autonomous)
		if !isAuto || g.task.Finished(g) || !g.hasControllable() {
			return id
		}
		if !g.resolve(id, auto.NextAction(g.rng)) {
			g.turns.complete(id, auto.Speed())
		}
	}
}

func (g *GameEngine) hasControllable() bool {
	for _, id := range g.turns.order {
		a, ok := g.Agent(id)
		if !ok {
			continue
		}
		if _, isAuto := a.(Autonomous); !isAuto {
			return true
		}
	}
	return false
}

// Act performs action for the current agent. It does nothing once the
// episode is over or when the agent does not support the action.
func (g *GameEngine) Act(action string) {
	if !g.ready || g.task.Finished(g) {
		return
	}
	actor := g.CurrentAgent()
	if actor == "" || g.task.Finished(g) {
		return
	}
	g.resolve(actor, action)
}

// resolve runs one turn and reports whether the action was supported
func (g *GameEngine) resolve(actor, action string) bool {
	fn, ok := g.dispatch[actor][action]
	if !ok {
		g.logger.Debug("unsupported action ignored", "task", g.task.Name(), "agent", actor, "action", action)
		return false
	}
	fn()
	g.step()

	speed := 1
	if a, ok := g.Agent(actor); ok {
		speed = a.Speed()
	}
	g.turns.complete(actor, speed)
	g.settle(actor)
	return true
}

func (g *GameEngine) step() {
	eachComponent(g.task, func(s Stepper) { s.Step(g) })
}

// LegalActions returns the current agent's action names, sorted
func (g *GameEngine) LegalActions() []string {
	actor := g.CurrentAgent()
	table := g.dispatch[actor]
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxBounds returns the largest width and height an episode can have
func (g *GameEngine) MaxBounds() (int, int) {
	return g.params.MapSize.MaxWidth, g.params.MapSize.MaxHeight
}

// AllActions returns every registered action name
func (g *GameEngine) AllActions() []string {
	return g.vocabulary.Actions()
}

// AllFeatures returns the full observation vocabulary for this engine
func (g *GameEngine) AllFeatures() []string {
	w, h := g.MaxBounds()
	extra := []string{g.task.Name()}
	if g.featurizer != nil {
		extra = append(extra, g.featurizer.Vocabulary(w, h)...)
	}
	eachComponent(g.task, func(p VocabularyProvider) {
		extra = append(extra, p.Vocabulary(w, h)...)
	})
	return g.vocabulary.Merge(extra...)
}
