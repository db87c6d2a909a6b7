package engine

// Task defines one kind of episode. The engine drives its components in
// the order Components returns them.
type Task interface {
	Name() string
	Components() []Component
	Finished(g *GameEngine) bool
}

// Component is any value implementing one or more of the hook interfaces
// below. Hooks a component does not implement are skipped.
type Component any

// Constructor populates the world during Reset. Return an error wrapping
// ErrConstructionFailed (see Unsatisfiable) to request another attempt.
type Constructor interface {
	Construct(g *GameEngine) error
}

// Stepper runs after every resolved action and once after construction
type Stepper interface {
	Step(g *GameEngine)
}

// RewardRule adjusts the instant reward of the agent that just acted
type RewardRule interface {
	AdjustReward(g *GameEngine, agentID string, reward float64) float64
}

// PotentialRule adjusts the potential map once per episode
type PotentialRule interface {
	AdjustPotential(g *GameEngine, p *PotentialMap)
}

// Estimator contributes to the approximate best reward
type Estimator interface {
	ApproxReward(g *GameEngine) float64
}

// SideInformer describes the episode goal as token sentences
type SideInformer interface {
	SideInformation(g *GameEngine) [][]string
}

// VocabularyProvider contributes tokens that depend on the map bounds
type VocabularyProvider interface {
	Vocabulary(maxWidth, maxHeight int) []string
}

func eachComponent[T any](t Task, fn func(T)) {
	for _, c := range t.Components() {
		if hook, ok := c.(T); ok {
			fn(hook)
		}
	}
}
