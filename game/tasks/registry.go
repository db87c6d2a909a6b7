package tasks

import (
	"fmt"
	"sort"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
	"github.com/wricardo/gridworld/game/vocab"
)

var registry = map[string]func(Config) engine.Task{
	"SingleGoal":        func(c Config) engine.Task { return NewSingleGoal(c) },
	"MultiGoals":        func(c Config) engine.Task { return NewMultiGoals(c) },
	"ConditionedGoals":  func(c Config) engine.Task { return NewConditionedGoals(c) },
	"Exclusion":         func(c Config) engine.Task { return NewExclusion(c) },
	"Goto":              func(c Config) engine.Task { return NewGoto(c) },
	"GotoHidden":        func(c Config) engine.Task { return NewGotoHidden(c) },
	"PushBlock":         func(c Config) engine.Task { return NewPushBlock(c) },
	"PushBlockCardinal": func(c Config) engine.Task { return NewPushBlockCardinal(c) },
	"Switches":          func(c Config) engine.Task { return NewSwitches(c) },
	"LightKey":          func(c Config) engine.Task { return NewLightKey(c) },
	"BlockedDoor":       func(c Config) engine.Task { return NewBlockedDoor(c) },
}

// Names lists the registered task names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the task named by cfg.Task
func New(cfg Config) (engine.Task, error) {
	build, ok := registry[cfg.Task]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTask, cfg.Task)
	}
	return build(cfg), nil
}

// NewEngine validates cfg, builds its task and resets a fresh engine
func NewEngine(cfg Config, opts ...engine.Option) (*engine.GameEngine, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	task, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return engine.NewEngine(task, cfg.Params(), opts...)
}

// RegisterFeatures adds the task names to r
func RegisterFeatures(r *vocab.Registry) {
	r.Register(Names()...)
}

// RegisterAll fills r with the engine, item and task vocabularies.
// Commands call it once at startup with vocab.Default.
func RegisterAll(r *vocab.Registry) {
	engine.RegisterFeatures(r)
	items.RegisterFeatures(r)
	RegisterFeatures(r)
}
