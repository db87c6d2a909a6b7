// Package vocab holds the feature and action vocabulary shared by every
// gridworld task.
//
// Item, capability and task packages register their tokens explicitly at
// process start; observation encoders and drivers read the sorted union.
package vocab

import (
	"fmt"
	"sort"
	"sync"
)

// Shared side-information tokens.
const (
	Goto   = "GOTO"
	If     = "IF"
	Push   = "PUSH"
	Avoid  = "AVOID"
	Left   = "LEFT"
	Right  = "RIGHT"
	Up     = "UP"
	Down   = "DOWN"
	Same   = "SAME"
	State  = "STATE"
	All    = "ALL"
	Switch = "SWITCH"

	Game = "GAME"
	Info = "INFO"

	// Pad is the empty token used to pad fixed-width encodings.
	Pad = ""
)

// MaxOrdered is the number of ordinal OBJ tokens.
const MaxOrdered = 10

// Ordered returns the ordinal token for i, e.g. OBJ0.
func Ordered(i int) string {
	return fmt.Sprintf("OBJ%d", i)
}

// Coords returns the absolute location token for (x, y).
func Coords(x, y int) string {
	return fmt.Sprintf("%dx%dy", x, y)
}

// RelativeCoords returns the agent-relative location token for (dx, dy).
func RelativeCoords(dx, dy int) string {
	return fmt.Sprintf("d%dx%dy", dx, dy)
}

// Base returns the cross-task vocabulary.
func Base() []string {
	tokens := []string{Goto, If, Push, Avoid, Left, Right, Up, Down, Same, State, All, Switch, Game, Info, Pad}
	for i := 0; i < MaxOrdered; i++ {
		tokens = append(tokens, Ordered(i))
	}
	return tokens
}

// Registry is a set of feature tokens and action names.
type Registry struct {
	mu       sync.RWMutex
	features map[string]struct{}
	actions  map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		features: make(map[string]struct{}),
		actions:  make(map[string]struct{}),
	}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register adds feature tokens.
func (r *Registry) Register(tokens ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tokens {
		r.features[t] = struct{}{}
	}
}

// RegisterActions adds action names.
func (r *Registry) RegisterActions(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.actions[n] = struct{}{}
	}
}

// All returns every registered feature token, sorted.
func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.features)
}

// Actions returns every registered action name, sorted.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions)
}

// Has reports whether token is a registered feature.
func (r *Registry) Has(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.features[token]
	return ok
}

// Clear removes every registration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features = make(map[string]struct{})
	r.actions = make(map[string]struct{})
}

// Merge returns the sorted union of the registered features and extra.
func (r *Registry) Merge(extra ...string) []string {
	r.mu.RLock()
	set := make(map[string]struct{}, len(r.features)+len(extra))
	for t := range r.features {
		set[t] = struct{}{}
	}
	r.mu.RUnlock()
	for _, t := range extra {
		set[t] = struct{}{}
	}
	return sortedKeys(set)
}

// Index maps every token of All to its position.
func (r *Registry) Index() map[string]int {
	all := r.All()
	idx := make(map[string]int, len(all))
	for i, t := range all {
		idx[t] = i
	}
	return idx
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
