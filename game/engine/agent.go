package engine

import (
	"fmt"
	"math/rand"
	"sort"
)

// AgentType is the type tag shared by every agent
const AgentType = "Agent"

// PassAction is available to every agent and does nothing
const PassAction = "pass"

// AgentPriority is the render priority of agents
const AgentPriority = 100

// Agent is an entity that takes turns
type Agent interface {
	Entity
	// Speed is the number of ticks between two turns of the agent.
	Speed() int
	// Actions maps action names to mutation routines.
	Actions() map[string]func()
}

// Autonomous agents choose their own actions when scheduled
type Autonomous interface {
	Agent
	NextAction(rng *rand.Rand) string
}

// AgentBase implements Agent. Capabilities extend its action table.
type AgentBase struct {
	Base

	speed        int
	actions      map[string]func()
	capabilities []string
}

// NewAgentBase creates an agent at loc with only the pass action. A
// non-positive speed defaults to 1.
func NewAgentBase(loc Location, speed int) *AgentBase {
	a := &AgentBase{}
	a.Init(loc, speed)
	return a
}

// Init prepares an embedded AgentBase
func (a *AgentBase) Init(loc Location, speed int) {
	if speed < 1 {
		speed = 1
	}
	a.Base = NewBase(AgentType, loc)
	a.Priority = AgentPriority
	a.speed = speed
	a.actions = map[string]func(){PassAction: func() {}}
	a.capabilities = nil
}

func (a *AgentBase) Speed() int { return a.speed }

func (a *AgentBase) Actions() map[string]func() { return a.actions }

// AddAction registers a named routine. Registering the same name twice is
// a programming error and panics.
func (a *AgentBase) AddAction(name string, fn func()) {
	if _, exists := a.actions[name]; exists {
		panic(fmt.Sprintf("engine: duplicate action %q", name))
	}
	a.actions[name] = fn
}

// AddCapability records a capability name used as an observation feature
func (a *AgentBase) AddCapability(name string) {
	a.capabilities = append(a.capabilities, name)
}

// Capabilities returns the recorded capability names
func (a *AgentBase) Capabilities() []string {
	out := make([]string, len(a.capabilities))
	copy(out, a.capabilities)
	return out
}

// Features lists the agent's capabilities, or the agent type tag when it has none
func (a *AgentBase) Features() []string {
	if len(a.capabilities) == 0 {
		return []string{AgentType}
	}
	seen := make(map[string]struct{}, len(a.capabilities))
	out := make([]string, 0, len(a.capabilities))
	for _, c := range a.capabilities {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ActionNames returns the agent's action names, sorted
func ActionNames(a Agent) []string {
	names := make([]string, 0, len(a.Actions()))
	for name := range a.Actions() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
