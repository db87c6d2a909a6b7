package engine

// turns implements the speed countdown scheduler. An agent acts when its
// countdown reaches zero; ties go to the earliest registered agent.
type turns struct {
	order     []string
	countdown map[string]int
	acting    string
}

func newTurns() *turns {
	return &turns{countdown: make(map[string]int)}
}

func (t *turns) register(id string, speed int) {
	if _, ok := t.countdown[id]; !ok {
		t.order = append(t.order, id)
	}
	t.countdown[id] = speed
}

// next returns the acting agent, selecting one if the slot is empty. It
// reports false when no agent is registered.
func (t *turns) next() (string, bool) {
	if t.acting != "" {
		return t.acting, true
	}
	if len(t.order) == 0 {
		return "", false
	}

	m := t.countdown[t.order[0]]
	for _, id := range t.order[1:] {
		if c := t.countdown[id]; c < m {
			m = c
		}
	}
	for _, id := range t.order {
		t.countdown[id] -= m
		if t.acting == "" && t.countdown[id] == 0 {
			t.acting = id
		}
	}
	return t.acting, true
}

// complete ends the acting agent's turn and restarts its countdown
func (t *turns) complete(id string, speed int) {
	t.countdown[id] = speed
	if t.acting == id {
		t.acting = ""
	}
}

// unregister drops id from the schedule, freeing the slot if it was acting
func (t *turns) unregister(id string) {
	if _, ok := t.countdown[id]; !ok {
		return
	}
	delete(t.countdown, id)
	for i, other := range t.order {
		if other == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	if t.acting == id {
		t.acting = ""
	}
}
