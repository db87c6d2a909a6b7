package engine

import (
	"errors"
	"fmt"
)

// Reset builds a fresh random episode. Layouts rejected by a Constructor
// are retried up to MaxConstructionAttempts times; after that Reset returns
// ErrConstructionExhausted and the engine stays unusable until a later
// Reset succeeds.
func (g *GameEngine) Reset() error {
	var lastErr error
	for attempt := 1; attempt <= MaxConstructionAttempts; attempt++ {
		err := g.construct()
		if err == nil {
			return nil
		}
		g.ready = false
		if !errors.Is(err, ErrConstructionFailed) {
			return fmt.Errorf("reset %s: %w", g.task.Name(), err)
		}
		lastErr = err
		g.logger.Debug("episode construction failed", "task", g.task.Name(), "attempt", attempt, "error", err)
	}
	return fmt.Errorf("reset %s: %w after %d attempts (map size too small?): %v",
		g.task.Name(), ErrConstructionExhausted, MaxConstructionAttempts, lastErr)
}

func (g *GameEngine) construct() error {
	ms := g.params.MapSize
	width := ms.MinWidth + g.rng.Intn(ms.MaxWidth-ms.MinWidth+1)
	height := ms.MinHeight + g.rng.Intn(ms.MaxHeight-ms.MinHeight+1)

	g.ready = false
	if g.world != nil {
		g.world.release()
	}
	g.world = NewWorld(g.namespace, width, height)
	g.turns = newTurns()
	g.dispatch = make(map[string]map[string]func())
	g.potential = newPotentialMap(width, height, -g.params.TurnPenalty)
	g.history = make(map[string]float64)
	g.reward = 0
	g.rewardSoFar = 0
	g.approxBest = 0

	for _, c := range g.task.Components() {
		ctor, ok := c.(Constructor)
		if !ok {
			continue
		}
		if err := ctor.Construct(g); err != nil {
			return err
		}
	}

	corners := []Location{
		{X: 0, Y: 0},
		{X: 0, Y: height - 1},
		{X: width - 1, Y: 0},
		{X: width - 1, Y: height - 1},
	}
	for _, loc := range corners {
		if _, err := g.world.Add(NewCorner(loc), ""); err != nil {
			return fmt.Errorf("place corner: %w", err)
		}
	}

	g.step()
	g.buildPotential()
	g.approxBest = g.estimateBest()
	g.ready = true

	if g.task.Finished(g) {
		if actor := g.CurrentAgent(); actor != "" {
			g.settle(actor)
		}
	}
	return nil
}
