package engine

// Reward returns the reward of the last resolved action
func (g *GameEngine) Reward() float64 { return g.reward }

// RewardSoFar returns the cumulative reward of the agent that acted last
func (g *GameEngine) RewardSoFar() float64 { return g.rewardSoFar }

// ApproxBestReward returns the episode's heuristic estimate of the best
// achievable cumulative reward
func (g *GameEngine) ApproxBestReward() float64 { return g.approxBest }

// CumulativeReward returns the running total of one agent
func (g *GameEngine) CumulativeReward(agentID string) float64 {
	return g.history[agentID]
}

func (g *GameEngine) instantReward(agentID string) float64 {
	r := -g.params.TurnPenalty
	eachComponent(g.task, func(rule RewardRule) {
		r = rule.AdjustReward(g, agentID, r)
	})
	return r
}

// settle records the reward of the turn agentID just finished
func (g *GameEngine) settle(agentID string) {
	g.reward = g.instantReward(agentID)
	g.history[agentID] += g.reward
	g.rewardSoFar = g.history[agentID]
}

func (g *GameEngine) buildPotential() {
	eachComponent(g.task, func(rule PotentialRule) {
		rule.AdjustPotential(g, g.potential)
	})
}

func (g *GameEngine) estimateBest() float64 {
	total := 0.0
	eachComponent(g.task, func(e Estimator) {
		total += e.ApproxReward(g)
	})
	return total
}
