// Package engine provides the turn-based episode engine of the gridworld.
//
// The engine package implements:
//   - Entity and grid bookkeeping (World)
//   - Speed-countdown turn scheduling among agents
//   - Action dispatch through per-agent action tables
//   - Instant and cumulative rewards plus an approximate best reward oracle
//   - Randomized episode construction with bounded retry
//
// Core Types:
//
// The Engine interface defines the driver contract, implemented by
// GameEngine (one task) and Mixture (one of several tasks per episode). A
// Task lists Components; each component implements any of Constructor,
// Stepper, RewardRule, PotentialRule, Estimator and SideInformer, and the
// engine invokes them in list order.
//
// Usage:
//
//	g, err := engine.NewEngine(task, engine.DefaultParams())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for !g.IsOver() {
//		obs, _ := g.Observe()
//		g.Act(policy(obs))
//	}
//	fmt.Println(g.RewardSoFar(), g.ApproxBestReward())
//
// Rewards:
//
// Every turn costs the configured turn penalty; reward rules adjust it.
// The approximate best reward sums the estimators' values, which are
// computed once per episode from searches over the potential map. The
// potential map may hold negative edge costs, so the estimate is a
// heuristic and not a certified optimum.
package engine
