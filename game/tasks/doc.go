// Package tasks provides the gridworld task catalogue.
//
// Each task composes shared components (random hazards, the terminal goal
// reward) with its own construction, termination, reward and estimate
// rules. Tasks are built from a Config by name:
//
//	cfg, err := tasks.LoadConfigByName("single_goal")
//	if err != nil {
//		log.Fatal(err)
//	}
//	g, err := tasks.NewEngine(*cfg)
//
// Available tasks:
//   - SingleGoal, MultiGoals, ConditionedGoals, Exclusion: goal visiting
//   - Goto, GotoHidden: reach an absolute location given as side information
//   - PushBlock, PushBlockCardinal: push a block onto a switch or a wall
//   - Switches: set every switch to the same colour
//   - LightKey: open a door with a switch, then reach the goal
//   - BlockedDoor: push a block out of a wall opening, then reach the goal
package tasks
