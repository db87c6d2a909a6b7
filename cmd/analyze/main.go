// Command analyze prints quick, human-readable statistics about task
// configuration files. For each file it plays seeded episodes with a
// uniformly random policy and compares the outcome with the engine's
// estimate of the best reachable reward. With --mixture it also plays all
// the files as one mixture of tasks.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/tasks"
	"github.com/wricardo/gridworld/game/vocab"
)

const (
	defaultEpisodes = 20
	// maxTurns caps a random episode
	maxTurns = 200
)

// Stats summarises the episodes played on one engine
type Stats struct {
	Episodes   int
	Solved     int
	MeanReward float64
	MeanBest   float64
	MeanTurns  float64
	Tasks      map[string]int
}

// SolveRate is the share of episodes that ended before the turn cap
func (s Stats) SolveRate() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Solved) / float64(s.Episodes)
}

// play runs episodes on e with a random legal-action policy
func play(e engine.Engine, episodes int, seed int64) (Stats, error) {
	rng := rand.New(rand.NewSource(seed))
	stats := Stats{Tasks: map[string]int{}}

	var reward, best, turns float64
	for i := 0; i < episodes; i++ {
		if i > 0 {
			if err := e.Reset(); err != nil {
				return stats, err
			}
		}
		stats.Tasks[e.TaskName()]++
		estimate := e.ApproxBestReward()

		n := 0
		for ; n < maxTurns && !e.IsOver(); n++ {
			legal := e.LegalActions()
			if len(legal) == 0 {
				break
			}
			e.Act(legal[rng.Intn(len(legal))])
		}

		stats.Episodes++
		if e.IsOver() {
			stats.Solved++
		}
		reward += e.RewardSoFar()
		if !math.IsInf(estimate, 0) {
			best += estimate
		}
		turns += float64(n)
	}

	if stats.Episodes > 0 {
		k := float64(stats.Episodes)
		stats.MeanReward = reward / k
		stats.MeanBest = best / k
		stats.MeanTurns = turns / k
	}
	return stats, nil
}

func loadConfig(path string) (*tasks.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	config, err := tasks.ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return config, nil
}

func printStats(s Stats) {
	fmt.Printf("Episodes: %d\n", s.Episodes)
	fmt.Printf("Random policy solved: %d (%.0f%%)\n", s.Solved, 100*s.SolveRate())
	fmt.Printf("Mean random reward: %.2f over %.1f turns\n", s.MeanReward, s.MeanTurns)
	fmt.Printf("Mean best estimate: %.2f\n", s.MeanBest)
	if gap := s.MeanBest - s.MeanReward; gap > 0 {
		fmt.Printf("Gap to best: %.2f\n", gap)
	}
	if len(s.Tasks) > 1 {
		names := make([]string, 0, len(s.Tasks))
		for name := range s.Tasks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %d episodes\n", name, s.Tasks[name])
		}
	}
}

func analyze(paths []string, episodes int, seed int64, mixture bool) error {
	var engines []engine.Engine
	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))

		config, err := loadConfig(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		config.Seed = seed
		fmt.Printf("Name: %s\n", config.Name)
		fmt.Printf("Task: %s\n", config.Task)

		g, err := tasks.NewEngine(*config)
		if err != nil {
			fmt.Printf("Error building episodes: %v\n", err)
			continue
		}
		w, h := g.MaxBounds()
		fmt.Printf("Max map: %d x %d, %d actions, %d features\n", w, h, len(g.AllActions()), len(g.AllFeatures()))

		stats, err := play(g, episodes, seed)
		if err != nil {
			fmt.Printf("Error playing: %v\n", err)
			continue
		}
		printStats(stats)
		engines = append(engines, g)
	}

	if !mixture || len(engines) == 0 {
		return nil
	}

	fmt.Printf("\n=== Mixture of %d configs ===\n", len(engines))
	m, err := engine.NewMixture(seed, engines...)
	if err != nil {
		return fmt.Errorf("building mixture: %w", err)
	}
	w, h := m.MaxBounds()
	fmt.Printf("Max map: %d x %d\n", w, h)
	fmt.Printf("Actions: %s\n", strings.Join(m.AllActions(), ", "))
	fmt.Printf("Features: %d\n", len(m.AllFeatures()))

	stats, err := play(m, episodes*len(engines), seed)
	if err != nil {
		return fmt.Errorf("playing mixture: %w", err)
	}
	printStats(stats)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "play random episodes of task configurations and report statistics",
		ArgsUsage: "[config files...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "mixture", Usage: "also play all configs as one task mixture"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				var err error
				paths, err = filepath.Glob(filepath.Join("configs", "*.json"))
				if err != nil {
					return err
				}
			}
			if len(paths) == 0 {
				return cli.Exit("no config files given and none found in configs/", 1)
			}
			tasks.RegisterAll(vocab.Default)
			return analyze(paths, defaultEpisodes, 1, cmd.Bool("mixture"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
