// Command validate checks the task configuration JSON files in a directory
// (default ../configs). For each file it checks:
//   - JSON structure and field ranges
//   - that the task is registered
//   - that episodes can be built: several seeded resets must succeed and
//     leave a consistent world with a finite reward estimate
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/tasks"
)

// defaultTrials is the number of seeded episodes built per file
const defaultTrials = 20

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file and
// builds trials seeded episodes from it.
func validateConfig(filePath string, trials int) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := tasks.ParseConfig(data)
	if err != nil {
		result.fail("Invalid config: %v", err)
		return result
	}

	trial := validateEpisodes(*config, trials)
	if !trial.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, trial.Errors...)

	if result.Valid {
		ms := config.MapSize
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Name: %s", config.Name),
			fmt.Sprintf("✓ Task: %s", config.Task),
			fmt.Sprintf("✓ Map: %d-%d x %d-%d", ms.MinWidth, ms.MaxWidth, ms.MinHeight, ms.MaxHeight),
			fmt.Sprintf("✓ Turn penalty: %.2f", config.TurnPenalty),
		)
		if config.Featurizer != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Featurizer: %s (bounds %d)", config.Featurizer, config.Bounds))
		}
	}

	return result
}

// validateEpisodes resets one engine per seed 1..trials. A config whose
// layouts cannot be built, or whose worlds fail their consistency check,
// is invalid.
func validateEpisodes(config tasks.Config, trials int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	built := 0
	best := 0.0
	for seed := int64(1); seed <= int64(trials); seed++ {
		config.Seed = seed
		g, err := tasks.NewEngine(config)
		if err != nil {
			if errors.Is(err, engine.ErrConstructionExhausted) {
				result.fail("Seed %d: no layout could be built (map size too small?)", seed)
			} else {
				result.fail("Seed %d: %v", seed, err)
			}
			continue
		}
		if err := g.World().Verify(); err != nil {
			result.fail("Seed %d: inconsistent world: %v", seed, err)
			continue
		}
		estimate := g.ApproxBestReward()
		if math.IsInf(estimate, 0) || math.IsNaN(estimate) {
			result.fail("Seed %d: reward estimate is not finite", seed)
			continue
		}
		built++
		best += estimate
	}

	if built > 0 && result.Valid {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Episodes: %d/%d built", built, trials),
			fmt.Sprintf("✓ Mean best reward estimate: %.2f", best/float64(built)),
		)
	}
	return result
}

// validateDir validates every *.json file in dir, printing a concise report.
// It returns false if any file is invalid.
func validateDir(dir string, trials int) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, trials)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "check task configuration files",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}

			allValid, err := validateDir(dir, defaultTrials)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				return cli.Exit("❌ Some configurations have errors", 1)
			}
			fmt.Println("✅ All configurations are valid!")
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
