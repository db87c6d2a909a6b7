package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
)

// ErrUnknownTask is returned for task names missing from the registry
var ErrUnknownTask = errors.New("unknown task")

// Config describes a task variant. Start from DefaultConfig so fields
// omitted in JSON keep their defaults.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Task        string `json:"task"`

	MapSize     engine.MapSize `json:"map_size"`
	TurnPenalty float64        `json:"turn_penalty"`
	Seed        int64          `json:"seed,omitempty"`

	GoalReward   float64 `json:"goal_reward"`
	BlockPct     float64 `json:"block_pct"`
	WaterPct     float64 `json:"water_pct"`
	WaterPenalty float64 `json:"water_penalty"`

	NGoals int `json:"n_goals"`
	// GoalPenalty is charged for stepping on a wrong goal. Zero selects
	// the task default.
	GoalPenalty  float64 `json:"goal_penalty"`
	NColors      int     `json:"n_colors"`
	VisitMin     int     `json:"visit_min"`
	VisitMax     int     `json:"visit_max"`
	NSwitches    int     `json:"n_switches"`
	SwitchStates int     `json:"switch_states"`

	// Featurizer names the observation encoder; Bounds is its sight range.
	Featurizer string `json:"featurizer,omitempty"`
	Bounds     int    `json:"bounds,omitempty"`
}

// DefaultConfig returns the default settings of every task
func DefaultConfig() Config {
	p := engine.DefaultParams()
	return Config{
		MapSize:      p.MapSize,
		TurnPenalty:  p.TurnPenalty,
		GoalReward:   1,
		BlockPct:     0.1,
		WaterPct:     0.1,
		WaterPenalty: 0.2,
		NGoals:       3,
		NColors:      3,
		VisitMin:     1,
		VisitMax:     -1,
		NSwitches:    2,
		SwitchStates: 2,
		Featurizer:   "sentence_relative",
		Bounds:       5,
	}
}

// Params returns the engine settings of the config
func (c Config) Params() engine.Params {
	return engine.Params{MapSize: c.MapSize, TurnPenalty: c.TurnPenalty, Seed: c.Seed}
}

func (c Config) goalPenalty(fallback float64) float64 {
	if c.GoalPenalty == 0 {
		return fallback
	}
	return c.GoalPenalty
}

// ValidateConfig validates a task configuration
func ValidateConfig(c *Config) error {
	if c.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if _, ok := registry[c.Task]; !ok {
		return fmt.Errorf("config validation: %w %q (known: %s)", ErrUnknownTask, c.Task, strings.Join(Names(), ", "))
	}
	if err := engine.ValidateParams(c.Params()); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if c.BlockPct < 0 || c.BlockPct > 1 {
		return fmt.Errorf("config validation: block_pct must be between 0 and 1, got %v", c.BlockPct)
	}
	if c.WaterPct < 0 || c.WaterPct > 1 {
		return fmt.Errorf("config validation: water_pct must be between 0 and 1, got %v", c.WaterPct)
	}
	if c.BlockPct+c.WaterPct > 1 {
		return fmt.Errorf("config validation: block_pct + water_pct must not exceed 1")
	}
	if c.NGoals < 1 || c.NGoals > items.MaxGoalIDs {
		return fmt.Errorf("config validation: n_goals must be between 1 and %d, got %d", items.MaxGoalIDs, c.NGoals)
	}
	if c.NColors < 1 || c.NColors >= items.MaxStates {
		return fmt.Errorf("config validation: n_colors must be between 1 and %d, got %d", items.MaxStates-1, c.NColors)
	}
	if c.SwitchStates < 2 || c.SwitchStates >= items.MaxStates {
		return fmt.Errorf("config validation: switch_states must be between 2 and %d, got %d", items.MaxStates-1, c.SwitchStates)
	}
	if c.NSwitches < 1 {
		return fmt.Errorf("config validation: n_switches must be at least 1, got %d", c.NSwitches)
	}
	if c.VisitMin < 1 || c.VisitMin > c.NGoals {
		return fmt.Errorf("config validation: visit_min must be between 1 and n_goals (%d), got %d", c.NGoals, c.VisitMin)
	}
	if c.VisitMax != -1 && (c.VisitMax < c.VisitMin || c.VisitMax > c.NGoals) {
		return fmt.Errorf("config validation: visit_max must be -1 or between visit_min and n_goals, got %d", c.VisitMax)
	}
	if c.Bounds < 0 {
		return fmt.Errorf("config validation: bounds must not be negative, got %d", c.Bounds)
	}
	return nil
}

// LoadConfig loads a task configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(resolvePath(filename))
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes JSON over DefaultConfig and validates the result
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigByName loads a task configuration by name from the configs directory
func LoadConfigByName(configName string) (*Config, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}
	configPath := filepath.Join("configs", configName)

	if _, err := os.Stat(resolvePath(configPath)); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// resolvePath honours the CONFIG_DIR environment variable for paths under configs/
func resolvePath(filename string) string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" && strings.HasPrefix(filename, "configs/") {
		return filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
	}
	return filename
}
