package tasks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"name":"easy","task":"SingleGoal","block_pct":0}`))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, "easy", cfg.Name)
	assert.Equal(t, 0.0, cfg.BlockPct)
	assert.Equal(t, def.WaterPct, cfg.WaterPct)
	assert.Equal(t, def.MapSize, cfg.MapSize)
	assert.Equal(t, def.NGoals, cfg.NGoals)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.Name = "ok"
		c.Task = "MultiGoals"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing name", func(c *Config) { c.Name = "" }, true},
		{"unknown task", func(c *Config) { c.Task = "Maze" }, true},
		{"negative block pct", func(c *Config) { c.BlockPct = -0.1 }, true},
		{"hazards over one", func(c *Config) { c.BlockPct, c.WaterPct = 0.6, 0.6 }, true},
		{"too many goals", func(c *Config) { c.NGoals = 11 }, true},
		{"one switch state", func(c *Config) { c.SwitchStates = 1 }, true},
		{"no switches", func(c *Config) { c.NSwitches = 0 }, true},
		{"visit min zero", func(c *Config) { c.VisitMin = 0 }, true},
		{"visit max below min", func(c *Config) { c.VisitMin, c.VisitMax = 2, 1 }, true},
		{"visit max unbounded", func(c *Config) { c.VisitMax = -1 }, false},
		{"map too small", func(c *Config) { c.MapSize.MinWidth = 1 }, true},
		{"negative turn penalty", func(c *Config) { c.TurnPenalty = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := ValidateConfig(&c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConfigUnknownTaskIs(t *testing.T) {
	c := DefaultConfig()
	c.Name = "x"
	c.Task = "Maze"
	assert.True(t, errors.Is(ValidateConfig(&c), ErrUnknownTask))
}

func TestLoadConfigByName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	data := []byte(`{"name":"walls","task":"LightKey","map_size":{"min_width":7,"max_width":7,"min_height":7,"max_height":7}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "walls.json"), data, 0o644))

	cfg, err := LoadConfigByName("walls")
	require.NoError(t, err)
	assert.Equal(t, "LightKey", cfg.Task)
	assert.Equal(t, 7, cfg.MapSize.MaxWidth)

	_, err = LoadConfigByName("missing")
	assert.Error(t, err)
}
