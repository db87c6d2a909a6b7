package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/tasks"
)

func testConfig(task string) tasks.Config {
	config := tasks.DefaultConfig()
	config.Name = task
	config.Task = task
	config.MapSize = engine.Fixed(5, 5)
	config.BlockPct = 0
	config.WaterPct = 0
	config.Seed = 3
	return config
}

func TestPlay(t *testing.T) {
	g, err := tasks.NewEngine(testConfig("SingleGoal"))
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	stats, err := play(g, 10, 1)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if stats.Episodes != 10 {
		t.Errorf("Expected 10 episodes, got %d", stats.Episodes)
	}
	if stats.Tasks["SingleGoal"] != 10 {
		t.Errorf("Expected 10 SingleGoal episodes, got %v", stats.Tasks)
	}
	if stats.Solved < 0 || stats.Solved > stats.Episodes {
		t.Errorf("Solved count out of range: %d", stats.Solved)
	}
	if stats.MeanTurns <= 0 || stats.MeanTurns > maxTurns {
		t.Errorf("Mean turns out of range: %v", stats.MeanTurns)
	}
	// A random walk can never beat the best estimate on a hazard-free map
	if stats.MeanReward > stats.MeanBest+1e-9 {
		t.Errorf("Random reward %.3f exceeds best estimate %.3f", stats.MeanReward, stats.MeanBest)
	}
}

func TestPlayMixture(t *testing.T) {
	a, err := tasks.NewEngine(testConfig("SingleGoal"))
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	b, err := tasks.NewEngine(testConfig("Switches"))
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	m, err := engine.NewMixture(7, a, b)
	if err != nil {
		t.Fatalf("Failed to build mixture: %v", err)
	}

	stats, err := play(m, 30, 2)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if stats.Tasks["SingleGoal"]+stats.Tasks["Switches"] != 30 {
		t.Errorf("Unexpected task counts %v", stats.Tasks)
	}
}

func TestSolveRate(t *testing.T) {
	if (Stats{}).SolveRate() != 0 {
		t.Error("Expected zero solve rate without episodes")
	}
	if r := (Stats{Episodes: 4, Solved: 1}).SolveRate(); r != 0.25 {
		t.Errorf("Expected 0.25, got %v", r)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"name": "good", "task": "Goto"}`), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := loadConfig(good)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if config.Task != "Goto" {
		t.Errorf("Expected Goto, got %s", config.Task)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "switches.json")
	if err := os.WriteFile(path, []byte(`{"name": "sw", "task": "Switches", "map_size": {"min_width": 5, "max_width": 5, "min_height": 5, "max_height": 5}}`), 0644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := analyze([]string{path, broken}, 3, 1, true); err != nil {
		t.Errorf("analyze failed: %v", err)
	}
}
