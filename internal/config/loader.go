package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/waveplan/internal/scheduler"
)

const dateLayout = "2006-01-02"

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config,
// defaults. Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*PlannerConfig, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.waveplan/config.json
// Project: .waveplan/config.json (relative to cwd)
func LoadDefault() (*PlannerConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".waveplan", "config.json")
	projectPath := filepath.Join(".waveplan", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and overlays its set fields onto
// the base config. Missing files are silently skipped.
func mergeConfigFile(base *PlannerConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded PlannerConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded.PointsPerSprint != 0 {
		base.PointsPerSprint = loaded.PointsPerSprint
	}
	if loaded.WorkdaysPerSprint != 0 {
		base.WorkdaysPerSprint = loaded.WorkdaysPerSprint
	}
	if loaded.GlobalStartDate != "" {
		base.GlobalStartDate = loaded.GlobalStartDate
	}
	if loaded.Holidays != nil {
		base.Holidays = loaded.Holidays
	}
	if loaded.MaxIterations != 0 {
		base.MaxIterations = loaded.MaxIterations
	}
	if loaded.Seed != 0 {
		base.Seed = loaded.Seed
	}
	if loaded.DatabasePath != "" {
		base.DatabasePath = loaded.DatabasePath
	}
	if loaded.LogLevel != "" {
		base.LogLevel = loaded.LogLevel
	}

	return nil
}

// SchedulerConfig parses the file representation into the planning config
// consumed by the scheduler.
func (c *PlannerConfig) SchedulerConfig() (scheduler.Config, error) {
	start, err := time.Parse(dateLayout, c.GlobalStartDate)
	if err != nil {
		return scheduler.Config{}, fmt.Errorf("parsing global start date %q: %w", c.GlobalStartDate, err)
	}

	holidays := make([]time.Time, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		d, err := time.Parse(dateLayout, h)
		if err != nil {
			return scheduler.Config{}, fmt.Errorf("parsing holiday %q: %w", h, err)
		}
		holidays = append(holidays, d)
	}

	return scheduler.Config{
		PointsPerSprint:   c.PointsPerSprint,
		WorkdaysPerSprint: c.WorkdaysPerSprint,
		GlobalStartDate:   start,
		Holidays:          holidays,
		MaxIterations:     c.MaxIterations,
	}, nil
}
