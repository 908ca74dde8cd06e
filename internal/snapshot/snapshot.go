// Package snapshot reads backlog snapshots from YAML files and writes
// planning results back out as YAML or CSV. The YAML file is the
// database-free way to run the planner: one file holds the config, the
// waves, the workers, and the items.
package snapshot

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aristath/waveplan/internal/scheduler"
)

const dateLayout = "2006-01-02"

type fileSnapshot struct {
	Config  fileConfig `yaml:"config"`
	Waves   []fileWave `yaml:"waves"`
	Workers []string   `yaml:"workers"`
	Items   []fileItem `yaml:"items"`
}

type fileConfig struct {
	PointsPerSprint   int      `yaml:"points_per_sprint"`
	WorkdaysPerSprint int      `yaml:"workdays_per_sprint"`
	GlobalStartDate   string   `yaml:"global_start_date"`
	Holidays          []string `yaml:"holidays,omitempty"`
	MaxIterations     int      `yaml:"max_iterations,omitempty"`
}

type fileWave struct {
	ID    string `yaml:"id"`
	Order int    `yaml:"order"`
}

type fileItem struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name,omitempty"`
	Wave         string   `yaml:"wave,omitempty"`
	Priority     int      `yaml:"priority,omitempty"`
	Effort       int      `yaml:"effort"`
	DependsOn    []string `yaml:"depends_on,omitempty"`
	Worker       string   `yaml:"worker,omitempty"`
	StartDate    string   `yaml:"start_date,omitempty"`
	EndDate      string   `yaml:"end_date,omitempty"`
	DurationDays int      `yaml:"duration_days,omitempty"`
}

// Load parses a YAML backlog file into a snapshot. Config fields present in
// the file override the passed-in base config; absent fields keep the base
// values, so a file can carry just items and rely on the config file for
// the planning parameters.
func Load(path string, base scheduler.Config) (*scheduler.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var file fileSnapshot
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	cfg, err := mergeConfig(base, file.Config)
	if err != nil {
		return nil, err
	}

	snap := &scheduler.Snapshot{Config: cfg}

	for _, w := range file.Waves {
		snap.Waves = append(snap.Waves, scheduler.Wave{ID: w.ID, Order: w.Order})
	}
	for _, id := range file.Workers {
		snap.Workers = append(snap.Workers, scheduler.Worker{ID: id})
	}

	seen := make(map[string]bool, len(file.Items))
	for _, fi := range file.Items {
		if fi.ID == "" {
			return nil, fmt.Errorf("snapshot item without an id")
		}
		if seen[fi.ID] {
			return nil, fmt.Errorf("duplicate item id in snapshot: %s", fi.ID)
		}
		seen[fi.ID] = true

		if !scheduler.ValidEffort(fi.Effort) {
			return nil, fmt.Errorf("item %s: effort %d is not on the scale %v", fi.ID, fi.Effort, scheduler.EffortScale)
		}

		item := &scheduler.WorkItem{
			ID:               fi.ID,
			Name:             fi.Name,
			WaveID:           fi.Wave,
			Priority:         fi.Priority,
			EffortPoints:     fi.Effort,
			DependsOn:        fi.DependsOn,
			AssignedWorkerID: fi.Worker,
			DurationDays:     fi.DurationDays,
		}
		if item.StartDate, err = parseDate(fi.StartDate); err != nil {
			return nil, fmt.Errorf("item %s: %w", fi.ID, err)
		}
		if item.EndDate, err = parseDate(fi.EndDate); err != nil {
			return nil, fmt.Errorf("item %s: %w", fi.ID, err)
		}
		snap.Items = append(snap.Items, item)
	}

	return snap, nil
}

func mergeConfig(base scheduler.Config, file fileConfig) (scheduler.Config, error) {
	cfg := base
	if file.PointsPerSprint > 0 {
		cfg.PointsPerSprint = file.PointsPerSprint
	}
	if file.WorkdaysPerSprint > 0 {
		cfg.WorkdaysPerSprint = file.WorkdaysPerSprint
	}
	if file.MaxIterations > 0 {
		cfg.MaxIterations = file.MaxIterations
	}
	if file.GlobalStartDate != "" {
		start, err := parseDate(file.GlobalStartDate)
		if err != nil {
			return cfg, fmt.Errorf("config global_start_date: %w", err)
		}
		cfg.GlobalStartDate = start
	}
	if len(file.Holidays) > 0 {
		cfg.Holidays = nil
		for _, h := range file.Holidays {
			d, err := parseDate(h)
			if err != nil {
				return cfg, fmt.Errorf("config holiday: %w", err)
			}
			cfg.Holidays = append(cfg.Holidays, d)
		}
	}
	return cfg, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	return d, nil
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(dateLayout)
}
