package config

import "time"

// DefaultConfig returns the built-in defaults: a 7-point, 5-workday sprint
// (1.4 points per workday), planning from the next calendar day, no
// holidays.
func DefaultConfig() *PlannerConfig {
	return &PlannerConfig{
		PointsPerSprint:   7,
		WorkdaysPerSprint: 5,
		GlobalStartDate:   time.Now().AddDate(0, 0, 1).Format(dateLayout),
		MaxIterations:     1000,
		DatabasePath:      ".waveplan/backlog.db",
		LogLevel:          "info",
	}
}
