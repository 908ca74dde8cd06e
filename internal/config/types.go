package config

// PlannerConfig is the top-level configuration. Dates are YYYY-MM-DD
// strings in the file and parsed when the planning snapshot is assembled.
type PlannerConfig struct {
	PointsPerSprint   int      `json:"points_per_sprint"`
	WorkdaysPerSprint int      `json:"workdays_per_sprint"`
	GlobalStartDate   string   `json:"global_start_date"`
	Holidays          []string `json:"holidays,omitempty"`
	MaxIterations     int      `json:"max_iterations,omitempty"`
	Seed              int64    `json:"seed,omitempty"`
	DatabasePath      string   `json:"database_path,omitempty"`
	LogLevel          string   `json:"log_level,omitempty"` // "debug", "info", "warn", "error"
}
