package config

import (
	"path/filepath"
	"testing"
)

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.PointsPerSprint = 9
	cfg.Holidays = []string{"2025-07-04"}
	cfg.Seed = 42

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.PointsPerSprint != 9 {
		t.Errorf("PointsPerSprint = %d, want 9", loaded.PointsPerSprint)
	}
	if len(loaded.Holidays) != 1 || loaded.Holidays[0] != "2025-07-04" {
		t.Errorf("Holidays = %v, want [2025-07-04]", loaded.Holidays)
	}
	if loaded.Seed != 42 {
		t.Errorf("Seed = %d, want 42", loaded.Seed)
	}
}
