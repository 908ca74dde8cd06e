package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aristath/waveplan/internal/scheduler"
)

type filePlan struct {
	Items    []fileItem    `yaml:"items"`
	Warnings []fileWarning `yaml:"warnings,omitempty"`
}

type fileWarning struct {
	Kind    string   `yaml:"kind"`
	Wave    string   `yaml:"wave,omitempty"`
	Items   []string `yaml:"items,omitempty"`
	Message string   `yaml:"message"`
}

// WriteResult writes the planned schedule to w as YAML.
func WriteResult(w io.Writer, result *scheduler.Result) error {
	plan := filePlan{}
	for _, item := range result.Items {
		plan.Items = append(plan.Items, fileItem{
			ID:           item.ID,
			Name:         item.Name,
			Wave:         item.WaveID,
			Priority:     item.Priority,
			Effort:       item.EffortPoints,
			DependsOn:    item.DependsOn,
			Worker:       item.AssignedWorkerID,
			StartDate:    formatDate(item.StartDate),
			EndDate:      formatDate(item.EndDate),
			DurationDays: item.DurationDays,
		})
	}
	for _, warn := range result.Warnings {
		plan.Warnings = append(plan.Warnings, fileWarning{
			Kind:    string(warn.Kind),
			Wave:    warn.WaveID,
			Items:   warn.ItemIDs,
			Message: warn.Message,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

// WriteResultFile writes the planned schedule to a YAML file.
func WriteResultFile(path string, result *scheduler.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := WriteResult(f, result); err != nil {
		return err
	}
	return f.Close()
}

var csvHeader = []string{
	"id", "name", "wave", "priority", "effort",
	"depends_on", "worker", "start_date", "end_date", "duration_days",
}

// WriteCSV writes the item table to w as CSV for spreadsheet hand-off.
// Dependencies are joined with ";" inside a single column.
func WriteCSV(w io.Writer, result *scheduler.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range result.Items {
		row := []string{
			item.ID,
			item.Name,
			item.WaveID,
			strconv.Itoa(item.Priority),
			strconv.Itoa(item.EffortPoints),
			strings.Join(item.DependsOn, ";"),
			item.AssignedWorkerID,
			formatDate(item.StartDate),
			formatDate(item.EndDate),
			strconv.Itoa(item.DurationDays),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", item.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the item table to a CSV file.
func WriteCSVFile(path string, result *scheduler.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, result); err != nil {
		return err
	}
	return f.Close()
}
