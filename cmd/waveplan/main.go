// Command waveplan runs one batch planning pass over a backlog: topological
// ordering, workday date calculation, and worker staffing. The backlog comes
// from a YAML file (-file) or the SQLite store (-db); the plan goes to YAML
// (-out), CSV (-csv), or back into the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/waveplan/internal/config"
	"github.com/aristath/waveplan/internal/events"
	"github.com/aristath/waveplan/internal/persistence"
	"github.com/aristath/waveplan/internal/scheduler"
	"github.com/aristath/waveplan/internal/snapshot"
)

type options struct {
	configPath string
	dbPath     string
	filePath   string
	outPath    string
	csvPath    string
	seed       int64
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a config file (default: ~/.waveplan and ./.waveplan)")
	flag.StringVar(&opts.dbPath, "db", "", "path to the SQLite backlog database")
	flag.StringVar(&opts.filePath, "file", "", "plan from a YAML backlog file instead of the database")
	flag.StringVar(&opts.outPath, "out", "", "write the plan to a YAML file ('-' for stdout)")
	flag.StringVar(&opts.csvPath, "csv", "", "write the plan to a CSV file")
	flag.Int64Var(&opts.seed, "seed", 0, "tie-break seed for reproducible runs (0 = from config or clock)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel, opts.verbose)

	schedCfg, err := cfg.SchedulerConfig()
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var store *persistence.SQLiteStore
	var snap *scheduler.Snapshot

	if opts.filePath != "" {
		snap, err = snapshot.Load(opts.filePath, schedCfg)
		if err != nil {
			return err
		}
	} else {
		dbPath := opts.dbPath
		if dbPath == "" {
			dbPath = cfg.DatabasePath
		}
		store, err = persistence.NewSQLiteStore(ctx, dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err = store.LoadSnapshot(ctx, schedCfg)
		if err != nil {
			return err
		}
	}

	bus := events.NewEventBus()
	defer bus.Close()
	go logEvents(bus.SubscribeAll(0), log)

	planner := scheduler.NewPlanner(log, bus)
	result, err := planner.Run(snap, seed)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning [%s] wave %d: %s\n", w.Kind, w.WaveOrder, w.Message)
	}

	if store != nil {
		if err := store.SaveSchedule(ctx, result); err != nil {
			return err
		}
	}

	switch {
	case opts.outPath == "-":
		if err := snapshot.WriteResult(stdout, result); err != nil {
			return err
		}
	case opts.outPath != "":
		if err := snapshot.WriteResultFile(opts.outPath, result); err != nil {
			return err
		}
	case store == nil && opts.csvPath == "":
		// File mode with no output target still shows the plan.
		if err := snapshot.WriteResult(stdout, result); err != nil {
			return err
		}
	}

	if opts.csvPath != "" {
		if err := snapshot.WriteCSVFile(opts.csvPath, result); err != nil {
			return err
		}
	}

	return nil
}

func loadConfig(path string) (*config.PlannerConfig, error) {
	if path != "" {
		return config.Load("", path)
	}
	return config.LoadDefault()
}

func newLogger(level string, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func logEvents(ch <-chan events.Event, log *slog.Logger) {
	for ev := range ch {
		switch e := ev.(type) {
		case events.RunStartedEvent:
			log.Info("planning started",
				"items", e.Items, "waves", e.Waves, "workers", e.Workers, "seed", e.Seed)
		case events.RunCompletedEvent:
			log.Info("planning finished",
				"scheduled", e.Scheduled, "assigned", e.Assigned,
				"warnings", e.Warnings, "elapsed", e.Duration)
		case events.WarningRaisedEvent:
			log.Warn("planning warning", "kind", e.Kind, "wave", e.WaveOrder, "items", e.ItemIDs)
		}
	}
}
