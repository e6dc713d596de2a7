package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/taskboard/internal/client"
	"github.com/sadopc/taskboard/internal/config"
	"github.com/sadopc/taskboard/internal/export"
	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/mutation"
	"github.com/sadopc/taskboard/internal/server"
	"github.com/sadopc/taskboard/internal/store"
	"github.com/sadopc/taskboard/internal/tui"
)

const usage = `usage: taskboard <command> [flags]

commands:
  serve    run the task API over a local SQLite database
  tui      open the terminal board against a running server (default)
  export   write all tasks to a CSV or JSON file
`

func main() {
	cmd, args := "tui", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "tui":
		err = runTUI(args)
	case "export":
		err = runExport(args)
	case "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig parses the common flags, loads the config and applies the
// flag overrides on top.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	configPath := fs.String("config", "", "path to a config file")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default :3000)")
	dbPath := fs.String("db", "", "SQLite database path")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:           cfg.Log.Level,
		Format:          cfg.Log.Format,
		ReportTimestamp: true,
	})

	s, err := store.New(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()
	logger.Info("database ready", "path", cfg.Server.DBPath)

	srv, err := server.New(s, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, cfg.Server.Addr)
}

func runTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	baseURL := fs.String("url", "", "task API base URL")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}

	w, err := logging.NewFileWriter(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer w.Close()
	logger := logging.New(w, logging.Options{
		Level:           cfg.Log.Level,
		Format:          cfg.Log.Format,
		Prefix:          "tui",
		ReportTimestamp: true,
	})

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repo := client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
	orch := mutation.New(repo, nil, logger)
	logger.Info("starting", "api", cfg.Client.BaseURL, "tz", loc.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	app := tui.NewApp(tui.Options{
		Orchestrator: orch,
		Location:     loc,
		Window:       cfg.Window(),
		Logger:       logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	baseURL := fs.String("url", "", "task API base URL")
	format := fs.String("format", "csv", "csv or json")
	out := fs.String("out", "", "output file (default ~/taskboard-<timestamp>.<format>)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	f := export.Format(*format)
	if f != export.FormatCSV && f != export.FormatJSON {
		return fmt.Errorf("unknown format %q", *format)
	}

	tasks, err := client.New(cfg.Client.BaseURL, cfg.Client.Timeout).List(context.Background())
	if err != nil {
		return err
	}

	now := time.Now().In(loc)
	path := *out
	if path == "" {
		if path, err = export.DefaultPath(f, now); err != nil {
			return err
		}
	}
	if err := export.Write(f, tasks, now, loc, path); err != nil {
		return err
	}
	fmt.Printf("exported %d tasks to %s\n", len(tasks), path)
	return nil
}
