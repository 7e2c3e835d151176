package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/vista/internal/config"
	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/log"
	"github.com/mmcdole/vista/internal/store"
	"github.com/mmcdole/vista/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: vista [-v] [file]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("vista %s\n", Version)
		return
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting vista", "version", Version)

	ds, err := store.Open(cfg.Source.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer ds.Close()

	piped := !term.IsTerminal(int(os.Stdin.Fd()))
	if err := fillDataset(ds, path, piped, cfg.Source.SeedCount, logger); err != nil {
		return err
	}
	count, err := ds.Count()
	if err != nil {
		return fmt.Errorf("failed to count dataset: %w", err)
	}

	opts, err := cfg.ViewportOptions()
	if err != nil {
		return fmt.Errorf("invalid viewport config: %w", err)
	}
	if opts.LazyLoading {
		opts.TotalCount = count
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		// Size the first window before the WindowSizeMsg arrives.
		opts.Width, opts.Height = w, max(h-tui.ChromeHeight, 1)
	}

	appCfg := tui.Config{
		Options:    opts,
		Source:     ds,
		ShowStatus: cfg.UI.ShowStatus,
		Logger:     logger,
		Matcher:    cfg.UI.Matcher,
	}
	if !opts.LazyLoading {
		items, err := ds.Range(context.Background(), 0, count)
		if err != nil {
			return fmt.Errorf("failed to read dataset: %w", err)
		}
		appCfg.Items = items
	}

	model, err := tui.New(appCfg)
	if err != nil {
		return err
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if piped {
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(model, progOpts...)

	logger.Info("starting TUI", "items", count, "lazy", opts.LazyLoading)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// fillDataset replaces the dataset with the lines of path or of piped
// stdin, or seeds synthetic log lines when the dataset is still empty.
func fillDataset(ds *store.DatasetStore, path string, piped bool, seed int, logger *slog.Logger) error {
	var r io.Reader
	switch {
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	case piped:
		r = os.Stdin
	}

	if r != nil {
		if err := ds.Reset(); err != nil {
			return fmt.Errorf("failed to reset dataset: %w", err)
		}
		n, err := ds.ImportLines(r)
		if err != nil {
			return fmt.Errorf("failed to import lines: %w", err)
		}
		logger.Info("imported lines", "count", n, "path", path)
		return nil
	}

	n, err := ds.Count()
	if err != nil {
		return err
	}
	if n > 0 || seed <= 0 {
		return nil
	}
	start := time.Now()
	if err := seedDataset(ds, seed); err != nil {
		return fmt.Errorf("failed to seed dataset: %w", err)
	}
	logger.Info("seeded dataset", "count", seed, "elapsed", time.Since(start))
	return nil
}

var levels = []string{"INFO", "DEBUG", "INFO", "WARN", "INFO", "ERROR"}

// seedDataset writes n synthetic log lines.
func seedDataset(ds *store.DatasetStore, n int) error {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := make([]domain.Item, 0, 1000)
	for i := 0; i < n; i++ {
		level := levels[i%len(levels)]
		batch = append(batch, domain.Item{
			ID: fmt.Sprintf("seed-%d", i),
			Content: fmt.Sprintf("%s %-5s request %d served in %dms",
				base.Add(time.Duration(i)*time.Second).Format(time.RFC3339), level, i, 3+i%97),
			Disabled: level == "DEBUG",
			Metadata: map[string]string{"level": level},
		})
		if len(batch) == cap(batch) {
			if err := ds.Append(batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return ds.Append(batch...)
}
