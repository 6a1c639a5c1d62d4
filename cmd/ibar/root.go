package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mchmarny/ibar/pkg/config"
	"github.com/mchmarny/ibar/pkg/logger"
	"github.com/mchmarny/ibar/pkg/menu"
	"github.com/mchmarny/ibar/pkg/server"
	"github.com/mchmarny/ibar/pkg/statusbar"
	"github.com/mchmarny/ibar/pkg/tray"
)

const appName = "ibar"

type options struct {
	configPath  string
	port        int
	capacity    int
	capacitySet bool
	headless    bool
	watch       bool
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Status bar menu that keeps a few items in view and the rest under More",
		Long: `ibar shows a status bar menu built from an item file and from items
registered over its local HTTP API. The first items are shown directly; the
rest move into a "More..." submenu.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.capacitySet = cmd.Flags().Changed("capacity")
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", config.DefaultFileName, "Path to the item file")
	f.IntVarP(&opts.port, "port", "p", server.DefaultPort, "Port for the local control API")
	f.IntVar(&opts.capacity, "capacity", menu.DefaultCapacity, "Items shown before overflow (overrides the item file)")
	f.BoolVar(&opts.headless, "headless", false, "Run the control API only, without the status bar")
	f.BoolVar(&opts.watch, "watch", true, "Reload the item file when it changes")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $LOG_LEVEL")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n", appName, version, commit, date)
		},
	}
}

func run(parent context.Context, opts *options) error {
	logger.SetDefaultLoggerWithLevel(appName, version, opts.logLevel)
	slog.Info("starting "+appName, "commit", commit, "date", date)

	file, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return err
	}

	capacity := file.CapacityOrDefault()
	if opts.capacitySet {
		capacity = opts.capacity
	}

	m, err := statusbar.NewManager(capacity,
		statusbar.WithTitle(titleOrDefault(file.Title)),
		statusbar.WithVersion(version),
		statusbar.WithMoreTitle(file.MoreTitle),
	)
	if err != nil {
		return err
	}

	m.Register(file.Items)

	var w *config.Watcher
	if opts.watch {
		w = config.NewWatcher(opts.configPath, config.DefaultDebounce)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serve := func(ctx context.Context) error {
		return m.Run(ctx, w, file,
			server.WithPort(opts.port),
			server.WithErrorLog(logger.NewLogLogger(slog.LevelError, false)),
		)
	}

	if opts.headless {
		slog.Info("running headless, no status bar")
		return serve(ctx)
	}

	return runWithTray(ctx, m, serve)
}

// runWithTray owns the main goroutine for the native event loop and runs the
// control API alongside it. Either side stopping stops the other.
func runWithTray(ctx context.Context, m *statusbar.Manager, serve func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := tray.New(m.Capacity(),
		func(path string) {
			go func() {
				if err := m.Invoke(ctx, path); err != nil {
					slog.Error("menu action failed", "path", path, "error", err)
				}
			}()
		},
		cancel,
	)
	m.AddRenderer(t)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	var started atomic.Bool
	errCh := make(chan error, 1)

	t.Run(func() {
		started.Store(true)
		go func() {
			err := serve(ctx)
			errCh <- err
			if err != nil {
				slog.Error("control API stopped", "error", err)
			}
			t.Quit()
		}()
	}, cancel)

	cancel()

	if !started.Load() {
		return nil
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func titleOrDefault(title string) string {
	if title == "" {
		return statusbar.DefaultTitle
	}
	return title
}
