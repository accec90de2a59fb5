// Package commands builds the roster command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-roster/internal/client"
	"github.com/aanand-mishra/student-roster/internal/config"
	"github.com/aanand-mishra/student-roster/internal/logging"
	"github.com/aanand-mishra/student-roster/internal/metrics"
	"github.com/aanand-mishra/student-roster/internal/notify"
	"github.com/aanand-mishra/student-roster/internal/prefs"
	"github.com/aanand-mishra/student-roster/internal/roster"
	"github.com/aanand-mishra/student-roster/internal/theme"
)

type rootOptions struct {
	configPath      string
	metricsTextfile string
}

func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Browse and edit the student roster.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&ro.configPath, "config", "", "path to the configuration YAML file (or CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&ro.metricsTextfile, "metrics-textfile", "", "write client metrics to this file on exit")

	addTUI(cmd, ro)
	addList(cmd, ro)
	addStats(cmd, ro)
	addTheme(cmd, ro)
	return cmd
}

// app is everything a subcommand needs, built from the config.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	reg    *prometheus.Registry
	themes *theme.Manager
	engine *roster.Engine

	closeLog func() error
	textfile string
}

func (ro *rootOptions) loadConfig() (*config.Config, error) {
	path := ro.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		return config.FromEnv()
	}
	return config.Load(path)
}

func (ro *rootOptions) setup(ctx context.Context) (*app, error) {
	cfg, err := ro.loadConfig()
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.NewFile(cfg.Env, cfg.LogPath)
	if err != nil {
		return nil, err
	}

	kv, err := prefs.NewDisk(cfg.Theme.Dir)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	themes := theme.New(kv)
	if _, err := themes.Load(); err != nil {
		log.Warn("using default theme", slog.String("error", err.Error()))
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheus(reg, "client")
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	store := client.New(cfg.Client.BaseURL,
		client.WithLogger(log),
		client.WithRecorder(rec),
		client.WithTimeout(cfg.Client.Timeout),
	)

	engine := roster.New(store,
		roster.WithContext(ctx),
		roster.WithLogger(log),
		roster.WithTheme(themes),
		roster.WithNotifications(notify.New(notify.WithTTL(cfg.Notifications.TTL))),
		roster.WithDiscardStaleReloads(cfg.Sync.DiscardStaleReloads),
	)

	log.Debug("roster ready", slog.String("store", cfg.Client.BaseURL), slog.String("theme", string(themes.Current())))
	return &app{
		cfg:      cfg,
		log:      log,
		reg:      reg,
		themes:   themes,
		engine:   engine,
		closeLog: closeLog,
		textfile: ro.metricsTextfile,
	}, nil
}

func (a *app) Close() error {
	if a.textfile != "" {
		if err := prometheus.WriteToTextfile(a.textfile, a.reg); err != nil {
			a.log.Warn("metrics not written", slog.String("error", err.Error()))
		}
	}
	return a.closeLog()
}

// load runs the initial list to completion. Follow-up commands, such as
// notification timers, are not needed for one-shot output and are dropped.
func (a *app) load() {
	if cmd := a.engine.Init(); cmd != nil {
		a.engine.Update(cmd())
	}
}
