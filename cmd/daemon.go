package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/logly/logly/collector"
	"github.com/logly/logly/config"
	"github.com/logly/logly/scheduler"
	"github.com/logly/logly/store"
	"github.com/logly/logly/tailer"
	"github.com/logly/logly/tracer"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the daemon until SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, sched, err := buildScheduler(cfg)
			if err != nil {
				return fail(err)
			}
			defer st.Close()

			ctx := context.Background()
			sched.Start(ctx)
			scheduler.WaitForSignal(sched)
			return nil
		},
	}
}

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Execute each enabled collector once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, sched, err := buildScheduler(cfg)
			if err != nil {
				return fail(err)
			}
			defer st.Close()

			if err := sched.RunOnce(context.Background()); err != nil {
				return fail(fmt.Errorf("collect: %w", err))
			}
			return nil
		},
	}
}

func buildScheduler(cfg config.Config) (*store.Store, *scheduler.Scheduler, error) {
	st, err := store.Open(cfg.DataDir())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	var sys *collector.SystemSampler
	if cfg.System.Enabled {
		sys = collector.NewSystemSampler("/")
	}
	var net *collector.NetworkSampler
	if cfg.Network.Enabled {
		net = collector.NewNetworkSampler()
	}

	var tl *tailer.Tailer
	if cfg.Logs.Enabled {
		var sources []tailer.Source
		for name, src := range cfg.Logs.Sources {
			sources = append(sources, tailer.Source{Name: name, Path: src.Path, Enabled: src.Enabled})
		}
		tl = tailer.New(sources)
	}

	tc := tracer.NewTracerCollector(nil, nil)

	retention := store.RetentionPolicy{
		RawMetricsDays: cfg.Database.RetentionDays,
		LogEventsDays:  cfg.Database.RetentionDays,
		TracesDays:     cfg.Database.RetentionDays,
		HourlyDays:     cfg.Aggregation.KeepRawDataDays * 4,
	}

	intervals := scheduler.Intervals{
		System:  time.Duration(cfg.Collection.SystemMetrics) * time.Second,
		Network: time.Duration(cfg.Collection.NetworkMetrics) * time.Second,
		Logs:    time.Duration(cfg.Collection.LogParsing) * time.Second,
	}

	tasks := scheduler.BuildDefaultTasks(st, sys, net, tl, tc, retention, intervals)
	return st, scheduler.New(tasks), nil
}

func fail(err error) error {
	return &ExitCodeError{Code: 1, Err: err}
}
