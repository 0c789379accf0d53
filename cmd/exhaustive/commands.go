package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/exhaustive/config"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/pkg/log"
	"github.com/YuminosukeSato/exhaustive/report"
	"github.com/YuminosukeSato/exhaustive/search"
)

type rootFlags struct {
	logLevel string
	workers  int
	console  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "exhaustive",
		Short:        "Exhaustive feature-subset classifier search",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides the config)")
	root.PersistentFlags().IntVar(&flags.workers, "workers", 0, "worker goroutines (overrides n_processes)")
	root.PersistentFlags().BoolVar(&flags.console, "console", false, "human-readable log output")

	root.AddCommand(newRunCmd(flags), newEstimateCmd(flags))
	return root
}

// session is a loaded configuration with its data and resolved options.
type session struct {
	cfg    *config.Config
	data   *dataset.Data
	opts   search.Options
	dir    *report.Dir
	logger log.Logger
}

func openSession(path string, flags *rootFlags) (*session, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level := cfg.Level()
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	if err := log.SetupLogger(level, flags.console); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("exhaustive").With(log.ConfigPathKey, path)

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if flags.workers > 0 {
		opts.Workers = flags.workers
	}

	data, err := cfg.LoadData()
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded data",
		log.SamplesKey, data.NumSamples(),
		log.FeaturesKey, len(data.Features()),
		log.DatasetsKey, len(data.Datasets()),
	)

	dir, err := report.NewDir(cfg.OutputPath(), cfg.Plot)
	if err != nil {
		return nil, err
	}
	opts.Logger = log.GetLoggerWithName("search")
	opts.MetricsPath = dir.File(report.MetricsFile)

	return &session{cfg: cfg, data: data, opts: opts, dir: dir, logger: logger}, nil
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run the search over every (n, k) cell of the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0], flags)
			if err != nil {
				return err
			}
			grid, err := s.cfg.LoadGrid()
			if err != nil {
				return err
			}

			s.opts.Sink = s.dir
			driver, err := search.NewDriver(s.data, s.opts)
			if err != nil {
				return err
			}

			start := time.Now()
			s.logger.Info("Starting search",
				log.WorkersKey, s.opts.Workers,
				log.OutputDirKey, s.dir.Path,
				log.RandomSeedKey, s.opts.Seed,
			)
			table, err := driver.Run(cmd.Context(), grid)
			if err != nil {
				s.logger.Error("Search failed", err)
				return err
			}
			s.logger.Info(fmt.Sprintf("Search finished: %s classifiers kept across %d grid cells in %s",
				humanize.Comma(int64(table.Len())), len(grid), time.Since(start).Round(time.Second)),
				log.OutputDirKey, s.dir.Path,
			)
			return nil
		},
	}
}

func newEstimateCmd(flags *rootFlags) *cobra.Command {
	var (
		maxK     int
		maxHours float64
		subsets  int
	)
	cmd := &cobra.Command{
		Use:   "estimate <config.yaml>",
		Short: "Project full run times from sampled subsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0], flags)
			if err != nil {
				return err
			}

			limit := s.cfg.MaxTime()
			if cmd.Flags().Changed("max-hours") {
				limit = time.Duration(maxHours * float64(time.Hour))
			}
			if limit <= 0 {
				return errors.NewConfigurationError("max_estimated_time", "no time limit: set max_estimated_time or --max-hours")
			}

			s.opts.LimitSubsets = true
			s.opts.ShuffleSubsets = true
			if cmd.Flags().Changed("subsets") || s.opts.NumSubsets < 1 {
				s.opts.NumSubsets = subsets
			}
			driver, err := search.NewDriver(s.data, s.opts)
			if err != nil {
				return err
			}

			rows, err := driver.EstimateGrid(cmd.Context(), maxK, limit)
			if err != nil {
				s.logger.Error("Estimation failed", err)
				return err
			}
			if err := s.dir.WriteEstimates(rows); err != nil {
				return err
			}
			s.logger.Info(fmt.Sprintf("Estimated %d grid cells under %s", len(rows), humanize.FormatFloat("#,###.##", limit.Hours())+"h"),
				log.OutputDirKey, s.dir.Path,
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxK, "max-k", 5, "largest subset size to estimate")
	cmd.Flags().Float64Var(&maxHours, "max-hours", 0, "stop growing n once a cell is projected above this many hours")
	cmd.Flags().IntVar(&subsets, "subsets", 100, "subsets sampled per cell")
	return cmd
}
