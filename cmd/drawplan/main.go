// Command drawplan solves a retirement drawdown schedule from a YAML household
// configuration, or serves the planner over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/drawplan/drawplan/internal/config"
	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/output"
	"github.com/drawplan/drawplan/internal/plan"
	"github.com/drawplan/drawplan/internal/reference"
	"github.com/drawplan/drawplan/internal/server"
	"github.com/drawplan/drawplan/internal/solver"
	"github.com/drawplan/drawplan/pkg/logger"
)

type options struct {
	format    string
	timeLimit float64
	verbose   bool

	pessimisticTaxes      bool
	pessimisticHealthcare bool

	maxAssets float64
	minTaxes  float64

	noConversions            bool
	noConversionsAfterSocSec bool

	solverPath string
	threads    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "drawplan <config.yaml>",
		Short: "Optimize a retirement drawdown schedule",
		Long: `drawplan builds a mixed-integer model of a household's retirement years
(withdrawals, Roth conversions, taxes, ACA subsidies, RMDs) and solves it
with COIN-OR CBC for the chosen objective.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0], opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.format, "format", "console", "output format: console, csv or json")
	flags.Float64Var(&opts.timeLimit, "timelimit", 0, "solver time limit per attempt, in seconds")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log solver progress")
	flags.BoolVar(&opts.pessimisticTaxes, "pessimistic-taxes", false, "grow tax brackets 1% slower than inflation")
	flags.BoolVar(&opts.pessimisticHealthcare, "pessimistic-healthcare", false, "grow healthcare costs 1% faster than inflation")
	flags.Float64Var(&opts.maxAssets, "max-assets", 0, "fix yearly spending at this amount and maximize end-of-plan assets")
	flags.Float64Var(&opts.minTaxes, "min-taxes", 0, "fix yearly spending at this amount and minimize lifetime taxes")
	flags.BoolVar(&opts.noConversions, "no-conversions", false, "forbid Roth conversions")
	flags.BoolVar(&opts.noConversionsAfterSocSec, "no-conversions-after-socsec", false, "forbid Roth conversions once social security starts")
	flags.StringVar(&opts.solverPath, "solver", "", "path to the cbc executable (default: cbc on PATH)")
	flags.IntVar(&opts.threads, "threads", 0, "solver thread count")
	root.MarkFlagsMutuallyExclusive("max-assets", "min-taxes")

	root.AddCommand(newServeCmd(opts))
	return root
}

func (o *options) runConfig() domain.RunConfig {
	cfg := domain.RunConfig{
		Objective:                domain.Objective{Kind: domain.MaxSpend},
		PessimisticTaxes:         o.pessimisticTaxes,
		PessimisticHealthcare:    o.pessimisticHealthcare,
		NoConversions:            o.noConversions,
		NoConversionsAfterSocSec: o.noConversionsAfterSocSec,
		Verbose:                  o.verbose,
		SolverPath:               o.solverPath,
		Threads:                  o.threads,
	}
	if o.maxAssets > 0 {
		cfg.Objective = domain.Objective{Kind: domain.MaxAssets, Value: o.maxAssets}
	} else if o.minTaxes > 0 {
		cfg.Objective = domain.Objective{Kind: domain.MinTaxes, Value: o.minTaxes}
	}
	if o.timeLimit > 0 {
		cfg.TimeLimit = time.Duration(o.timeLimit * float64(time.Second))
	}
	return cfg
}

func (o *options) planner(log plan.Logger) *plan.Planner {
	pl := plan.NewPlanner(&solver.CBC{
		Path:    o.solverPath,
		Threads: o.threads,
		Verbose: o.verbose,
	})
	pl.Logger = log
	return pl
}

func runPlan(cmd *cobra.Command, configPath string, opts *options) error {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true})

	formatter := output.GetFormatterByName(opts.format)
	if formatter == nil {
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	tables, err := reference.Load()
	if err != nil {
		return err
	}
	file, err := config.NewParser().LoadFromFile(configPath)
	if err != nil {
		return err
	}
	household, err := config.BuildHousehold(file, tables)
	if err != nil {
		return err
	}

	pl := opts.planner(logger.Adapter{Log: log})
	result, err := pl.Plan(cmd.Context(), household, opts.runConfig())
	if err != nil {
		return err
	}

	data, err := formatter.Format(result)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func newServeCmd(opts *options) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if opts.verbose {
				level = "debug"
			}
			log := logger.New(logger.Config{Level: level})
			logger.SetGlobalLogger(log)

			tables, err := reference.Load()
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Port:    port,
				Log:     log,
				Planner: opts.planner(logger.Adapter{Log: log}),
				Tables:  tables,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	return cmd
}
