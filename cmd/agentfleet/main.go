// Command agentfleet runs the personal automation fleet from the terminal:
// execute agents on demand, inspect status and history, or keep the process
// alive firing schedules.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/agentfleet"
	"github.com/hupe1980/agentfleet/config"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/fleet"
	"github.com/hupe1980/agentfleet/history/sqlite"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	anthropicmodel "github.com/hupe1980/agentfleet/model/anthropic"
	openaimodel "github.com/hupe1980/agentfleet/model/openai"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "agentfleet",
		Short: "Personal automation agent fleet",
		Long:  "Agentfleet runs a registry of automation agents on demand or on schedule and journals their results.",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration (built-in fleet when omitted)")

	rootCmd.AddCommand(newRunCommand(&configPath))
	rootCmd.AddCommand(newStatusCommand(&configPath))
	rootCmd.AddCommand(newHistoryCommand(&configPath))
	rootCmd.AddCommand(newScheduleCommand(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildFleet assembles a Fleet from the configuration. The returned cleanup
// closes the history database when one was opened.
func buildFleet(configPath string) (*agentfleet.Fleet, *config.Config, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg = loaded
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewSlogLogger(cfg.LogLevel(), cfg.Logger.Format, cfg.Logger.AddSource)

	opts := []func(o *agentfleet.Options){
		agentfleet.WithLogger(logger),
		agentfleet.WithOutputDir(cfg.Storage.OutputDir),
		agentfleet.WithHistoryCap(cfg.Fleet.HistoryCap),
		agentfleet.WithDefaultTimeout(timeout),
	}

	cleanup := func() {}
	if cfg.Storage.HistoryDB != "" {
		store, err := sqlite.New(cfg.Storage.HistoryDB, sqlite.WithCap(cfg.Fleet.HistoryCap))
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, agentfleet.WithHistoryStore(store))
		cleanup = func() { _ = store.Close() }
	}

	if gen := buildGenerator(cfg); gen != nil {
		opts = append(opts, agentfleet.WithGenerator(gen))
	}

	f := agentfleet.New(opts...)
	f.RegisterBuiltins()

	if err := f.AddAgents(cfg.Descriptors()); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	return f, cfg, cleanup, nil
}

func buildGenerator(cfg *config.Config) model.Generator {
	switch cfg.Model.Provider {
	case "openai":
		return openaimodel.NewGenerator(func(o *openaimodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
		})
	case "anthropic":
		return anthropicmodel.NewGenerator(func(o *anthropicmodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			o.APIKey = cfg.Model.APIKey
		})
	default:
		return nil
	}
}

func newRunCommand(configPath *string) *cobra.Command {
	var (
		parallel bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [agent-id...]",
		Short: "Execute agents (all enabled agents when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, cfg, cleanup, err := buildFleet(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("parallel") {
				parallel = cfg.Fleet.Parallel
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var results []core.ExecutionResult
			if len(args) > 0 {
				results = f.RunMany(ctx, args, parallel, timeout)
			} else {
				results = f.RunAll(ctx, parallel, timeout)
			}

			printResults(cmd.OutOrStdout(), results)

			if sum := fleet.Summarize(results); !sum.OK() {
				return fmt.Errorf("%d of %d agents failed", sum.Failed, sum.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&parallel, "parallel", "p", false, "Run agents concurrently")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Per-agent deadline (config default when zero)")
	return cmd
}

func printResults(w io.Writer, results []core.ExecutionResult) {
	for _, res := range results {
		status := "ok"
		if !res.Success {
			status = "failed"
			if res.Error != "" {
				status = "failed: " + res.Error
			}
		}
		fmt.Fprintf(w, "%s [%s] %s (%s)\n", res.AgentID, res.ExecutionID, status, res.Duration.Round(time.Millisecond))
	}

	sum := fleet.Summarize(results)
	fmt.Fprintf(w, "\n%d run, %d succeeded, %d failed, total %s\n",
		sum.Total, sum.Succeeded, sum.Failed, sum.TotalDuration.Round(time.Millisecond))
}

func newStatusCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status [agent-id]",
		Short: "Show agent status (all agents when none is named)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, cleanup, err := buildFleet(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()

			if len(args) == 1 {
				printStatus(w, f.Status(args[0]))
				return nil
			}

			statuses := f.StatusAll()
			for _, id := range f.AgentIDs() {
				printStatus(w, statuses[id])
			}
			return nil
		},
	}
}

func printStatus(w io.Writer, status core.AgentStatus) {
	lastRun := "never"
	if !status.LastRun.IsZero() {
		lastRun = status.LastRun.Format(time.RFC3339)
	}
	fmt.Fprintf(w, "%s [%s] last run: %s", status.AgentID, status.State, lastRun)
	if status.LastError != "" {
		fmt.Fprintf(w, " error: %s", status.LastError)
	}
	fmt.Fprintln(w)
}

func newHistoryCommand(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <agent-id>",
		Short: "Show recent executions of an agent, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, cleanup, err := buildFleet(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := f.History(args[0], limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(w, "No executions recorded.")
				return nil
			}

			for _, rec := range records {
				status := "ok"
				if !rec.Success {
					status = "failed"
					if rec.Error != "" {
						status = "failed: " + rec.Error
					}
				}
				fmt.Fprintf(w, "%s %s [%s] %s (%s)\n",
					rec.StartedAt.Format(time.RFC3339), rec.AgentID, rec.ExecutionID, status,
					rec.Duration.Round(time.Millisecond))
				if rec.HasArtifacts() {
					fmt.Fprintf(w, "  table: %s\n  report: %s\n", rec.TablePath, rec.ReportPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum records to show (0 for all retained)")
	return cmd
}

func newScheduleCommand(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run scheduled agents until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, cleanup, err := buildFleet(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched, err := f.Scheduler(ctx, timeout)
			if err != nil {
				return err
			}

			entries := sched.Entries()
			if len(entries) == 0 {
				return fmt.Errorf("no enabled agent has a schedule")
			}

			sched.Start()
			defer sched.Stop()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Scheduling %d agents:\n", len(entries))
			for _, id := range entries {
				fmt.Fprintf(w, "  %s (next %s)\n", id, sched.NextRun(id).Format(time.RFC3339))
			}

			<-ctx.Done()
			fmt.Fprintln(w, "Shutting down...")
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Per-agent deadline for scheduled runs (config default when zero)")
	return cmd
}
