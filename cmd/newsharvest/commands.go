package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsHarvest/internal/app"
	"NewsHarvest/internal/config"
	"NewsHarvest/internal/domain"
	"NewsHarvest/internal/logging"
	"NewsHarvest/internal/usecase"
)

// report is the JSON document written by the harvest command.
type report struct {
	Status   domain.HarvestStatus     `json:"status"`
	Articles []domain.AcceptedArticle `json:"articles"`
	Metrics  *domain.Metrics          `json:"metrics"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsharvest",
		Short:         "Harvest quality-scored news articles from a homepage",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newHarvestCmd(), newScheduleCmd())
	return root
}

func newHarvestCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "harvest <homepage-url>",
		Short: "Run one harvest session and print the results as JSON",
		Long: `Discover article links on the homepage, extract and score each article, and write
the accepted articles with session metrics as JSON. Ctrl-C stops after the current article.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := newApplication(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			status, runErr := application.Harvest(ctx, applyFlagOverrides(cmd, application.DefaultTarget(args[0])))
			if runErr != nil && status.SessionID == "" {
				return runErr
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := writeReport(out, status); err != nil {
				return err
			}

			// Sink failures are reported after the results are safely written.
			return runErr
		},
	}

	cmd.Flags().Int("max", 0, "maximum accepted articles (default from config)")
	cmd.Flags().Float64("threshold", 0, "minimum quality score in [0,1] (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	return cmd
}

// applyFlagOverrides replaces the run parameters of target with the flags given on the
// command line. Unset flags keep the configured values; an explicit 0 is kept as 0.
func applyFlagOverrides(cmd *cobra.Command, target usecase.Target) usecase.Target {
	flags := cmd.Flags()
	if flags.Changed("max") {
		if v, err := flags.GetInt("max"); err == nil {
			target.MaxArticles = v
		}
	}
	if flags.Changed("threshold") {
		if v, err := flags.GetFloat64("threshold"); err == nil {
			target.QualityThreshold = v
		}
	}
	return target
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Harvest the configured targets on the configured cron expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := newApplication(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Schedule(ctx)
		},
	}
}

func newApplication(ctx context.Context) (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}
	if err := application.Prepare(ctx); err != nil {
		_ = application.Close()
		return nil, fmt.Errorf("prepare archive: %w", err)
	}
	return application, nil
}

func writeReport(w io.Writer, status domain.HarvestStatus) error {
	articles := status.Articles
	if articles == nil {
		articles = []domain.AcceptedArticle{}
	}

	// Articles are listed once, at the top level.
	summary := status
	summary.Articles = nil

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report{Status: summary, Articles: articles, Metrics: status.Metrics}); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
