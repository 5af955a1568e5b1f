package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ricesearch/term-eval/internal/config"
	"github.com/ricesearch/term-eval/internal/evaluation"
	"github.com/ricesearch/term-eval/internal/history"
	apperrors "github.com/ricesearch/term-eval/internal/pkg/errors"
	"github.com/ricesearch/term-eval/internal/pkg/logger"
	"github.com/ricesearch/term-eval/internal/pkg/security"
	"github.com/ricesearch/term-eval/internal/pkg/textnorm"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// app carries state shared by the commands of one invocation.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}

	rootCmd := a.rootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return apperrors.ExitCode(err)
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term-eval GOLD_STANDARD RESULT_FILE",
		Short: "Evaluates bilingual term alignment",
		Long: `Evaluates bilingual term alignment candidates against a gold standard.

GOLD_STANDARD is a JSON file: {"terms": [{"source": "...", "targets": ["..."]}]}
RESULT_FILE is a tab-separated file of source, target and score rows.

Prints MAP, accuracy, precision at each rank cutoff and coverage.
Settings are read from the YAML file named by TERMEVAL_CONFIG and from
TERMEVAL_* environment variables.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		PreRunE:      a.setup,
		RunE:         a.evaluate,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		a.historyCmd(),
		versionCmd(),
	)

	return cmd
}

// setup loads configuration for commands that need it; version does not.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return apperrors.ConfigError("loading configuration", err)
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(a.stderr, cfg.Log.Level, cfg.Log.Format)
	return nil
}

func (a *app) evaluate(cmd *cobra.Command, args []string) error {
	goldPath, resultPath := args[0], args[1]

	mode, err := textnorm.ParseMode(a.cfg.Evaluation.Normalize)
	if err != nil {
		return apperrors.ConfigError("invalid normalization", err)
	}

	evaluator, err := evaluation.NewEvaluator(evaluation.Options{
		Cutoffs:   a.cfg.Evaluation.Cutoffs,
		Normalize: mode,
	}, a.log)
	if err != nil {
		return apperrors.ConfigError("invalid evaluation settings", err)
	}

	report, err := evaluator.EvaluateFiles(goldPath, resultPath)
	if err != nil {
		return err
	}

	if err := report.Render(cmd.OutOrStdout(), a.cfg.Output.Format); err != nil {
		return apperrors.InternalError("writing report", err)
	}

	a.record(cmd.Context(), goldPath, resultPath, report)
	return nil
}

// record saves the run when history is enabled. Failures never change the
// outcome of an evaluation that already printed its report.
func (a *app) record(ctx context.Context, goldPath, resultPath string, report *evaluation.Report) {
	if !a.cfg.HistoryEnabled() {
		return
	}

	store, err := history.New(a.cfg.History)
	if err != nil {
		a.log.WithError(err).Warn("run history unavailable",
			"type", a.cfg.History.Type,
			"redis_url", security.MaskURL(a.cfg.History.RedisURL),
		)
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	run := history.NewRun(a.cfg.History.RunLabel, goldPath, resultPath, report)
	if err := store.Save(ctx, run); err != nil {
		a.log.WithError(err).Warn("failed to record run")
		return
	}
	a.log.Debug("run recorded", "id", run.ID, "label", run.Label)
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [LIMIT]",
		Short:   "List recorded evaluation runs, newest first",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return apperrors.ValidationError(fmt.Sprintf("invalid limit %q", args[0]))
				}
				limit = n
			}

			store, err := history.New(a.cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			runs, err := store.List(ctx, limit)
			if err != nil {
				return apperrors.HistoryError("listing runs", err)
			}

			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}
}

func writeRuns(w io.Writer, runs []history.Run) error {
	for _, r := range runs {
		label := r.Label
		if label == "" {
			label = "-"
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\tMAP=%.4f\taccu.=%.4f\tall=%.4f\t%s\t%s\n",
			r.Timestamp.Format(time.RFC3339), r.ID, label,
			r.Metrics["MAP"], r.Metrics["accu."], r.Metrics["all"],
			r.GoldPath, r.ResultPath,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "term-eval %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
