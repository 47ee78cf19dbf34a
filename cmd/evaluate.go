package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/labtrend-cli/internal/overlay"
	"github.com/KaramelBytes/labtrend-cli/internal/pipeline"
	"github.com/KaramelBytes/labtrend-cli/internal/report"
	"github.com/KaramelBytes/labtrend-cli/internal/submission"
	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

// activityFlags carries the activity context flags shared by evaluate and
// evaluate-batch. Set flags override values from a submission file.
type activityFlags struct {
	title        string
	subject      string
	grade        string
	plot         string
	description  string
	codeFile     string
	accuracyHint float64
	noNarrative  bool
}

func (a *activityFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&a.title, "title", "", "activity title")
	f.StringVar(&a.subject, "subject", "", "subject, e.g. physics")
	f.StringVar(&a.grade, "grade", "", "grade level")
	f.StringVar(&a.plot, "plot", "", "plot type hint, e.g. \"pressure vs height\"")
	f.StringVar(&a.description, "description", "", "activity description excerpt")
	f.StringVar(&a.codeFile, "code-file", "", "activity code excerpt file")
	f.Float64Var(&a.accuracyHint, "accuracy-hint", 0, "accuracy (0-100) to steer the narrative tone")
	f.BoolVar(&a.noNarrative, "no-narrative", false, "skip the narrative generator and use heuristic reports")
}

func (a *activityFlags) apply(cmd *cobra.Command, s *submission.Submission) error {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&s.ActivityTitle, a.title)
	set(&s.Subject, a.subject)
	set(&s.Grade, a.grade)
	set(&s.PlotTypeHint, a.plot)
	set(&s.DescriptionExcerpt, a.description)
	if a.codeFile != "" {
		b, err := os.ReadFile(a.codeFile)
		if err != nil {
			return fmt.Errorf("read code file: %w", err)
		}
		s.CodeExcerpt = utils.NormalizeNewlines(string(b))
		s.CodeFile = a.codeFile
	}
	if cmd.Flags().Changed("accuracy-hint") {
		h := a.accuracyHint
		s.AccuracyHintOverride = &h
	}
	return nil
}

// composer returns the heuristic composer or the configured narrative one.
func (a *activityFlags) composer(ctx context.Context) report.Composer {
	if a.noNarrative {
		return report.Heuristic{}
	}
	return pipeline.ComposerFor(ctx, cfg.Narrative(), logger)
}

var (
	evFlags      activityFlags
	evSubmission string
	evFormat     string
	evOutput     string
	evChart      string
	evQuiet      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [log-file]",
	Short: "Evaluate one lab log and print the feedback report",
	Long: `Evaluate one lab submission. Pass the raw log file directly together with
activity context flags, or describe the whole submission in a YAML/JSON file
with --submission. A log file given alongside --submission replaces its log.`,
	Example: `  labtrend evaluate run1.csv --title "Air pressure" --plot "pressure vs height"
  labtrend evaluate --submission lab.yaml --format text --chart overlay.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := buildSubmission(evSubmission, args)
		if err != nil {
			return err
		}
		if err := evFlags.apply(cmd, sub); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res, err := pipeline.New(evFlags.composer(ctx), logger).Evaluate(ctx, sub)
		if err != nil {
			return err
		}
		if err := writeResult(res, outputOptions{
			Writer:       cmd.OutOrStdout(),
			OutputPath:   evOutput,
			OutputFormat: evFormat,
			Quiet:        evQuiet,
		}); err != nil {
			return err
		}
		if evChart != "" {
			if err := writeChart(evChart, sub.ActivityTitle, res); err != nil {
				return err
			}
			if !evQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "📈 Saved overlay chart to %s\n", evChart)
			}
		}
		return nil
	},
}

func buildSubmission(subPath string, args []string) (*submission.Submission, error) {
	var sub *submission.Submission
	if subPath != "" {
		s, err := submission.Load(subPath)
		if err != nil {
			return nil, err
		}
		sub = s
	}
	if len(args) == 0 {
		if sub == nil {
			return nil, fmt.Errorf("provide a log file or --submission")
		}
		return sub, nil
	}
	fromLog, err := submission.FromLogFile(args[0])
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return fromLog, nil
	}
	sub.RawLogText = fromLog.RawLogText
	sub.LogFile = fromLog.LogFile
	return sub, nil
}

func writeChart(path, title string, res *pipeline.Result) error {
	if strings.TrimSpace(title) == "" {
		title = res.Axes.String()
	}
	var buf bytes.Buffer
	labels := overlay.ChartLabels{Title: title, X: res.Axes.X, Y: res.Axes.Y}
	if err := overlay.RenderPNG(&buf, res.Report.Overlay, res.Analysis.Normalized, labels); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evFlags.bind(evaluateCmd)
	evaluateCmd.Flags().StringVarP(&evSubmission, "submission", "s", "", "submission file (.yaml or .json)")
	evaluateCmd.Flags().StringVarP(&evFormat, "format", "f", "json", "output format: json|yaml|text")
	evaluateCmd.Flags().StringVarP(&evOutput, "output", "o", "", "write the report to this file instead of stdout")
	evaluateCmd.Flags().StringVar(&evChart, "chart", "", "write an overlay chart PNG to this file")
	evaluateCmd.Flags().BoolVar(&evQuiet, "quiet", false, "suppress non-essential output")
}
