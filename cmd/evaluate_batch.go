package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/labtrend-cli/internal/pipeline"
	"github.com/KaramelBytes/labtrend-cli/internal/submission"
)

var (
	ebFlags       activityFlags
	ebConcurrency int
	ebOutputDir   string
	ebFormat      string
	ebQuiet       bool
)

var evaluateBatchCmd = &cobra.Command{
	Use:   "evaluate-batch <files...>",
	Short: "Evaluate many lab logs or submission files concurrently",
	Long: `Evaluate every matched file. .yaml, .yml and .json files are read as
submissions; anything else is treated as a raw log and takes its activity
context from the flags. A failing file is reported and does not stop the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := len(files)

		// Load everything first; unreadable files are reported with the results.
		loadErrs := make([]error, total)
		var subs []*submission.Submission
		var subFiles []int
		for i, path := range files {
			sub, err := loadInput(path)
			if err == nil {
				err = ebFlags.apply(cmd, sub)
			}
			if err != nil {
				loadErrs[i] = err
				continue
			}
			subs = append(subs, sub)
			subFiles = append(subFiles, i)
		}

		limit := ebConcurrency
		if !cmd.Flags().Changed("concurrency") && cfg.BatchConcurrency > 0 {
			limit = cfg.BatchConcurrency
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		items, err := pipeline.New(ebFlags.composer(ctx), logger).EvaluateBatch(ctx, subs, limit)
		if err != nil {
			return err
		}
		results := make([]*pipeline.Result, total)
		for _, it := range items {
			idx := subFiles[it.Index]
			results[idx], loadErrs[idx] = it.Result, it.Err
		}

		if ebOutputDir != "" {
			if err := os.MkdirAll(ebOutputDir, 0o755); err != nil {
				return err
			}
		}
		failed := 0
		for i, path := range files {
			name := filepath.Base(path)
			if err := loadErrs[i]; err != nil {
				failed++
				logger.Warn("submission failed", zap.String("file", path), zap.Error(err))
				fmt.Fprintf(out, "[%d/%d] ✗ %s: %v\n", i+1, total, name, err)
				continue
			}
			res := results[i]
			if ebOutputDir != "" {
				base := strings.TrimSuffix(name, filepath.Ext(name)) + ".report"
				outFile := uniquePath(ebOutputDir, base, formatExt(ebFormat))
				if err := writeResult(res, outputOptions{Writer: out, OutputPath: outFile, OutputFormat: ebFormat, Quiet: true}); err != nil {
					return err
				}
				if !ebQuiet {
					fmt.Fprintf(out, "[%d/%d] ✓ %s -> %s\n", i+1, total, name, filepath.Base(outFile))
				}
				continue
			}
			if !ebQuiet {
				fmt.Fprintf(out, "[%d/%d] ✓ %s: %s\n", i+1, total, name, res.Report.Summary)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d submissions failed", failed, total)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths into a sorted, deduplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func loadInput(path string) (*submission.Submission, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return submission.Load(path)
	}
	return submission.FromLogFile(path)
}

func init() {
	rootCmd.AddCommand(evaluateBatchCmd)
	ebFlags.bind(evaluateBatchCmd)
	evaluateBatchCmd.Flags().IntVarP(&ebConcurrency, "concurrency", "c", 4, "maximum submissions evaluated at once (default from config)")
	evaluateBatchCmd.Flags().StringVar(&ebOutputDir, "output-dir", "", "write one report per input into this directory")
	evaluateBatchCmd.Flags().StringVarP(&ebFormat, "format", "f", "json", "report format for --output-dir: json|yaml|text")
	evaluateBatchCmd.Flags().BoolVar(&ebQuiet, "quiet", false, "suppress progress and non-essential output")
}
