package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/labtrend-cli/internal/pipeline"
	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

type outputOptions struct {
	Writer       io.Writer
	OutputPath   string
	OutputFormat string
	Quiet        bool
}

// renderResult encodes the report of res. json and yaml carry the report
// object only; text is a readable digest that also names the submission.
func renderResult(res *pipeline.Result, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		b, err := utils.PrettyJSON(res.Report)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(res.Report)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	case "text", "txt":
		return []byte(renderText(res)), nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use json|yaml|text)", format)
	}
}

func renderText(res *pipeline.Result) string {
	r := res.Report
	var sb strings.Builder
	fmt.Fprintf(&sb, "Submission: %s\n", res.ID)
	fmt.Fprintf(&sb, "Axes: %s (%s)\n", res.Axes.String(), res.Axes.Source)
	fmt.Fprintf(&sb, "Summary: %s\n", r.Summary)
	fmt.Fprintf(&sb, "Objective: %s\n", r.ObjectiveAlignment)
	fmt.Fprintf(&sb, "Trend: %s\n", r.TrendAssessment)
	if r.AccuracyPercent != nil {
		fmt.Fprintf(&sb, "Accuracy: %.1f%%\n", *r.AccuracyPercent)
	} else {
		sb.WriteString("Accuracy: n/a\n")
	}
	writeList(&sb, "Possible errors", r.PossibleErrors)
	writeList(&sb, "Improvement tips", r.ImprovementTips)
	writeList(&sb, "Log insights", r.LogInsights)
	fmt.Fprintf(&sb, "Overlay: %s (%d points)\n", r.Overlay.Note, len(r.Overlay.ReferencePoints))
	if r.UsedFallback {
		fmt.Fprintf(&sb, "Narrative: fallback used (%s)\n", r.Detail)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "  - %s\n", it)
	}
}

// writeResult prints the rendered report, or saves it when OutputPath is set.
func writeResult(res *pipeline.Result, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	b, err := renderResult(res, opts.OutputFormat)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		_, err := w.Write(b)
		return err
	}
	if err := utils.SafeWriteFile(opts.OutputPath, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !opts.Quiet {
		fmt.Fprintf(w, "💾 Saved report to %s\n", opts.OutputPath)
	}
	return nil
}

// formatExt maps an output format to a file extension.
func formatExt(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		return ".yaml"
	case "text", "txt":
		return ".txt"
	default:
		return ".json"
	}
}

// uniquePath returns dir/base+ext, or the first free dir/base__N+ext.
func uniquePath(dir, base, ext string) string {
	out := filepath.Join(dir, base+ext)
	if _, err := os.Stat(out); err != nil {
		return out
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", base, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}
