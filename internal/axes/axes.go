// Package axes decides which two named quantities a lab log is plotting.
package axes

import (
	"regexp"
	"strings"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
)

// Source records how an Assignment was decided.
type Source string

const (
	SourceNone      Source = "none"
	SourceHint      Source = "hint"
	SourceHeuristic Source = "heuristic"
)

// Assignment names the x and y quantities. The zero value is unresolved.
type Assignment struct {
	X      string `json:"x,omitempty" yaml:"x,omitempty"`
	Y      string `json:"y,omitempty" yaml:"y,omitempty"`
	Source Source `json:"source" yaml:"source"`
}

// Unresolved is the legitimate "don't know" outcome.
var Unresolved = Assignment{Source: SourceNone}

// Resolved reports whether both axis names are known.
func (a Assignment) Resolved() bool { return a.X != "" && a.Y != "" }

// String renders "y vs x" or "unresolved".
func (a Assignment) String() string {
	if !a.Resolved() {
		return "unresolved"
	}
	return a.Y + " vs " + a.X
}

// ExpectedDirection returns the trend physics predicts for the pair, or
// analysis.Unknown. Pressure falls as height/altitude rises.
func (a Assignment) ExpectedDirection() analysis.Direction {
	if !a.Resolved() {
		return analysis.Unknown
	}
	if strings.Contains(a.Y, "pressure") && (strings.Contains(a.X, "height") || strings.Contains(a.X, "altitude")) {
		return analysis.Decreasing
	}
	return analysis.Unknown
}

var vsToken = regexp.MustCompile(`(?i)\bvs\b\.?`)

// Resolve picks axis labels from the plot-type hint ("Y vs X") or, failing
// that, from quantity keywords in the activity code and description.
func Resolve(plotTypeHint, codeExcerpt, descriptionExcerpt string) Assignment {
	if a, ok := fromHint(plotTypeHint); ok {
		return a
	}
	if a, ok := fromKeywords(strings.ToLower(codeExcerpt + " " + descriptionExcerpt)); ok {
		return a
	}
	return Unresolved
}

func fromHint(hint string) (Assignment, bool) {
	loc := vsToken.FindStringIndex(hint)
	if loc == nil {
		return Assignment{}, false
	}
	y := normalizeLabel(hint[:loc[0]])
	x := normalizeLabel(hint[loc[1]:])
	if x == "" || y == "" {
		return Assignment{}, false
	}
	return Assignment{X: x, Y: y, Source: SourceHint}, true
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Trim(s, " \t-_:"))
}

// fromKeywords applies the quantity-pair heuristics in priority order.
func fromKeywords(text string) (Assignment, bool) {
	has := func(w string) bool { return strings.Contains(text, w) }
	switch {
	case has("pressure") && (has("height") || has("altitude")):
		x := "height"
		if !has("height") {
			x = "altitude"
		}
		return Assignment{X: x, Y: "pressure", Source: SourceHeuristic}, true
	case has("time") && has("pressure"):
		return Assignment{X: "time", Y: "pressure", Source: SourceHeuristic}, true
	case has("time") && has("temperature"):
		return Assignment{X: "time", Y: "temperature", Source: SourceHeuristic}, true
	}
	return Assignment{}, false
}
