package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
	"github.com/KaramelBytes/labtrend-cli/internal/axes"
)

// ParseLog extracts (x, y) samples from free-form log text in line order.
// Unparseable lines are skipped, so text without numeric pairs simply yields
// an empty slice.
//
// Lines holding "key=value" pairs are read by axis name. Other lines are
// split on commas, tabs or whitespace; the first line that looks like a
// header names the columns, and matching axis columns are used for every
// following row. Without a usable header the first two numbers win.
func ParseLog(text string, a axes.Assignment) []analysis.Sample {
	out := []analysis.Sample{}
	xName, yName := columnName(a.X), columnName(a.Y)
	resolved := a.Resolved() && xName != "" && yName != ""

	headerSeen := false
	xCol, yCol := -1, -1
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isComment(line) {
			continue
		}
		if strings.Contains(line, "=") {
			if s, ok := parseKeyValueLine(line, xName, yName, resolved); ok {
				out = append(out, s)
			}
			continue
		}
		fields := splitFields(line)
		if !headerSeen && looksLikeHeader(line, fields) {
			headerSeen = true
			if resolved {
				xCol, yCol = headerColumns(fields, xName, yName)
			}
			continue
		}
		if s, ok := parseDelimited(fields, xCol, yCol); ok {
			out = append(out, s)
		}
	}
	return out
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

// splitFields splits by comma, else tab, else any whitespace.
func splitFields(line string) []string {
	var parts []string
	switch {
	case strings.Contains(line, ","):
		parts = strings.Split(line, ",")
	case strings.Contains(line, "\t"):
		parts = strings.Split(line, "\t")
	default:
		parts = strings.Fields(line)
	}
	for i := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(parts[i]), `"'`)
	}
	return parts
}

// looksLikeHeader needs a letter somewhere and a first field that is not a
// number, so rows such as "-1.2e3,4" stay data.
func looksLikeHeader(line string, fields []string) bool {
	if unicode.IsDigit([]rune(line)[0]) || strings.IndexFunc(line, unicode.IsLetter) < 0 {
		return false
	}
	if len(fields) > 0 {
		if _, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return false
		}
	}
	return true
}

// headerColumns returns the positions of the axis columns, or -1, -1 when
// either is missing.
func headerColumns(fields []string, xName, yName string) (int, int) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = columnName(f)
	}
	x := findColumn(names, xName, -1)
	y := findColumn(names, yName, x)
	if x < 0 || y < 0 {
		return -1, -1
	}
	return x, y
}

// findColumn prefers an exact name match and then a column containing the
// name. skip excludes a column already taken by the other axis.
func findColumn(names []string, want string, skip int) int {
	for i, n := range names {
		if i != skip && n == want {
			return i
		}
	}
	for i, n := range names {
		if i != skip && n != "" && strings.Contains(n, want) {
			return i
		}
	}
	return -1
}

func parseDelimited(fields []string, xCol, yCol int) (analysis.Sample, bool) {
	if xCol >= 0 && yCol >= 0 {
		if xCol >= len(fields) || yCol >= len(fields) {
			return analysis.Sample{}, false
		}
		x, okX := parseNumber(fields[xCol])
		y, okY := parseNumber(fields[yCol])
		return analysis.Sample{X: x, Y: y}, okX && okY
	}
	return firstTwo(fields)
}

func firstTwo(tokens []string) (analysis.Sample, bool) {
	var vals []float64
	for _, t := range tokens {
		if v, ok := parseNumber(t); ok {
			vals = append(vals, v)
			if len(vals) == 2 {
				return analysis.Sample{X: vals[0], Y: vals[1]}, true
			}
		}
	}
	return analysis.Sample{}, false
}

var spacedEquals = regexp.MustCompile(`\s*=\s*`)

func isPairSep(r rune) bool { return r == ',' || r == ';' || unicode.IsSpace(r) }

func parseKeyValueLine(line, xName, yName string, resolved bool) (analysis.Sample, bool) {
	tokens := strings.FieldsFunc(spacedEquals.ReplaceAllString(line, "="), isPairSep)
	kv := make(map[string]string, len(tokens))
	var values []string
	for _, tok := range tokens {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		k = columnName(k)
		if _, dup := kv[k]; !dup {
			kv[k] = v
		}
		values = append(values, v)
	}
	if !resolved {
		return firstTwo(values)
	}
	xs, okX := kv[xName]
	ys, okY := kv[yName]
	if !okX || !okY {
		return analysis.Sample{}, false
	}
	x, okX := parseNumber(xs)
	y, okY := parseNumber(ys)
	return analysis.Sample{X: x, Y: y}, okX && okY
}

// parseNumber accepts finite floats only.
func parseNumber(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// columnName lowercases a header or key and drops a trailing unit.
func columnName(s string) string {
	clean, _ := splitUnits(strings.Trim(strings.TrimSpace(s), `"'`))
	return strings.ToLower(strings.TrimSpace(clean))
}
