package parser

import (
	"regexp"
	"strings"
)

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Pressure (kPa)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Height [m]
	{regexp.MustCompile(`^(.*?)[_\s-]+(k?Pa|hPa|mbar|atm|mm|cm|km|m|ms|s|min|°[CF]|K|V|mA|A)$`), 2},
}

// splitUnits separates a trailing unit annotation from a column name.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
