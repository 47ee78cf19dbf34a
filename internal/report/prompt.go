package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

const praiseThreshold = 90.0

const systemPrompt = `You are a science teacher giving feedback on a student's lab log.
Reply with one JSON object and nothing else: no markdown, no code fences, no commentary.
The object must have exactly these fields:
  "summary": string
  "objectiveAlignment": string
  "trendAssessment": string
  "accuracyPercent": number between 0 and 100, or null
  "possibleErrors": array of strings
  "improvementTips": array of strings
  "logInsights": array of strings
  "overlay": {"note": string, "points": array of {"x": number, "y": number}}
Do not add any other field.`

// BuildPrompt assembles the chat messages for the narrative generator. Free
// text excerpts are capped at excerptMax runes each.
func BuildPrompt(in Input, excerptMax int) []ai.Message {
	var b strings.Builder
	section := func(name, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", name, utils.TruncateRunes(body, excerptMax))
	}

	fmt.Fprintf(&b, "Activity: %s\n", orDash(in.ActivityTitle))
	fmt.Fprintf(&b, "Subject: %s\nGrade: %s\n", orDash(in.Subject), orDash(in.Grade))
	fmt.Fprintf(&b, "Plot type: %s\nAxes: %s\n\n", orDash(in.PlotTypeHint), in.Axes)
	section("Activity description", in.DescriptionExcerpt)
	section("Student code", in.CodeExcerpt)
	section("Log excerpt", in.RawLogText)

	res := in.Analysis
	fmt.Fprintf(&b, "## Local analysis\nsamples: %d\ncorrelation: %.3f\ntrend: %s\n",
		len(res.Samples), res.Correlation, res.Direction)
	if hint := in.accuracyHint(); hint != nil {
		fmt.Fprintf(&b, "accuracy hint: %.1f%%\n\n", *hint)
		if *hint >= praiseThreshold {
			b.WriteString("The result is accurate: praise the work and return an empty possibleErrors list.\n")
		} else {
			b.WriteString("The result is not fully accurate: list the most likely issues in possibleErrors.\n")
		}
	} else {
		b.WriteString("accuracy hint: unavailable (insufficient data)\n\n")
		b.WriteString("There is not enough data: explain what is missing and list the most likely issues in possibleErrors.\n")
	}

	return []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return strings.TrimSpace(s)
}
