package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ShapeError reports a narrative response that does not match the Report
// field set exactly.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "narrative response shape mismatch: " + e.Reason
}

var narrativeFields = []string{
	"summary", "objectiveAlignment", "trendAssessment", "accuracyPercent",
	"possibleErrors", "improvementTips", "logInsights", "overlay",
}

// narrativeReply mirrors the field set requested from the generator.
type narrativeReply struct {
	Summary            string   `json:"summary"`
	ObjectiveAlignment string   `json:"objectiveAlignment"`
	TrendAssessment    string   `json:"trendAssessment"`
	AccuracyPercent    *float64 `json:"accuracyPercent"`
	PossibleErrors     []string `json:"possibleErrors"`
	ImprovementTips    []string `json:"improvementTips"`
	LogInsights        []string `json:"logInsights"`
	Overlay            struct {
		Note   string `json:"note"`
		Points []struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"points"`
	} `json:"overlay"`
}

// parseReply decodes content strictly: one JSON object, exactly the
// requested keys, correct value types, nothing before or after it.
func parseReply(content string) (*narrativeReply, error) {
	data := []byte(strings.TrimSpace(content))
	if len(data) == 0 {
		return nil, &ShapeError{Reason: "empty response"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ShapeError{Reason: "not a single JSON object: " + err.Error()}
	}
	if err := checkKeys(fields); err != nil {
		return nil, err
	}
	for name, raw := range fields {
		if name != "accuracyPercent" && string(raw) == "null" {
			return nil, &ShapeError{Reason: fmt.Sprintf("field %q is null", name)}
		}
	}
	var overlayFields map[string]json.RawMessage
	if err := json.Unmarshal(fields["overlay"], &overlayFields); err != nil {
		return nil, &ShapeError{Reason: "overlay is not an object"}
	}
	if _, ok := overlayFields["note"]; !ok || len(overlayFields) != 2 {
		return nil, &ShapeError{Reason: "overlay must have exactly note and points"}
	}
	if _, ok := overlayFields["points"]; !ok {
		return nil, &ShapeError{Reason: "overlay must have exactly note and points"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var reply narrativeReply
	if err := dec.Decode(&reply); err != nil {
		return nil, &ShapeError{Reason: err.Error()}
	}
	if strings.TrimSpace(reply.Summary) == "" {
		return nil, &ShapeError{Reason: "summary is empty"}
	}
	if acc := reply.AccuracyPercent; acc != nil && (math.IsNaN(*acc) || *acc < 0 || *acc > 100) {
		return nil, &ShapeError{Reason: fmt.Sprintf("accuracyPercent %v outside [0,100]", *acc)}
	}
	return &reply, nil
}

func checkKeys(fields map[string]json.RawMessage) error {
	var missing, extra []string
	for _, k := range narrativeFields {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	want := make(map[string]bool, len(narrativeFields))
	for _, k := range narrativeFields {
		want[k] = true
	}
	for k := range fields {
		if !want[k] {
			extra = append(extra, k)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(extra, ", "))
	}
	return &ShapeError{Reason: strings.Join(parts, "; ")}
}
