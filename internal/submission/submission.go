// Package submission holds one student's lab upload and its activity context.
package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/labtrend-cli/internal/parser"
	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

// Submission is the input of one evaluation.
type Submission struct {
	ID                 string `json:"id,omitempty" yaml:"id,omitempty"`
	ActivityTitle      string `json:"activityTitle" yaml:"activityTitle"`
	Subject            string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Grade              string `json:"grade,omitempty" yaml:"grade,omitempty"`
	PlotTypeHint       string `json:"plotTypeHint,omitempty" yaml:"plotTypeHint,omitempty"`
	DescriptionExcerpt string `json:"descriptionExcerpt,omitempty" yaml:"descriptionExcerpt,omitempty"`
	CodeExcerpt        string `json:"codeExcerpt,omitempty" yaml:"codeExcerpt,omitempty"`
	RawLogText         string `json:"rawLogText,omitempty" yaml:"rawLogText,omitempty"`
	// AccuracyHintOverride replaces the computed accuracy as the narrative
	// tone hint.
	AccuracyHintOverride *float64 `json:"accuracyHintOverride,omitempty" yaml:"accuracyHintOverride,omitempty"`

	// LogFile and CodeFile are read into RawLogText and CodeExcerpt by Load
	// when those are empty. Relative paths resolve against the submission file.
	LogFile  string `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	CodeFile string `json:"codeFile,omitempty" yaml:"codeFile,omitempty"`
}

// ValidationError is returned for submissions missing required context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission (%s): %s", e.Field, e.Message)
}

// Validate fails fast on submissions the heuristics cannot work with.
func (s *Submission) Validate() error {
	if s == nil {
		return &ValidationError{Field: "submission", Message: "missing"}
	}
	if strings.TrimSpace(s.ActivityTitle) == "" && strings.TrimSpace(s.DescriptionExcerpt) == "" {
		return &ValidationError{Field: "activityTitle", Message: "an activity title or description is required"}
	}
	if h := s.AccuracyHintOverride; h != nil && (*h < 0 || *h > 100) {
		return &ValidationError{Field: "accuracyHintOverride", Message: fmt.Sprintf("%v is outside 0-100", *h)}
	}
	return nil
}

// EnsureID assigns a random ID when none is set and returns it.
func (s *Submission) EnsureID() string {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return s.ID
}

// Load reads a submission from a .yaml, .yml or .json file and resolves
// LogFile and CodeFile references.
func Load(path string) (*Submission, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("submission not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read submission: %w", err)
	}
	var s Submission
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parse submission yaml: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parse submission json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported submission format %q (use .yaml or .json)", ext)
	}
	if err := s.resolveFiles(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &s, nil
}

// FromLogFile builds a submission around a raw log file.
func FromLogFile(path string) (*Submission, error) {
	text, err := parser.ReadLogFile(path)
	if err != nil {
		return nil, err
	}
	return &Submission{RawLogText: text, LogFile: path}, nil
}

func (s *Submission) resolveFiles(base string) error {
	if s.RawLogText == "" && s.LogFile != "" {
		text, err := parser.ReadLogFile(resolve(base, s.LogFile))
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}
		s.RawLogText = text
	}
	if s.CodeExcerpt == "" && s.CodeFile != "" {
		b, err := os.ReadFile(resolve(base, s.CodeFile))
		if err != nil {
			return fmt.Errorf("read code file: %w", err)
		}
		s.CodeExcerpt = utils.NormalizeNewlines(string(b))
	}
	return nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
