package model

import (
	"strings"
	"time"
)

// Result is the durable record of one pipeline execution for a task.
//
// Data is only set when the page could be rendered, ErrorInfo is only set when
// something went wrong, both can be set when the run degraded.
type Result struct {
	ID            string
	TaskID        string
	Data          map[string]any
	ErrorInfo     *string
	ScreenshotRef *string
	OCRText       *string
	CreatedAt     time.Time
}

// NewResult has the fields required to attach a result to a task.
type NewResult struct {
	TaskID        string
	Data          map[string]any
	ErrorInfo     *string
	ScreenshotRef *string
	OCRText       *string
}

// StageErrors holds the error of each pipeline stage, empty means no error.
type StageErrors struct {
	Render     string
	Vision     string
	Artifact   string
	Extraction string
	Fallback   string
	Cancelled  string
}

// Fragments returns the error fragments in pipeline order.
func (s StageErrors) Fragments() []string {
	var fragments []string
	add := func(prefix, msg string) {
		if msg != "" {
			fragments = append(fragments, prefix+": "+msg)
		}
	}

	add("Renderer Error", s.Render)
	add("OCR Error", s.Vision)
	add("Artifact Error", s.Artifact)
	add("Extraction Error", s.Extraction)
	add("Basic Parsing Error", s.Fallback)
	add("Cancelled", s.Cancelled)

	return fragments
}

// String returns the "; " joined error fragments, the format stored on Result.ErrorInfo.
func (s StageErrors) String() string {
	return strings.Join(s.Fragments(), "; ")
}

// IsEmpty returns true when no stage failed.
func (s StageErrors) IsEmpty() bool { return len(s.Fragments()) == 0 }

// ErrorInfo returns the error info to store, nil when no stage failed.
func (s StageErrors) ErrorInfo() *string {
	if s.IsEmpty() {
		return nil
	}
	info := s.String()
	return &info
}
