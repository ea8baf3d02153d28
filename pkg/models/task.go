package models

import (
	"strings"
	"time"
)

// TutorialTaskID is the fixed id of the onboarding task. It is never persisted.
const TutorialTaskID = "tutorial-task-id"

type FontStyle string

const (
	FontStyleNormal FontStyle = "normal"
	FontStyleItalic FontStyle = "italic"
)

type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

// DefaultColor is used when a task is created without a color.
const DefaultColor = "#000000"

// DefaultHighlightColor matches the highlight swatch offered by the editor.
const DefaultHighlightColor = "#fff8c6"

// Task is the only persisted entity. An empty FontStyle or FontWeight means unset.
type Task struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Date           time.Time  `json:"date"`
	Completed      bool       `json:"completed"`
	Important      bool       `json:"important"`
	Pinned         bool       `json:"pinned"`
	Color          string     `json:"color"`
	FontStyle      FontStyle  `json:"font_style,omitempty"`
	FontWeight     FontWeight `json:"font_weight,omitempty"`
	Highlight      bool       `json:"highlight"`
	HighlightColor string     `json:"highlight_color,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (t Task) IsTutorial() bool {
	return t.ID == TutorialTaskID
}

// Validate reports whether the task may be stored.
func (t Task) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	if strings.TrimSpace(t.Text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if t.FontStyle != "" && t.FontStyle != FontStyleNormal && t.FontStyle != FontStyleItalic {
		return &ValidationError{Field: "font_style", Reason: "must be normal or italic"}
	}
	if t.FontWeight != "" && t.FontWeight != FontWeightNormal && t.FontWeight != FontWeightBold {
		return &ValidationError{Field: "font_weight", Reason: "must be normal or bold"}
	}
	return nil
}

// WithoutTutorial returns the tasks minus the onboarding task.
func WithoutTutorial(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsTutorial() {
			continue
		}
		out = append(out, t)
	}
	return out
}
