package models

import "strings"

type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

type ButtonSize string

const (
	ButtonSizeSmall  ButtonSize = "small"
	ButtonSizeMedium ButtonSize = "medium"
	ButtonSizeLarge  ButtonSize = "large"
)

// Settings are device preferences. They are stored locally and never synced.
type Settings struct {
	Theme       Theme      `json:"theme"`
	FontSize    int        `json:"font_size"`
	ShowPreview bool       `json:"show_preview"`
	ButtonSize  ButtonSize `json:"button_size"`
	Language    string     `json:"language"`
	AutoSave    bool       `json:"auto_save"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:       ThemeSystem,
		FontSize:    14,
		ShowPreview: true,
		ButtonSize:  ButtonSizeSmall,
		Language:    "pt",
		AutoSave:    true,
	}
}

// Validate rejects unknown enum values and unusable font sizes.
func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return &ValidationError{Field: "theme", Reason: "must be system, light or dark"}
	}
	switch s.ButtonSize {
	case ButtonSizeSmall, ButtonSizeMedium, ButtonSizeLarge:
	default:
		return &ValidationError{Field: "button_size", Reason: "must be small, medium or large"}
	}
	if s.FontSize < 8 || s.FontSize > 48 {
		return &ValidationError{Field: "font_size", Reason: "must be between 8 and 48"}
	}
	if strings.TrimSpace(s.Language) == "" {
		return &ValidationError{Field: "language", Reason: "is required"}
	}
	return nil
}
