package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Editor themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeSepia = "sepia"
)

// EditorSettings are the view-affecting flags read by an editing session.
// They are written by the settings surface and delivered to sessions
// explicitly, at construction and via UpdateSettings.
type EditorSettings struct {
	WordWrap        bool   `json:"wordWrap" yaml:"word_wrap"`
	ShowLineNumbers bool   `json:"showLineNumbers" yaml:"show_line_numbers"`
	GroupTags       bool   `json:"groupTags" yaml:"group_tags"`
	FontSize        int    `json:"fontSize" yaml:"font_size"`
	Theme           string `json:"theme" yaml:"theme"`
}

// Validate checks the settings ranges.
func (s *EditorSettings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FontSize, validation.Required, validation.Min(10), validation.Max(24)),
		validation.Field(&s.Theme, validation.Required, validation.In(ThemeLight, ThemeDark, ThemeSepia)),
	)
}

// DefaultEditorSettings returns the settings used before the user has
// saved any.
func DefaultEditorSettings() EditorSettings {
	return EditorSettings{
		WordWrap:        true,
		ShowLineNumbers: false,
		GroupTags:       false,
		FontSize:        14,
		Theme:           ThemeLight,
	}
}
