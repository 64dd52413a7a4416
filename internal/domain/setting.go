package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Setting is one persisted preference override. A missing row means the
// key's default applies.
type Setting struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_user_settings_user_key"`
	Key       string    `json:"key" gorm:"not null;uniqueIndex:idx_user_settings_user_key"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Setting) TableName() string {
	return "user_settings"
}

// Recognized setting keys
const (
	SettingTheme       = "theme"
	SettingDisplayName = "display_name"
)

const MaxDisplayNameLength = 255

// Theme values accepted for SettingTheme
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

var AllThemes = []string{ThemeLight, ThemeDark, ThemeSystem}

// SettingDefinition describes a recognized key: its default and how a written
// value is checked. Validate returns an empty string for an acceptable value,
// otherwise the reason it was refused.
type SettingDefinition struct {
	Key      string
	Default  string
	Validate func(value string) string
}

var settingDefinitions = map[string]SettingDefinition{
	SettingTheme: {
		Key:     SettingTheme,
		Default: ThemeSystem,
		Validate: func(value string) string {
			for _, t := range AllThemes {
				if value == t {
					return ""
				}
			}
			return "must be one of " + strings.Join(AllThemes, ", ")
		},
	},
	SettingDisplayName: {
		Key:     SettingDisplayName,
		Default: "",
		Validate: func(value string) string {
			if value == "" {
				return "must not be empty"
			}
			if utf8.RuneCountInString(value) > MaxDisplayNameLength {
				return "must be at most 255 characters"
			}
			return ""
		},
	},
}

// SettingKeys returns every recognized key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingDefinitions))
	for k := range settingDefinitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultSettings returns the full key set populated with defaults.
func DefaultSettings() map[string]string {
	out := make(map[string]string, len(settingDefinitions))
	for k, def := range settingDefinitions {
		out[k] = def.Default
	}
	return out
}

// ValidateSettings checks a whole update before anything is written. Unknown
// keys are reported ahead of invalid values; within each pass keys are
// visited in sorted order so the offending key is deterministic.
func ValidateSettings(updates map[string]any) (map[string]string, error) {
	if len(updates) == 0 {
		return nil, ErrNoSettings
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := settingDefinitions[k]; !ok {
			return nil, &SettingError{Key: k, Err: ErrUnknownSetting}
		}
	}

	values := make(map[string]string, len(keys))
	for _, k := range keys {
		s, ok := updates[k].(string)
		if !ok {
			return nil, &SettingError{Key: k, Reason: "must be a string", Err: ErrInvalidSettingValue}
		}
		if reason := settingDefinitions[k].Validate(s); reason != "" {
			return nil, &SettingError{Key: k, Reason: reason, Err: ErrInvalidSettingValue}
		}
		values[k] = s
	}

	return values, nil
}
