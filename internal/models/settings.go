package models

import (
	"fmt"
	"time"
)

type UnitPreference string

const (
	Metric   UnitPreference = "metric"
	Imperial UnitPreference = "imperial"
)

// ParseUnitPreference validates a user-supplied preference.
func ParseUnitPreference(s string) (UnitPreference, error) {
	switch p := UnitPreference(s); p {
	case Metric, Imperial:
		return p, nil
	}
	return "", fmt.Errorf("unknown unit preference %q (use metric or imperial)", s)
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates a user-supplied theme.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (use light, dark or system)", s)
}

// Settings holds app-wide user preferences. There is at most one row.
type Settings struct {
	ID             int64          `json:"id"`
	UnitPreference UnitPreference `json:"unitPreference"`
	Theme          Theme          `json:"theme"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// DefaultSettings are created on first read.
var DefaultSettings = Settings{UnitPreference: Imperial, Theme: ThemeSystem}

// SettingsUpdate is a partial update; nil fields are left unchanged.
type SettingsUpdate struct {
	UnitPreference *UnitPreference
	Theme          *Theme
}
