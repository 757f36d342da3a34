package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/venuslab/glowup/pkg/types"
)

// Preferences are the user settings that survive a restart. Only the
// language is persisted; session state is always rebuilt from scratch.
type Preferences struct {
	Language types.Language `json:"language"`
}

// DefaultPreferences returns the out-of-the-box preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{Language: types.LangEnglish}
}

// LoadPreferences reads preferences from a JSON file, falling back to
// defaults when the file does not exist.
func LoadPreferences(filename string) (*Preferences, error) {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}
	if prefs.Language != types.LangEnglish && prefs.Language != types.LangChinese {
		prefs.Language = types.LangEnglish
	}
	return &prefs, nil
}

// Save writes the preferences to a JSON file.
func (p *Preferences) Save(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	return nil
}

// GetPreferencesPath returns the default preferences file path.
func GetPreferencesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./preferences.json"
	}
	return filepath.Join(home, ".config", "glowup", "preferences.json")
}
