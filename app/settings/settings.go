package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GetEffectiveSettings returns the effective settings (defaults overlaid with file overrides if any).
// If anything goes wrong, it returns defaults.
func GetEffectiveSettings() Settings {
	path, err := settingsFilePath()
	if err != nil {
		return defaultSettings
	}
	return loadFrom(path)
}

func loadFrom(path string) Settings {
	settings := defaultSettings
	if _, err := os.Stat(path); err != nil {
		// no file or other stat error -> return defaults
		return settings
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings
	}
	if v, ok := m["default_rolls"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.DefaultRolls = vi
		}
	}
	if v, ok := m["rolls_file"]; ok {
		if vs, oks := v.(string); oks && vs != "" {
			settings.RollsFile = vs
		}
	}
	if v, ok := m["throws_file"]; ok {
		if vs, oks := v.(string); oks && vs != "" {
			settings.ThrowsFile = vs
		}
	}
	if v, ok := m["report_file"]; ok {
		if vs, oks := v.(string); oks {
			settings.ReportFile = vs
		}
	}
	if v, ok := m["out_dir"]; ok {
		if vs, oks := v.(string); oks && vs != "" {
			settings.OutDir = vs
		}
	}
	return settings
}

func settingsFilePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	return filepath.Join(dir, "roll-bot.yml"), nil
}
