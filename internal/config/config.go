// Package config loads hgstat configuration from YAML, hg config and CLI overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	log "github.com/chmouel/hgstat/internal/log"
	"github.com/chmouel/hgstat/internal/theme"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// AppConfig defines the hgstat configuration options.
type AppConfig struct {
	HgPath        string        // hg executable (default: "hg")
	MaxDepth      int           // directories visited while locating the repository root
	Timeout       time.Duration // per hg invocation, 0 disables
	DebugLog      string
	ShowClean     bool // list clean files in list/ui (default: false)
	ShowIgnored   bool // list ignored files in list/ui (default: false)
	ShowIcons     bool // Nerd Font icons in the viewer (default: true)
	Theme         string
	WatchDebounce time.Duration
	Format        string // "text" or "json"
}

// configKeys are the keys accepted in every configuration source.
var configKeys = []string{
	"hg_path", "max_depth", "timeout", "debug_log", "show_clean", "show_ignored",
	"show_icons", "theme", "watch_debounce", "format",
}

// Keys returns the recognised configuration keys.
func Keys() []string {
	return slices.Clone(configKeys)
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		HgPath:        "hg",
		MaxDepth:      32,
		ShowIcons:     true,
		Theme:         theme.DraculaName,
		WatchDebounce: 300 * time.Millisecond,
		Format:        FormatText,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return defaultVal
}

// coerceDuration accepts Go duration strings ("500ms", "2s") or a bare
// number of seconds.
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if d, err := time.ParseDuration(text); err == nil {
			return d
		}
		if i, err := strconv.Atoi(text); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultVal
}

func coerceString(value any, defaultVal string) string {
	if value == nil {
		return defaultVal
	}
	text := strings.TrimSpace(fmt.Sprintf("%v", value))
	if text == "" {
		return defaultVal
	}
	return text
}

// apply overlays data onto cfg. Unknown keys are ignored.
func (cfg *AppConfig) apply(data map[string]any) {
	if v, ok := data["hg_path"]; ok {
		cfg.HgPath = coerceString(v, cfg.HgPath)
	}
	if v, ok := data["max_depth"]; ok {
		if depth := coerceInt(v, cfg.MaxDepth); depth > 0 {
			cfg.MaxDepth = depth
		}
	}
	if v, ok := data["timeout"]; ok {
		if timeout := coerceDuration(v, cfg.Timeout); timeout >= 0 {
			cfg.Timeout = timeout
		}
	}
	if v, ok := data["debug_log"]; ok {
		cfg.DebugLog = coerceString(v, cfg.DebugLog)
	}
	if v, ok := data["show_clean"]; ok {
		cfg.ShowClean = coerceBool(v, cfg.ShowClean)
	}
	if v, ok := data["show_ignored"]; ok {
		cfg.ShowIgnored = coerceBool(v, cfg.ShowIgnored)
	}
	if v, ok := data["show_icons"]; ok {
		cfg.ShowIcons = coerceBool(v, cfg.ShowIcons)
	}
	if v, ok := data["theme"]; ok {
		if name := NormalizeThemeName(coerceString(v, "")); name != "" {
			cfg.Theme = name
		}
	}
	if v, ok := data["watch_debounce"]; ok {
		if d := coerceDuration(v, cfg.WatchDebounce); d > 0 {
			cfg.WatchDebounce = d
		}
	}
	if v, ok := data["format"]; ok {
		switch format := strings.ToLower(coerceString(v, "")); format {
		case FormatText, FormatJSON:
			cfg.Format = format
		}
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the application configuration from a YAML file.
// An empty configPath looks for config.yaml or config.yml in the hgstat
// config directory. A file that does not parse yields the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := filepath.Clean(filepath.Join(getConfigDir(), "hgstat"))

	var paths []string
	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
			return DefaultConfig(), nil
		}
		log.Printf("config: loaded %s", path)
		return parseConfig(yamlData), nil
	}

	return DefaultConfig(), nil
}

// ApplyCLIOverrides applies --config=hs.key=value overrides.
func (cfg *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	cfg.apply(data)
	return nil
}

// parseCLIConfigOverrides parses the hs.key=value format. Later values for
// the same key win.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any, len(overrides))
	for _, override := range overrides {
		fullKey, value, found := strings.Cut(override, "=")
		if !found {
			return nil, fmt.Errorf("invalid config override: %q, expected format: hs.key=value", override)
		}
		if !strings.HasPrefix(fullKey, "hs.") {
			return nil, fmt.Errorf("config override key must start with 'hs.': %q", fullKey)
		}
		key := strings.TrimPrefix(fullKey, "hs.")
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}
		if !slices.Contains(configKeys, key) {
			return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(configKeys, ", "))
		}
		result[key] = value
	}
	return result, nil
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// NormalizeThemeName returns the canonical theme name, or "" if unsupported.
func NormalizeThemeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if theme.IsKnown(name) {
		return name
	}
	return ""
}
