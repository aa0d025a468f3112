package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file on top of DefaultConfig. A sibling file named
// "<name>.local.<ext>" is merged over it when present, which keeps
// credentials out of the shared file. Keys absent from both files keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	localPath := LocalPath(path)
	localData, err := os.ReadFile(localPath)
	switch {
	case err == nil:
		var override Config
		if err := yaml.Unmarshal(localData, &override); err != nil {
			return nil, fmt.Errorf("parse local config file: %w", err)
		}
		if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge local config: %w", err)
		}
		slog.Info("merging config with local overrides", slog.String("local", localPath))
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read local config file: %w", err)
	}

	return cfg, nil
}

// LocalPath returns the override file name for path, e.g.
// "toscrape.yaml" -> "toscrape.local.yaml".
func LocalPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+".local"+ext)
}

// ApplyEnv overrides credentials, output directory and metrics address
// from TOSCRAPE_* environment variables.
func (c *Config) ApplyEnv() error {
	if value, ok := EnvString("TOSCRAPE_USERNAME"); ok {
		c.Login.Username = value
	}
	if value, ok := EnvString("TOSCRAPE_PASSWORD"); ok {
		c.Login.Password = value
	}
	if value, ok := EnvString("TOSCRAPE_OUTPUT_DIR"); ok {
		c.Output.Dir = value
	}
	if value, ok := EnvString("TOSCRAPE_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}
	if value, ok, err := EnvInt("TOSCRAPE_SAMPLE_TARGET"); err != nil {
		return err
	} else if ok {
		c.Sample.TargetCount = value
	}
	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer when it is set.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, true, nil
}
