// Package config provides configuration loading and structs for the JAI server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Auth      AuthConfig      `yaml:"auth"`
	Chat      ChatConfig      `yaml:"chat"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path for the answers/users database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// EmbeddingConfig holds embedding provider settings. Provider selects the
// implementation: "onnx", "ollama", or "mock".
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	ModelPath      string `yaml:"model_path"`
	Dimensions     int    `yaml:"dimensions"`
	MaxTokens      int    `yaml:"max_tokens"`
	CacheSize      int    `yaml:"cache_size"`
	OllamaURL      string `yaml:"ollama_url"`
	OllamaModel    string `yaml:"ollama_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RetrievalConfig holds retrieval settings. MinScore of 0 disables the
// similarity threshold, so the closest record always answers.
type RetrievalConfig struct {
	MinScore float64 `yaml:"min_score"`
}

// AuthConfig holds session cookie settings. CookieKey can be overridden with
// the JAI_COOKIE_KEY environment variable.
type AuthConfig struct {
	CookieName string `yaml:"cookie_name"`
	CookieKey  string `yaml:"cookie_key"`
	ExpiryDays int    `yaml:"expiry_days"`
}

// ChatConfig selects the conversation store backend: "memory" or "redis".
type ChatConfig struct {
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// WatchConfig holds QA source directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// Load reads the config file at path, applies the JAI_COOKIE_KEY override
// and defaults, and resolves relative paths against the config directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if key := os.Getenv("JAI_COOKIE_KEY"); key != "" {
		cfg.Auth.CookieKey = key
	}

	ApplyDefaults(&cfg)
	resolvePaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// resolvePaths makes every configured filesystem path absolute.
func resolvePaths(cfg *Config, configDir string) {
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i, dir := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(dir, configDir)
	}
}

// expandPath resolves path to absolute form. "./x" is taken relative to the
// config file's directory; any other relative path is taken relative to the
// user's home directory.
func expandPath(path, configDir string) string {
	switch {
	case filepath.IsAbs(path):
		return path
	case path == "." || strings.HasPrefix(path, "./"):
		return filepath.Join(configDir, path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path)
}
