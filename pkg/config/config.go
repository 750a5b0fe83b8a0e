/*
Package config manages TOML config for wordfan services.

Every value has a builtin default, so a missing or partly broken file never stops
the service: unreadable sections fall back to defaults while valid ones still apply.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfan/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Provider ProviderConfig `toml:"provider"`
	Server   ServerConfig   `toml:"server"`
	CLI      CliConfig      `toml:"cli"`
}

// EngineConfig has the aggregation options.
type EngineConfig struct {
	MinQueryLength int    `toml:"min_query_length"`
	MaxResults     int    `toml:"max_results"`
	Suffixes       string `toml:"suffixes"`
	Sequential     bool   `toml:"sequential"`
	PoolSize       int    `toml:"pool_size"`
}

// ProviderConfig holds the outbound autocomplete endpoint options.
type ProviderConfig struct {
	Endpoint     string `toml:"endpoint"`
	Client       string `toml:"client"`
	TimeoutMs    int    `toml:"timeout_ms"`
	UserAgent    string `toml:"user_agent"`
	MaxBodyBytes int    `toml:"max_body_bytes"`
}

// ServerConfig holds the HTTP transport options.
type ServerConfig struct {
	Addr              string   `toml:"addr"`
	GraphQLPath       string   `toml:"graphql_path"`
	AllowedOrigins    []string `toml:"allowed_origins"`
	ShutdownTimeoutMs int      `toml:"shutdown_timeout_ms"`
}

// CliConfig holds repl/query options.
type CliConfig struct {
	ShowTiming bool `toml:"show_timing"`
}

// Timeout returns the per-call provider timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown window.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutMs) * time.Millisecond
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MinQueryLength: 4,
			MaxResults:     20,
			Suffixes:       " abcdefghijklmnopqrstuvwxyz",
			Sequential:     false,
			PoolSize:       64,
		},
		Provider: ProviderConfig{
			Endpoint:     "http://google.com/complete/search",
			Client:       "chrome",
			TimeoutMs:    1000,
			UserAgent:    "",
			MaxBodyBytes: 1 << 20,
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:5000",
			GraphQLPath:       "/graphql",
			AllowedOrigins:    []string{"*"},
			ShutdownTimeoutMs: 5000,
		},
		CLI: CliConfig{
			ShowTiming: true,
		},
	}
}

// Validate reports every value that cannot be used, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.MinQueryLength < 0 {
		errs = append(errs, fmt.Errorf("engine.min_query_length must be >= 0, got %d", c.Engine.MinQueryLength))
	}
	if c.Engine.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("engine.max_results must be >= 1, got %d", c.Engine.MaxResults))
	}
	if utf8.RuneCountInString(c.Engine.Suffixes) == 0 {
		errs = append(errs, errors.New("engine.suffixes must not be empty"))
	}
	if c.Engine.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("engine.pool_size must be >= 1, got %d", c.Engine.PoolSize))
	}
	if c.Provider.Endpoint == "" {
		errs = append(errs, errors.New("provider.endpoint must not be empty"))
	}
	if c.Provider.TimeoutMs < 1 {
		errs = append(errs, fmt.Errorf("provider.timeout_ms must be >= 1, got %d", c.Provider.TimeoutMs))
	}
	if c.Provider.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("provider.max_body_bytes must be >= 1, got %d", c.Provider.MaxBodyBytes))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.GraphQLPath == "" || c.Server.GraphQLPath[0] != '/' {
		errs = append(errs, fmt.Errorf("server.graphql_path must start with '/', got %q", c.Server.GraphQLPath))
	}
	return errors.Join(errs...)
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (XDG_CONFIG_HOME, ~/.config, APPDATA)
// 2. current executable dir
func GetConfigDir() (string, error) {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve config directory: %v", err)
		return utils.GetExecutableDir()
	}
	if utils.IsWritableDir(resolver.GetConfigDir()) {
		return resolver.GetConfigDir(), nil
	}
	return resolver.GetExecutableDir(), nil
}

// GetDefaultConfigPath returns the default path for config.toml,
// falling back to home, temp or executable dirs when the config dir is read-only.
func GetDefaultConfigPath() (string, error) {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		configDir, dirErr := GetConfigDir()
		if dirErr != nil {
			return "", dirErr
		}
		return filepath.Join(configDir, FileName), nil
	}
	return resolver.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordfan/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file section by section
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "provider"); ok {
		extractProviderConfig(section, &config.Provider)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "min_query_length"); ok {
		engine.MinQueryLength = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		engine.MaxResults = val
	}
	if val, ok := utils.ExtractString(data, "suffixes"); ok {
		engine.Suffixes = val
	}
	if val, ok := utils.ExtractBool(data, "sequential"); ok {
		engine.Sequential = val
	}
	if val, ok := utils.ExtractInt64(data, "pool_size"); ok {
		engine.PoolSize = val
	}
}

// extractProviderConfig extracts provider configuration from a map
func extractProviderConfig(data map[string]any, provider *ProviderConfig) {
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		provider.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "client"); ok {
		provider.Client = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		provider.TimeoutMs = val
	}
	if val, ok := utils.ExtractString(data, "user_agent"); ok {
		provider.UserAgent = val
	}
	if val, ok := utils.ExtractInt64(data, "max_body_bytes"); ok {
		provider.MaxBodyBytes = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.ExtractString(data, "graphql_path"); ok {
		server.GraphQLPath = val
	}
	if val, ok := utils.ExtractStringSlice(data, "allowed_origins"); ok {
		server.AllowedOrigins = val
	}
	if val, ok := utils.ExtractInt64(data, "shutdown_timeout_ms"); ok {
		server.ShutdownTimeoutMs = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_timing"); ok {
		cli.ShowTiming = val
	}
}

// RebuildConfigFile force creates a new config.toml at path, or the default path when empty.
// Returns the path written.
func RebuildConfigFile(path string) (string, error) {
	if path == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	return path, SaveConfig(DefaultConfig(), path)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
