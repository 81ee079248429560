package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/s22625/fwbuild/internal/gh"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkflow          = "build.yml"
	DefaultOutDir            = "./artifacts"
	DefaultArtifact          = "glove80.uf2"
	DefaultLogLevel          = "info"
	DefaultRunLimit          = gh.DefaultRunLimit
	DefaultDiscoveryInterval = 2 * time.Second
	DefaultDiscoveryAttempts = 120
	DefaultWatchInterval     = 3 * time.Second
)

// DiscoveryConfig bounds the poll for a freshly dispatched run
type DiscoveryConfig struct {
	Interval time.Duration
	Attempts int
}

// WatchConfig controls the refresh interval of gh run watch
type WatchConfig struct {
	Interval time.Duration
}

// Config holds fwbuild configuration
type Config struct {
	Repo      string
	Ref       string
	Workflow  string
	OutDir    string
	Artifact  string
	LogLevel  string
	RunLimit  int
	Discovery DiscoveryConfig
	Watch     WatchConfig
}

type fileConfig struct {
	Repo      string `yaml:"repo"`
	Ref       string `yaml:"ref"`
	Workflow  string `yaml:"workflow"`
	OutDir    string `yaml:"out_dir"`
	Artifact  string `yaml:"artifact"`
	LogLevel  string `yaml:"log_level"`
	RunLimit  int    `yaml:"run_limit"`
	Discovery struct {
		Interval string `yaml:"interval"`
		Attempts int    `yaml:"attempts"`
	} `yaml:"discovery"`
	Watch struct {
		Interval string `yaml:"interval"`
	} `yaml:"watch"`
}

// configFile is the name of the config file
const configFile = "config.yaml"

// repoConfigDir is the per-repository config directory
const repoConfigDir = ".fwbuild"

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Workflow: DefaultWorkflow,
		OutDir:   DefaultOutDir,
		Artifact: DefaultArtifact,
		LogLevel: DefaultLogLevel,
		RunLimit: DefaultRunLimit,
		Discovery: DiscoveryConfig{
			Interval: DefaultDiscoveryInterval,
			Attempts: DefaultDiscoveryAttempts,
		},
		Watch: WatchConfig{Interval: DefaultWatchInterval},
	}
}

// Load loads configuration with the following precedence (highest first):
// 1. Environment variables (FWBUILD_*)
// 2. Repo-local .fwbuild/config.yaml files (closest to cwd wins)
// 3. Global ~/.config/fwbuild/config.yaml
// 4. Built-in defaults
func Load() (*Config, error) {
	cfg := Default()

	globalPath := globalConfigPath()
	if globalPath != "" {
		if err := loadFromFile(globalPath, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	repoPaths, err := findRepoConfigs()
	if err != nil {
		return nil, err
	}
	for _, repoPath := range repoPaths {
		if err := loadFromFile(repoPath, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the reconciliation cannot work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Workflow) == "" {
		return fmt.Errorf("workflow must not be empty")
	}
	if strings.TrimSpace(c.Artifact) == "" {
		return fmt.Errorf("artifact name must not be empty")
	}
	if c.RunLimit <= 0 {
		return fmt.Errorf("run_limit must be positive, got %d", c.RunLimit)
	}
	if c.Discovery.Interval <= 0 {
		return fmt.Errorf("discovery.interval must be positive, got %s", c.Discovery.Interval)
	}
	if c.Discovery.Attempts <= 0 {
		return fmt.Errorf("discovery.attempts must be positive, got %d", c.Discovery.Attempts)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %s", c.Watch.Interval)
	}
	return nil
}

// RepoConfigDir returns the path to .fwbuild directory if found, empty string otherwise
func RepoConfigDir() string {
	paths, _ := findRepoConfigs()
	if len(paths) == 0 {
		return ""
	}
	return filepath.Dir(paths[len(paths)-1])
}

// findRepoConfigs searches upward from cwd for .fwbuild/config.yaml files.
// Returned paths are ordered from furthest ancestor to closest (highest precedence last).
func findRepoConfigs() ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	dir := cwd
	var paths []string
	for {
		configPath := filepath.Join(dir, repoConfigDir, configFile)
		if _, err := os.Stat(configPath); err == nil {
			paths = append(paths, configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
		paths[i], paths[j] = paths[j], paths[i]
	}

	return paths, nil
}

// globalConfigPath returns the path to global config
func globalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fwbuild", configFile)
}

// loadFromFile merges a YAML file into cfg. A relative out_dir is resolved
// against the repo root for .fwbuild/config.yaml and against the file's
// directory otherwise.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fileCfg fileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	if filepath.Base(baseDir) == repoConfigDir {
		baseDir = filepath.Dir(baseDir)
	}

	if fileCfg.Repo != "" {
		cfg.Repo = fileCfg.Repo
	}
	if fileCfg.Ref != "" {
		cfg.Ref = fileCfg.Ref
	}
	if fileCfg.Workflow != "" {
		cfg.Workflow = fileCfg.Workflow
	}
	if fileCfg.OutDir != "" {
		cfg.OutDir = ExpandPath(fileCfg.OutDir, baseDir)
	}
	if fileCfg.Artifact != "" {
		cfg.Artifact = fileCfg.Artifact
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.RunLimit != 0 {
		cfg.RunLimit = fileCfg.RunLimit
	}
	if fileCfg.Discovery.Interval != "" {
		d, err := time.ParseDuration(fileCfg.Discovery.Interval)
		if err != nil {
			return fmt.Errorf("%s: discovery.interval: %w", path, err)
		}
		cfg.Discovery.Interval = d
	}
	if fileCfg.Discovery.Attempts != 0 {
		cfg.Discovery.Attempts = fileCfg.Discovery.Attempts
	}
	if fileCfg.Watch.Interval != "" {
		d, err := time.ParseDuration(fileCfg.Watch.Interval)
		if err != nil {
			return fmt.Errorf("%s: watch.interval: %w", path, err)
		}
		cfg.Watch.Interval = d
	}

	return nil
}

// applyEnv applies environment variables to config
func applyEnv(cfg *Config) error {
	if v := os.Getenv("FWBUILD_REPO"); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv("FWBUILD_REF"); v != "" {
		cfg.Ref = v
	}
	if v := os.Getenv("FWBUILD_WORKFLOW"); v != "" {
		cfg.Workflow = v
	}
	if v := os.Getenv("FWBUILD_OUT"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("FWBUILD_ARTIFACT"); v != "" {
		cfg.Artifact = v
	}
	if v := os.Getenv("FWBUILD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FWBUILD_RUN_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FWBUILD_RUN_LIMIT: %w", err)
		}
		cfg.RunLimit = n
	}
	if v := os.Getenv("FWBUILD_DISCOVERY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FWBUILD_DISCOVERY_INTERVAL: %w", err)
		}
		cfg.Discovery.Interval = d
	}
	if v := os.Getenv("FWBUILD_DISCOVERY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FWBUILD_DISCOVERY_ATTEMPTS: %w", err)
		}
		cfg.Discovery.Attempts = n
	}
	if v := os.Getenv("FWBUILD_WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FWBUILD_WATCH_INTERVAL: %w", err)
		}
		cfg.Watch.Interval = d
	}
	return nil
}

// ExpandPath expands ~ and makes path absolute relative to base
func ExpandPath(path, base string) string {
	if path == "" {
		return ""
	}

	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}

	if !filepath.IsAbs(path) && base != "" {
		path = filepath.Join(base, path)
	}

	return path
}
