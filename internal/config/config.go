package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvBaseDir is the one environment override: it points the supervisor at an
// alternate state directory.
const EnvBaseDir = "HERD_HOME"

const (
	registryFile = "agents.json"
	logDirName   = "logs"
	configFile   = "config.toml"
	diagLogFile  = "herd.log"
)

// DefaultType is the agent type used when spawn is not given --type.
const DefaultType = "claude"

// defaultTypes maps built-in agent types to their launch command lines.
// The command reads its prompt from stdin and writes to stdout/stderr.
var defaultTypes = map[string]string{
	"claude": "claude -p",
}

type HistoryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the supervisor configuration. The optional TOML file
// <base>/config.toml can extend agent types, add environment entries for
// spawned agents, and enable the history sink.
type Config struct {
	BaseDir string            `mapstructure:"-"`
	Types   map[string]string `mapstructure:"types"`
	Env     []string          `mapstructure:"env"`
	History HistoryConfig     `mapstructure:"history"`
	Log     LogConfig         `mapstructure:"log"`
}

// Load resolves the state directory (explicit flag, then HERD_HOME, then
// ~/.herd) and reads the optional config file inside it.
func Load(baseDirFlag string) (*Config, error) {
	base := baseDirFlag
	if base == "" {
		base = os.Getenv(EnvBaseDir)
	}
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".herd")
	}

	cfg := &Config{BaseDir: base, Types: map[string]string{}}

	v := viper.New()
	v.SetConfigFile(filepath.Join(base, configFile))
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Types == nil {
		cfg.Types = map[string]string{}
	}
	for k, cmdline := range defaultTypes {
		if _, ok := cfg.Types[k]; !ok {
			cfg.Types[k] = cmdline
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}

// EnsureDirs creates the state and log directories with owner-only access.
// Owner-only permissions are a deliberate control: prompt files and logs can
// contain sensitive task context.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.BaseDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.MkdirAll(c.LogDir(), 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return nil
}

func (c *Config) RegistryPath() string { return filepath.Join(c.BaseDir, registryFile) }
func (c *Config) LogDir() string       { return filepath.Join(c.BaseDir, logDirName) }
func (c *Config) DiagLogPath() string  { return filepath.Join(c.BaseDir, diagLogFile) }

// LogPath and PromptPath are deterministic functions of the agent name so
// cleanup never depends on fields read back from a possibly-corrupt registry.
func (c *Config) LogPath(name string) string { return filepath.Join(c.LogDir(), name+".log") }

func (c *Config) PromptPath(name string) string {
	return filepath.Join(c.BaseDir, name+".prompt.md")
}

// CommandFor resolves the launch argv for an agent type. An unknown type is
// treated as the executable name itself, so `--type aider` works without a
// config entry.
func (c *Config) CommandFor(agentType string) []string {
	if agentType == "" {
		agentType = DefaultType
	}
	if cmdline, ok := c.Types[agentType]; ok {
		return strings.Fields(cmdline)
	}
	return []string{agentType}
}
