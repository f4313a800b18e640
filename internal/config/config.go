package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/cllm/internal/utils"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

const (
	appName           = "cllm"
	dataDirName       = "cl_llm"
	configFileName    = "config.yaml"
	defaultMaxPasses  = 10
	defaultRedisURL   = "redis://localhost:6379"
	defaultRedisKeys  = "cllm:memory:"
	profileFileName   = "user_data.json"
	selfTraitFileName = "self_personality.json"
)

// Config is the resolved configuration of the CLI.
type Config struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	DataDir string `yaml:"data_dir"`
	// Store is one of "file", "redis" or "memory".
	Store string      `yaml:"store"`
	Redis RedisConfig `yaml:"redis"`
	// MaxPasses caps the model passes of a turn; 0 or less removes the cap.
	MaxPasses *int      `yaml:"max_passes"`
	Tracing   bool      `yaml:"tracing"`
	Log       LogConfig `yaml:"log"`
}

// RedisConfig locates the redis store backend.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// sources are the places Load reads from, split out for tests.
type sources struct {
	configHome  string
	dataHome    string
	dotenvFiles []string
	lookupEnv   func(string) (string, bool)
}

func defaultSources() sources {
	files := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".env"))
	}
	return sources{
		configHome:  xdg.ConfigHome,
		dataHome:    xdg.DataHome,
		dotenvFiles: files,
		lookupEnv:   os.LookupEnv,
	}
}

// Load resolves the configuration. Later sources override earlier ones:
//
//  1. built-in defaults
//  2. the YAML file at path, or $XDG_CONFIG_HOME/cllm/config.yaml if path is empty
//  3. .env in the working directory, then ~/.env
//  4. the process environment
//
// An explicit path must exist; the default one is optional. Values from
// .env files never override variables already set in the environment.
func Load(path string) (*Config, error) {
	return load(path, defaultSources())
}

func load(path string, src sources) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(src.configHome, appName, configFileName)
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(src.dotenvFiles)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if value, ok := src.lookupEnv(key); ok && value != "" {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok && value != ""
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.validate(src.dataHome); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// readDotenv merges files in order; the first file defining a key wins.
func readDotenv(files []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for key, value := range values {
			if _, ok := merged[key]; !ok {
				merged[key] = value
			}
		}
	}
	return merged, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GEMINI_API_KEY"); ok {
		c.APIKey = v
	} else if v, ok := lookup("GOOGLE_API_KEY"); ok {
		c.APIKey = v
	}

	stringFields := map[string]*string{
		"CLLM_MODEL":      &c.Model,
		"CLLM_DATA_DIR":   &c.DataDir,
		"CLLM_STORE":      &c.Store,
		"CLLM_REDIS_URL":  &c.Redis.URL,
		"CLLM_LOG_LEVEL":  &c.Log.Level,
		"CLLM_LOG_FORMAT": &c.Log.Format,
	}
	for key, field := range stringFields {
		if v, ok := lookup(key); ok {
			*field = v
		}
	}

	if v, ok := lookup("CLLM_MAX_PASSES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CLLM_MAX_PASSES=%q is not an integer", ErrInvalidConfig, v)
		}
		c.MaxPasses = utils.Ptr(n)
	}
	if v, ok := lookup("CLLM_TRACING"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: CLLM_TRACING=%q is not a boolean", ErrInvalidConfig, v)
		}
		c.Tracing = enabled
	}
	return nil
}

// validate fills defaults and rejects unusable values. The API key is not
// checked here: commands that never reach the model do not need one.
func (c *Config) validate(dataHome string) error {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(dataHome, dataDirName)
	}
	if c.Store == "" {
		c.Store = StoreFile
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store %q (want file, redis or memory)", ErrInvalidConfig, c.Store)
	}
	if c.Redis.URL == "" {
		c.Redis.URL = defaultRedisURL
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = defaultRedisKeys
	}
	if c.MaxPasses == nil {
		c.MaxPasses = utils.Ptr(defaultMaxPasses)
	}
	return nil
}

// ProfilePath is the file holding user facts and mannerisms.
func (c *Config) ProfilePath() string {
	return filepath.Join(c.DataDir, profileFileName)
}

// SelfTraitPath is the file holding the assistant's self-traits.
func (c *Config) SelfTraitPath() string {
	return filepath.Join(c.DataDir, selfTraitFileName)
}
