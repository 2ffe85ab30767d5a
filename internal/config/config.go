package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when no credential could be found in the
// environment, the .env file or the config file.
var ErrMissingAPIKey = errors.New("no Gemini API key configured: set GEMINI_API_KEY (or GOOGLE_API_KEY, GEMCHECK_API_KEY) or add api_key to the config file")

// APIKeyEnvVars are checked in order; the first non-empty one wins.
var APIKeyEnvVars = []string{"GEMCHECK_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}

const (
	ModelEnvVar  = "GEMCHECK_MODEL"
	PromptEnvVar = "GEMCHECK_PROMPT"
)

// Config is the on-disk settings file, JSON or YAML.
type Config struct {
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model  string `json:"model,omitempty" yaml:"model,omitempty"`
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// Settings is the resolved configuration for one check.
type Settings struct {
	APIKey string
	Model  string
	Prompt string

	// KeySource names where APIKey came from, for diagnostics. Never the key itself.
	KeySource string
}

type Options struct {
	// ConfigPath is an optional JSON or YAML file. Empty means none.
	ConfigPath string
	// EnvFiles are loaded with godotenv. Real environment variables win.
	// A missing default .env is not an error.
	EnvFiles []string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Resolve loads .env files, the optional config file and the environment,
// and fails fast when no credential is available.
func Resolve(opts Options) (*Settings, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	file := &Config{}
	if opts.ConfigPath != "" {
		cfg, err := LoadFromFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigPath, err)
		}
		file = cfg
	}

	s := &Settings{
		Model:  file.Model,
		Prompt: file.Prompt,
	}
	if v := strings.TrimSpace(file.APIKey); v != "" {
		s.APIKey = v
		s.KeySource = "config:" + opts.ConfigPath
	}

	// Environment variables override config file
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			s.APIKey = v
			s.KeySource = "env:" + name
			break
		}
	}
	if m := getenv(ModelEnvVar); m != "" {
		s.Model = m
	}
	if p := getenv(PromptEnvVar); p != "" {
		s.Prompt = p
	}

	if s.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return s, nil
}

func loadEnvFiles(paths []string) error {
	if len(paths) == 0 {
		// Load environment variables from .env if present
		_ = godotenv.Load()
		return nil
	}
	for _, p := range paths {
		if err := godotenv.Load(expandHome(p)); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromFile loads the configuration from a JSON or YAML file
func LoadFromFile(path string) (*Config, error) {
	path = expandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Expand ~ to home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
