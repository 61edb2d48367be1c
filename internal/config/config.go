package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BackendConfig describes one generation backend to register at startup.
type BackendConfig struct {
	// Name is the key tasks are routed by. Defaults to the model name.
	Name string `yaml:"name,omitempty"`

	// Model is the provider model identifier, e.g. "gemini-2.0-flash".
	Model string `yaml:"model,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	// Defaults to GEMINI_API_KEY.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`
}

// ProjectConfig holds project-level settings loaded from deckgen.yml.
type ProjectConfig struct {
	Backends       []BackendConfig `yaml:"backends,omitempty"`
	Window         int             `yaml:"window,omitempty"`
	TimeoutSeconds int             `yaml:"timeoutSeconds,omitempty"`
	Theme          string          `yaml:"theme,omitempty"`
	OutputDir      string          `yaml:"outputDir,omitempty"`
	ImageEndpoint  string          `yaml:"imageEndpoint,omitempty"`
	Verbose        bool            `yaml:"verbose,omitempty"`
}

// Load attempts to read deckgen.yml or deckgen.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"deckgen.yml", "deckgen.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
