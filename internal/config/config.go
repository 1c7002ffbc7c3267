// Package config loads and persists the two YAML documents this
// service is driven by: the connection/credential config (§6 "Keys
// exactly") and, in prompt.go, the prompt template file. Both follow
// the teacher's own validator.go shape: a strict decode followed by an
// explicit field-by-field check, wrapped in perrors.ConfigError.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/perfguard/internal/perrors"
)

// FileName is the config file's fixed name, resolved relative to the
// running executable's directory.
const FileName = "config.yaml"

// Config holds the connection details required to run a tick:
// Instana-style credentials, the GitHub PAT, the target repository and
// branch, and the Ollama model identity. Every field is required and
// must be non-empty; an unrecognized key in the YAML document is also
// rejected (strict decode), per §6.
type Config struct {
	IBMTenant  string `yaml:"IBM_Tenant"`
	IBMUnit    string `yaml:"IBM_Unit"`
	IBMKey     string `yaml:"IBM_Key"`
	IBMLabel   string `yaml:"IBM_Label"`
	GitHub     string `yaml:"GitHub"`
	Repository string `yaml:"Repository"`
	Branch     string `yaml:"Branch"`
	Model      string `yaml:"Model"`
	ModelPath  string `yaml:"ModelPath"`
}

// Path returns the fixed config file location: FileName next to the
// running executable.
func Path() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perrors.NewConfigError(path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, perrors.NewConfigError(path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, perrors.NewConfigError(path, err)
	}
	return &cfg, nil
}

// Validate rejects the config unless every key holds a non-empty
// value. Strict decoding in Load already rejects unrecognized keys;
// a key silently absent from the YAML document surfaces here as its
// zero value, so the same check covers both "missing" and "empty".
func (c *Config) Validate() error {
	for _, kv := range c.fields() {
		if kv.value == "" {
			return fmt.Errorf("%s must not be empty", kv.key)
		}
	}
	return nil
}

type keyValue struct{ key, value string }

func (c *Config) fields() []keyValue {
	return []keyValue{
		{"IBM_Tenant", c.IBMTenant},
		{"IBM_Unit", c.IBMUnit},
		{"IBM_Key", c.IBMKey},
		{"IBM_Label", c.IBMLabel},
		{"GitHub", c.GitHub},
		{"Repository", c.Repository},
		{"Branch", c.Branch},
		{"Model", c.Model},
		{"ModelPath", c.ModelPath},
	}
}

// Save persists cfg as YAML at path, creating or truncating the file.
// Used by the `setup` CLI command (§6).
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
