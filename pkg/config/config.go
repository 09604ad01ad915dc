package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/lukasmoellerch/tts-data-go/pkg/sigarrafetch"
)

const (
	DefaultFile       = "tts-data.json5"
	DefaultCatalogURL = "https://ni.fe.up.pt/tts/api/faculties/8/courses"
	DefaultMeiliHost  = "http://127.0.0.1:7700"
)

type Sigarra struct {
	BaseURL string `json:"base_url"`
}

type HTTP struct {
	// Timeout is a duration such as "30s", empty waits forever.
	Timeout   string `json:"timeout"`
	UserAgent string `json:"user_agent"`
}

type Meili struct {
	Host        string `json:"host"`
	APIKey      string `json:"api_key"`
	IndexPrefix string `json:"index_prefix"`
}

type Config struct {
	ProjectRoot     string   `json:"project_root"`
	DataRoot        string   `json:"data_root"`
	CatalogURL      string   `json:"catalog_url"`
	ExpectedEntries []string `json:"expected_entries"`
	ContinueOnError bool     `json:"continue_on_error"`

	Sigarra Sigarra `json:"sigarra"`
	HTTP    HTTP    `json:"http"`
	Meili   Meili   `json:"meili"`
}

// Load reads the config at path, merges the non-zero fields of overrides
// over it and fills in defaults. A missing file is not an error.
func Load(path string, overrides ...Config) (Config, error) {
	cfg, err := ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	for _, override := range overrides {
		if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
			return Config{}, err
		}
	}
	cfg.applyDefaults()
	if _, err := cfg.Timeout(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}
	if c.DataRoot == "" {
		c.DataRoot = filepath.Join(c.ProjectRoot, "data")
	}
	if c.CatalogURL == "" {
		c.CatalogURL = DefaultCatalogURL
	}
	if c.Sigarra.BaseURL == "" {
		c.Sigarra.BaseURL = sigarrafetch.DefaultBaseURL
	}
	if c.Meili.Host == "" {
		c.Meili.Host = DefaultMeiliHost
	}
}

func (c Config) Timeout() (time.Duration, error) {
	if c.HTTP.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http.timeout %q: %w", c.HTTP.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid http.timeout %q: must not be negative", c.HTTP.Timeout)
	}
	return d, nil
}
