// Package config loads the dashboard client configuration from a YAML file
// or command-line flags.
package config

import (
	"flag"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrNotConfigured means no config file exists and no server URL was given
// on the command line; the caller should run the first-run wizard.
var ErrNotConfigured = errors.New("no configuration found")

// DefaultPath is where the wizard writes its config and where Get looks
// when -config is not given.
const DefaultPath = "coindeck.yaml"

const defaultReconnectDelay = 3 * time.Second

// Config is everything the client needs to reach the dashboard server.
type Config struct {
	ServerURL      string        `yaml:"server_url"`
	Token          string        `yaml:"token"`
	Locale         string        `yaml:"locale"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
}

// Get resolves configuration: flags win over the YAML file. It returns
// ErrNotConfigured when neither source yields a server URL.
func Get() (Config, error) {
	path := flag.String("config", DefaultPath, "path to yaml config")
	server := flag.String("server", "", "dashboard websocket url, example: wss://host/ws")
	token := flag.String("token", "", "auth token")
	locale := flag.String("locale", "", "ui locale, example: en-US")
	flag.Parse()

	cfg, err := fromYaml(*path)
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, err
	}

	if *server != "" {
		cfg.ServerURL = *server
	}
	if *token != "" {
		cfg.Token = *token
	}
	if *locale != "" {
		cfg.Locale = *locale
	}

	if cfg.ServerURL == "" {
		return Config{}, ErrNotConfigured
	}
	return cfg.withDefaults().validate()
}

// Load reads one YAML config file and validates it.
func Load(path string) (Config, error) {
	cfg, err := fromYaml(path)
	if err != nil {
		return Config{}, err
	}
	return cfg.withDefaults().validate()
}

// Save writes the config as YAML, used by the first-run wizard.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "write config")
}

func fromYaml(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse yaml config %s", path)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Locale == "" {
		c.Locale = "en-US"
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
	return c
}

func (c Config) validate() (Config, error) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid server_url %q", c.ServerURL)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return Config{}, errors.Errorf("server_url must be ws:// or wss://, got %q", c.ServerURL)
	}
	return c, nil
}
