package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from
// config.yml (or the path given in CONFIG_FILE)
func LoadAppConfig() error {
	paths := []string{"config.yml", "./deploy/config.yml"}
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		paths = []string{p}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Parse unmarshals, defaults and validates a raw YAML configuration document.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return nil, err
	}
	if err := v.Struct(cfg.Stations); err != nil {
		return nil, err
	}
	if err := v.Struct(cfg.Poller); err != nil {
		return nil, err
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("at least one feed must be configured")
	}
	for _, f := range cfg.Feeds {
		if err := v.Struct(f); err != nil {
			return nil, err
		}
	}
	if err := validateRoutes(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Poller.IntervalSec == 0 {
		cfg.Poller.IntervalSec = 15
	}
	if cfg.Poller.FetchTimeoutMS == 0 {
		cfg.Poller.FetchTimeoutMS = 10000
	}
	if cfg.Poller.StaleAfterSec == 0 {
		cfg.Poller.StaleAfterSec = 60
	}
}

// validateRoutes rejects a route assigned to more than one feed and colors
// mapped to routes no feed carries. Feeds partition the network by route
// group; a duplicate assignment would make trip merging ambiguous.
func validateRoutes(cfg *AppConfig) error {
	routeFeed := map[string]string{}
	for _, f := range cfg.Feeds {
		for _, r := range f.Routes {
			if prev, ok := routeFeed[r]; ok {
				return fmt.Errorf("route %q assigned to both feed %q and feed %q", r, prev, f.Name)
			}
			routeFeed[r] = f.Name
		}
	}
	for r := range cfg.RouteColors {
		if _, ok := routeFeed[r]; !ok {
			return fmt.Errorf("color configured for unknown route %q", r)
		}
	}
	return nil
}
