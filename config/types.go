package config

// ServerConfig contains the HTTP query surface configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gte=0,lte=65535"`
	StaticDir      string   `yaml:"staticDir"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// StationsConfig points at the static station reference file
type StationsConfig struct {
	File string `yaml:"file" validate:"required"`
}

// PollerConfig controls the update cycle cadence and the per-feed fetch budget
type PollerConfig struct {
	IntervalSec    int `yaml:"intervalSec" validate:"gte=0"`
	FetchTimeoutMS int `yaml:"fetchTimeoutMS" validate:"gte=0"`
	StaleAfterSec  int `yaml:"staleAfterSec" validate:"gte=0"`
}

// FeedConfig describes a single upstream GTFS-RT endpoint and the route
// group it publishes
type FeedConfig struct {
	Name   string   `yaml:"name" validate:"required"`
	URL    string   `yaml:"url" validate:"required,url"`
	Routes []string `yaml:"routes" validate:"required,min=1"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server      ServerConfig      `yaml:"server" validate:"required"`
	Stations    StationsConfig    `yaml:"stations" validate:"required"`
	Poller      PollerConfig      `yaml:"poller"`
	Feeds       []FeedConfig      `yaml:"feeds" validate:"required,min=1"`
	RouteColors map[string]string `yaml:"routeColors"`
}

// ColorForRoute returns the configured display color for a route, or ""
// when none is mapped.
func (c *AppConfig) ColorForRoute(routeID string) string {
	return c.RouteColors[routeID]
}
