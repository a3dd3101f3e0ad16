package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (INGEST_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DownstreamURL string `usage:"Base URL of the downstream order API (INGEST_DOWNSTREAM_URL or ORDER_API_URL)" flag:"downstream-url"`
	Downstream    DownstreamConfig
	Graceful      GracefulConfig
}

// DownstreamConfig controls calls to the downstream order API.
type DownstreamConfig struct {
	Timeout           time.Duration `default:"10s" usage:"Timeout for each downstream request"`
	LookupConcurrency int           `default:"1" usage:"Concurrent product lookups per Vault order (1 = sequential)" flag:"lookup-concurrency"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "INGEST",
		Files:     []string{"config.yaml", "/etc/ingest/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DownstreamURL == "" {
		return errors.New("downstream URL is required: set INGEST_DOWNSTREAM_URL or ORDER_API_URL")
	}
	if c.Downstream.Timeout <= 0 {
		return errors.Errorf("downstream timeout must be positive, got %s", c.Downstream.Timeout)
	}
	if c.Downstream.LookupConcurrency < 1 {
		c.Downstream.LookupConcurrency = 1
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// unprefixed names, like ORDER_API_URL and PORT, onto the configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DownstreamURL == "" {
		if v := os.Getenv("ORDER_API_URL"); v != "" {
			c.DownstreamURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
