package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BADGER_DIR and E2E_BLUGE_DIR override the temp dirs, useful to
	// inspect the stores after a failed run
	BadgerDir string `envconfig:"E2E_BADGER_DIR"`
	BlugeDir  string `envconfig:"E2E_BLUGE_DIR"`
	// E2E_FETCH_LATENCY exercises the async selection paths under a
	// realistic data source delay
	FetchLatency time.Duration `envconfig:"E2E_FETCH_LATENCY" default:"0s"`
	// E2E_TOKEN_DURATION bounds the session tokens minted during the run
	TokenDuration time.Duration `envconfig:"E2E_TOKEN_DURATION" default:"1h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
