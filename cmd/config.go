package main

import (
	"time"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	LimitMessages *int `env:"LIMIT_MESSAGES"`

	// FetchLatency simulates the network boundary of the data source.
	FetchLatency time.Duration `env:"FETCH_LATENCY,default=300ms"`

	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	// PreferredLanguage drives the needs-translation hint in the renderer.
	PreferredLanguage string `env:"PREFERRED_LANGUAGE,default=en"`
}
