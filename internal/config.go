package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	// LimitMessages caps how many messages one fetch returns; nil means all.
	LimitMessages *int `env:"LIMIT_MESSAGES"`

	// FetchLatency simulates the network boundary of the data source.
	FetchLatency time.Duration `env:"FETCH_LATENCY,default=300ms"`

	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	CensoredWords   string `env:"CENSORED_WORDS"` // comma-separated
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

// CensoredWordList splits a comma-separated word list, dropping blanks.
func CensoredWordList(raw string) []string {
	var words []string
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
