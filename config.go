package main

import (
	"io"
	"os"

	"github.com/tonyliqx/nightreign-relic-manager/internal/platform/config"
)

const serviceName = "relic-search"

// Config is read from RELIC_-prefixed environment variables. Flags override it.
type Config struct {
	// MaxResults caps the loadouts returned per search.
	MaxResults int `env:"MAX_RESULTS" envDefault:"100"`
	// CheckpointEvery is the number of search branches between cancellation
	// and progress checks.
	CheckpointEvery int `env:"CHECKPOINT_EVERY" envDefault:"50000"`
	// StorePath is the SQLite collection. Empty means no store.
	StorePath string `env:"STORE_PATH"`
	// CatalogPath overrides the embedded game data.
	CatalogPath string `env:"CATALOG_PATH"`
	// Nightfarer is searched when no -nightfarer flag is given.
	Nightfarer string `env:"NIGHTFARER" envDefault:"wylder"`
}

func loadConfig() (Config, error) {
	var c Config
	if err := config.ParseEnv(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Verbose controls whether detailed search progress is printed to stderr.
var Verbose bool

func logw() io.Writer { return os.Stderr }

// engineLog is where the search engine writes its [tag] lines: stderr when
// verbose, nowhere otherwise.
func engineLog() io.Writer {
	if Verbose {
		return logw()
	}
	return nil
}
