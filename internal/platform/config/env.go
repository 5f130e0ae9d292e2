// Package config holds the environment plumbing shared by the entry points.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Prefix namespaces every environment variable the tools read.
const Prefix = "RELIC_"

// ParseEnv fills target from RELIC_-prefixed environment variables. Struct
// tags name the variables without the prefix.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf prints a fatal message to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
