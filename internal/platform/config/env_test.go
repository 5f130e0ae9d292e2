package config

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

type envTestConfig struct {
	Limit int    `env:"TEST_LIMIT" envDefault:"100"`
	Path  string `env:"TEST_PATH"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Limit != 100 {
		t.Fatalf("Limit = %d, want 100", cfg.Limit)
	}
}

func TestParseEnvUsesPrefix(t *testing.T) {
	t.Setenv("TEST_PATH", "unprefixed")
	t.Setenv("RELIC_TEST_PATH", "/tmp/relics.db")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "/tmp/relics.db" {
		t.Fatalf("Path = %q, want %q", cfg.Path, "/tmp/relics.db")
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("RELIC_TEST_LIMIT", "lots")

	var cfg envTestConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "parse env:") {
		t.Fatalf("err = %v, want parse env prefix", err)
	}
}

// Exitf calls os.Exit, so it runs in a child test process.
func TestExitf(t *testing.T) {
	if os.Getenv("RELIC_EXITF_CHILD") == "1" {
		Exitf("fatal: %s", "no inventory")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf$")
	cmd.Env = append(os.Environ(), "RELIC_EXITF_CHILD=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: no inventory") {
		t.Fatalf("output = %q", out)
	}
}
