package cortex

import (
	"context"
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("cortex", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/cortex.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.EndGrantTTL != 5*time.Minute {
		t.Fatalf("expected default end grant ttl, got %v", cfg.EndGrantTTL)
	}
	if cfg.HealthAddr != "" {
		t.Fatalf("expected empty health addr, got %q", cfg.HealthAddr)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("CORTEX_SPACE_DB_PATH", "/tmp/env.db")
	t.Setenv("CORTEX_SPACE_END_GRANT_SECRET", "s3cret")
	t.Setenv("CORTEX_SPACE_RULES_PATH", "rules.toml")

	fs := flag.NewFlagSet("cortex", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/flag.db", "-health-addr", "127.0.0.1:0", "-end-grant-ttl", "90s"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.EndGrantSecret != "s3cret" {
		t.Fatalf("expected env secret, got %q", cfg.EndGrantSecret)
	}
	if cfg.RulesPath != "rules.toml" {
		t.Fatalf("expected env rules path, got %q", cfg.RulesPath)
	}
	if cfg.EndGrantTTL != 90*time.Second {
		t.Fatalf("expected flag ttl, got %v", cfg.EndGrantTTL)
	}
}

func TestParseConfigRejectsMalformedEnv(t *testing.T) {
	t.Setenv("CORTEX_SPACE_END_GRANT_TTL", "soon")

	fs := flag.NewFlagSet("cortex", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected env parse error")
	}
}

func TestParseConfigHealthcheckNeedsAddr(t *testing.T) {
	fs := flag.NewFlagSet("cortex", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-healthcheck"}); err == nil {
		t.Fatal("expected error without health addr")
	}
}

func TestRunHealthCheckFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := Run(ctx, Config{HealthCheck: true, HealthAddr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected health check error")
	}
}
