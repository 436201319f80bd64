// Package cortex parses cortex command flags and launches the service.
package cortex

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/cortex.space/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/cortex.space/internal/platform/grpc"
	"github.com/louisbranch/cortex.space/internal/platform/timeouts"
	server "github.com/louisbranch/cortex.space/internal/services/cortex/app"
)

// Config holds cortex command configuration.
type Config struct {
	DBPath         string        `env:"DB_PATH" envDefault:"data/cortex.db"`
	RulesPath      string        `env:"RULES_PATH"`
	HealthAddr     string        `env:"HEALTH_ADDR"`
	EndGrantSecret string        `env:"END_GRANT_SECRET"`
	EndGrantTTL    time.Duration `env:"END_GRANT_TTL" envDefault:"5m"`
	// HealthCheck checks a running instance's health endpoint and exits.
	HealthCheck bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the cortex SQLite database")
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "Path to a TOML rules preset")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "Address for the gRPC health endpoint; empty disables it")
	fs.DurationVar(&cfg.EndGrantTTL, "end-grant-ttl", cfg.EndGrantTTL, "Lifetime of campaign end confirmation tokens")
	fs.BoolVar(&cfg.HealthCheck, "healthcheck", false, "Check the health endpoint at -health-addr and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.HealthCheck && strings.TrimSpace(cfg.HealthAddr) == "" {
		return Config{}, fmt.Errorf("-healthcheck requires -health-addr")
	}
	return cfg, nil
}

// Run starts the cortex MCP service, or checks a running one when HealthCheck is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		return platformgrpc.CheckHealth(ctx, cfg.HealthAddr, server.HealthService, timeouts.HealthCheck)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCortex, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			DBPath:         cfg.DBPath,
			RulesPath:      cfg.RulesPath,
			HealthAddr:     cfg.HealthAddr,
			EndGrantSecret: cfg.EndGrantSecret,
			EndGrantTTL:    cfg.EndGrantTTL,
		})
	})
}
