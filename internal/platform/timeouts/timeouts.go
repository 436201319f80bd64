// Package timeouts defines shared timeout constants used across the process.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// HealthCheck caps a command-line health check end to end.
const HealthCheck = 5 * time.Second

// Shutdown limits how long telemetry and servers wait to drain.
const Shutdown = 5 * time.Second
