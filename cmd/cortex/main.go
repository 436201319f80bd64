// Package main starts the cortex MCP service process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	cortexcmd "github.com/louisbranch/cortex.space/internal/cmd/cortex"
)

func main() {
	cfg, err := cortexcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	// stdout carries the MCP stdio stream.
	log.SetOutput(os.Stderr)
	log.SetPrefix("[CORTEX] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cortexcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
