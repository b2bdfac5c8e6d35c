// Package main is the entry point for the tasksync CLI.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"tasksync/internal/api"
	"tasksync/internal/cli"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/gateway/rest"
)

func main() {
	// glog expects the default flag set parsed; the CLI parses its own.
	flag.CommandLine.Parse(nil)

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config) (api.Gateway, error) {
		return rest.New(cfg), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
