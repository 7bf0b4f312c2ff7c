package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"confattach/cmd"
	"confattach/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, cnf); err != nil {
		stop()
		os.Exit(1)
	}
}
