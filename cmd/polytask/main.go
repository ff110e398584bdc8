package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"polytask/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		log.Fatalf("polytask: %v", err)
	}
}
