package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kilometers.ai/loader/internal/interfaces/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		// The terminal UI restores the screen once ctx is done
		cancel()
	}()

	cli.Execute(ctx, cli.NewCLIContainer())
}
