package main

import (
	"os"
	"os/signal"
	"syscall"

	"polyalpha/internal/bootstrap"
)

func main() {
	container := bootstrap.NewContainer()
	container.MustInit()

	if err := container.Start(); err != nil {
		container.Log.Fatalf("failed to start: %v", err)
	}

	// Wait for shutdown signal or a fatal server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		container.Log.Infow("Shutdown signal received", "signal", sig.String())
	case <-container.Context.Done():
		container.Log.Warn("Context cancelled, shutting down")
	}

	container.Shutdown()
}
