package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clubkit/census-bot/app"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, *configFile)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	// Run the router in the background; it stops when ctx is canceled.
	runErr := make(chan error, 1)
	go func() {
		runErr <- application.Run(ctx)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	fmt.Println("Waiting for shutdown signal...")
	select {
	case <-interrupt:
		fmt.Println("Shutting down application...")
		cancel()
		<-runErr
	case err := <-runErr:
		if err != nil {
			log.Printf("Router stopped with error: %v", err)
		}
	case <-ctx.Done():
		fmt.Println("Application context canceled")
	}

	if err := application.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("Application shut down gracefully.")
}
