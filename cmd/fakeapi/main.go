// Command fakeapi serves the in-memory writex backend for local development.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"writex/internal/config"
	"writex/internal/fakeapi"
	"writex/internal/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	port := flag.String("port", cfg.FakeAPIPort, "Port to listen on")
	users := flag.Int("users", cfg.FakeAPISeedUsers, "Number of fake users to seed")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for generated data")
	flag.Parse()

	logger := observability.NewLogger(os.Stderr, observability.LoggerOptions{
		Format:     cfg.LogFormat,
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
	})

	srv := fakeapi.New(fakeapi.Options{JWTSecret: cfg.FakeAPIJWTSecret, Logger: logger})

	if *users > 0 {
		seeded, err := srv.Seed(*users, *seed)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		for _, u := range seeded {
			log.Printf("seeded %s (%s)", u.Username, u.Email)
		}
		log.Printf("All seeded users have the password: %s", fakeapi.SeedPassword)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down fake backend...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Fake backend listening on port %s...", *port)
	if err := srv.Listen(":" + *port); err != nil {
		log.Fatal(err)
	}
}
