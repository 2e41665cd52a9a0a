// Package main is the entry point for the car rental contract service.
// It initializes all dependencies, starts the transition scheduler and the
// HTTP server.
package main

import (
	"context"
	"log"
	"os"

	"carrental/src/app/server"
	"carrental/src/core/usecase"
	"carrental/src/infra/clients"
	"carrental/src/infra/config"
	"carrental/src/infra/db"
	"carrental/src/infra/logger"
	"carrental/src/infra/repo"
	"carrental/src/infra/scheduler"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
	)

	// Apply pending schema migrations
	if err := db.Migrate(cfg.Database, log); err != nil {
		return err
	}

	// Initialize database connection
	pg, err := db.New(context.Background(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer pg.Close()

	// Adapters
	contractRepo := repo.NewPostgresRepository(pg, log)
	identity := clients.NewIdentityClient(cfg.Clients, log)
	fleet := clients.NewFleetClient(cfg.Clients, log)

	// Use-case services, shared by the HTTP server and the scheduler
	contracts := usecase.NewContractService(contractRepo, identity, fleet, log)
	health := usecase.NewHealthService(contractRepo, log)

	// Periodic contract transitions (activation / completion)
	sched, err := scheduler.New(cfg.Scheduler, contracts, log)
	if err != nil {
		return err
	}
	if cfg.Scheduler.Enabled {
		sched.Start()
		defer sched.Stop()
	}

	// Create and run HTTP server; Run blocks until shutdown signal
	srv := server.New(cfg, log, contracts, health)
	return srv.Run()
}
