package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lexdashapp/lexdash/internal/cache"
	"github.com/lexdashapp/lexdash/internal/config"
	"github.com/lexdashapp/lexdash/internal/database"
	"github.com/lexdashapp/lexdash/internal/engine"
	"github.com/lexdashapp/lexdash/internal/server"
	"github.com/lexdashapp/lexdash/pkg/logger"
)

func main() {
	var migrate bool
	flag.BoolVar(&migrate, "migrate", false, "Run database migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}

	if migrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to run migrations", "error", err)
		}
		log.Info("Database migrations completed successfully")
		return
	}

	eng := engine.New(log, engine.Options{
		StrictReferences: cfg.StrictReferences,
		DeadlineWindow:   cfg.DeadlineWindow,
	})

	snap, err := database.LoadSnapshot(db)
	if err != nil {
		log.Fatal("Failed to load state snapshot", "error", err)
	}
	eng.Restore(snap)

	cacheService := cache.NewCache(cfg.CacheSize, cfg.CacheTTL)

	srv := server.New(cfg, db, eng, cacheService, log)

	log.Info("Starting LexDash",
		"host", cfg.Host,
		"port", cfg.Port,
		"strict_references", cfg.StrictReferences,
		"clients", len(snap.Clients),
		"processes", len(snap.Processes),
	)

	if err := srv.Run(); err != nil {
		log.Fatal("Server failed to start", "error", err)
	}
}
