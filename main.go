// @title KhmerLearn Backend API
// @version 1.0
// @description Backend server for the Khmer homophone learning platform.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"khmerlearn_backend/internal/app"
	"khmerlearn_backend/internal/config"
	"khmerlearn_backend/pkg/database"
	"khmerlearn_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *migrateOnly {
		if _, err := database.InitDB(&cfg.Database); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration completed, exiting")
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
