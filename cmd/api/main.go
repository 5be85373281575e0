package main

import (
	"log"

	"github.com/joho/godotenv"

	"mi-todoes/backend/internal/config"
	"mi-todoes/backend/internal/database"
	"mi-todoes/backend/internal/routes"
)

func main() {
	// .env はあれば読む (本番は環境変数を直接渡す想定)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal: Failed to load configuration: %v", err)
	}

	db := database.InitDB(cfg.DB)
	defer db.Close()

	r := routes.SetupRouter(db, cfg)

	log.Printf("Server listening on port %s...", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
