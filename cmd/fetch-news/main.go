package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"steam-catalog/internal/config"
	"steam-catalog/internal/database"
	"steam-catalog/internal/services"
	"steam-catalog/internal/services/steam"
)

var appid = flag.Uint("appid", 0, "appid to fetch news for (required)")

func main() {
	flag.Parse()
	if *appid == 0 {
		log.Fatal("-appid is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	fetcher := services.NewNewsFetcher(db, steam.NewClient(cfg.SteamAPIKey))
	if err := fetcher.Fetch(context.Background(), *appid); err != nil {
		log.Fatalf("News fetch failed for appid %d: %v", *appid, err)
	}
	log.Printf("News stored for appid %d", *appid)
}
