package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"steam-catalog/internal/config"
	"steam-catalog/internal/database"
	"steam-catalog/internal/services"
	"steam-catalog/internal/services/steam"
)

var (
	appid    = flag.Uint("appid", 0, "appid to fetch workshop items for (required)")
	maxPages = flag.Int("max-pages", 0, "stop after this many pages (0 = all)")
	throttle = flag.Duration("throttle", time.Second, "delay between pages")
)

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

	fetcher := services.NewWorkshopFetcher(db, steam.NewClient(cfg.SteamAPIKey))

	cursor := services.FirstWorkshopCursor
	pages := 0
	for {
		next, err := fetcher.FetchPage(context.Background(), *appid, cursor)
		if err != nil {
			log.Fatalf("Workshop fetch failed for appid %d: %v", *appid, err)
		}
		pages++
		if next == "" {
			break
		}
		if *maxPages > 0 && pages >= *maxPages {
			log.Printf("Stopping after %d pages, next cursor: %s", pages, next)
			break
		}
		cursor = next
		time.Sleep(*throttle)
	}

	log.Printf("Workshop ingest done for appid %d: %d pages", *appid, pages)
}
