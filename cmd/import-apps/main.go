package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"steam-catalog/internal/config"
	"steam-catalog/internal/database"
	"steam-catalog/internal/jobs"
	"steam-catalog/internal/services"
	"steam-catalog/internal/services/steam"
)

var (
	fetchDue  = flag.Bool("fetch", false, "fetch details inline for apps whose data is stale")
	withNews  = flag.Bool("news", false, "also fetch news for stale apps (requires -fetch)")
	throttle  = flag.Duration("throttle", time.Second, "delay between inline fetches")
)

// inlineRunner executes due jobs synchronously instead of queueing them, so
// the one-shot command finishes with everything done.
type inlineRunner struct {
	details *services.DetailsFetcher
	news    *services.NewsFetcher
	delay   time.Duration
}

func (r *inlineRunner) Dispatch(job jobs.Job) error {
	var err error
	switch job.Kind {
	case jobs.KindDetails:
		err = r.details.Fetch(context.Background(), job.Appid)
	case jobs.KindNews:
		err = r.news.Fetch(context.Background(), job.Appid)
	}
	if err != nil {
		log.Printf("[import-apps] %s fetch failed for appid %d: %v", job.Kind, job.Appid, err)
	}
	time.Sleep(r.delay)
	return nil
}

// discardDispatcher only counts what would have been dispatched.
type discardDispatcher struct{}

func (discardDispatcher) Dispatch(jobs.Job) error { return nil }

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	client := steam.NewClient(cfg.SteamAPIKey)

	var dispatcher jobs.Dispatcher = discardDispatcher{}
	if *fetchDue {
		dispatcher = &inlineRunner{
			details: services.NewDetailsFetcher(db, client),
			news:    services.NewNewsFetcher(db, client),
			delay:   *throttle,
		}
	}

	importer := services.NewImporter(db, client, dispatcher, cfg.Refresh, *fetchDue && *withNews)

	start := time.Now()
	result, err := importer.Import(context.Background())
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	label := "due"
	if *fetchDue {
		label = "fetched"
	}
	log.Printf("Import finished in %s: %d created, %d updated, %d skipped, %d %s",
		time.Since(start).Round(time.Second), result.Created, result.Updated, result.Skipped, result.Dispatched, label)
}
