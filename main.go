package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"steam-catalog/internal/api"
	"steam-catalog/internal/config"
	"steam-catalog/internal/database"
	"steam-catalog/internal/jobs"
	"steam-catalog/internal/services"
	"steam-catalog/internal/services/steam"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	client := steam.NewClient(cfg.SteamAPIKey)

	// Job queue: per-(kind, appid) uniqueness plus a shared decay limiter
	// spacing out Steam calls.
	queue := jobs.NewQueue(jobs.NewMemoryLockStore(), jobs.NewDecayLimiter(time.Duration(cfg.DecaySeconds)*time.Second))

	detailsFetcher := services.NewDetailsFetcher(db, client)
	newsFetcher := services.NewNewsFetcher(db, client)
	workshopFetcher := services.NewWorkshopFetcher(db, client)

	queue.Register(jobs.KindDetails, func(ctx context.Context, job jobs.Job) error {
		return detailsFetcher.Fetch(ctx, job.Appid)
	})
	queue.Register(jobs.KindNews, func(ctx context.Context, job jobs.Job) error {
		return newsFetcher.Fetch(ctx, job.Appid)
	})
	// Workshop scans are opt-in; with no handler registered the trigger
	// endpoint reports the kind as unavailable.
	if cfg.EnableWorkshopScanning {
		queue.Register(jobs.KindWorkshop, func(ctx context.Context, job jobs.Job) error {
			next, err := workshopFetcher.FetchPage(ctx, job.Appid, job.Cursor)
			if err != nil {
				return err
			}
			if next != "" {
				if derr := queue.Dispatch(jobs.Job{Kind: jobs.KindWorkshop, Appid: job.Appid, Cursor: next}); derr != nil {
					log.Printf("[workshop] follow-up page dispatch failed for appid %d: %v", job.Appid, derr)
				}
			}
			return nil
		})
	}

	hub := api.NewHub()
	go hub.Run()
	queue.OnEvent(hub.BroadcastEvent)

	queue.Start(cfg.QueueWorkers)
	defer queue.Stop()

	importer := services.NewImporter(db, client, queue, cfg.Refresh, cfg.EnableNewsScanning)

	// Periodic full import pass.
	importCtx, cancelImport := context.WithCancel(context.Background())
	defer cancelImport()
	go runImportLoop(importCtx, importer, cfg.ImportInterval)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", hub.ServeWS)

	apiGroup := r.Group("/api/v1")
	api.SetupRoutes(apiGroup, db, queue, importer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func runImportLoop(ctx context.Context, importer *services.Importer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := importer.Import(ctx); err != nil {
				log.Printf("[importer] scheduled pass failed: %v", err)
			}
		}
	}
}
