// Package main is the entry point for the YouTube Analyzer API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HMT1688/youtube-analyzer/internal/config"
	"github.com/HMT1688/youtube-analyzer/internal/database"
	"github.com/HMT1688/youtube-analyzer/internal/handlers"
	"github.com/HMT1688/youtube-analyzer/internal/router"
	"github.com/HMT1688/youtube-analyzer/internal/services/captions"
	"github.com/HMT1688/youtube-analyzer/internal/services/media"
	"github.com/HMT1688/youtube-analyzer/internal/services/transcriber"
	"github.com/HMT1688/youtube-analyzer/internal/youtube"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 YouTube Analyzer API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, max_videos=%d, gin_mode=%s", cfg.Port, cfg.MaxVideos, cfg.GinMode)
	log.Printf("🔧 yt-dlp path: %s", cfg.YtDlpPath)
	log.Printf("🔧 ffmpeg path: %s", cfg.FFmpegPath)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database (optional snapshot cache)
	var db *database.DB
	if cfg.DatabaseURL != "" {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✅ Database connected (snapshot cache enabled)")

		if err := db.RunMigrations("migrations"); err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
	} else {
		log.Println("⚠️  No DATABASE_URL set — running without the snapshot cache")
	}

	// Step 3: Create Services
	store, err := youtube.NewClient(context.Background(), cfg.YouTubeAPIKey)
	if err != nil {
		log.Fatalf("❌ Failed to create YouTube client: %v", err)
	}

	streams := media.NewStreamResolver(cfg.YtDlpPath)

	whisper := transcriber.NewClient(cfg.OpenAIAPIKey)
	generator := transcriber.NewService(streams, whisper)
	if cfg.OpenAIAPIKey != "" {
		log.Println("✅ Caption generation enabled (Whisper API)")
	} else {
		log.Println("⚠️  Caption generation disabled (set OPENAI_API_KEY to enable)")
	}

	captionResolver := captions.NewResolver(store, captions.NewTrackFetcher(cfg.YtDlpPath), generator)

	pipeline := media.NewPipeline(
		streams,
		media.NewFFmpegTranscoder(cfg.FFmpegPath),
		cfg.MaxConcurrentTranscodes,
		cfg.DownloadTimeout,
	)
	log.Printf("✅ Download pipeline ready (max %d concurrent transcodes)", cfg.MaxConcurrentTranscodes)

	// Step 4: Setup HTTP Router
	// A plain nil keeps the handler's cache check meaningful; assigning a
	// nil *database.DB into the interface would make it non-nil.
	var cache handlers.SnapshotCache
	if db != nil {
		cache = db
	}
	h := handlers.NewHandler(store, cache, captionResolver, pipeline, Version, cfg.MaxVideos, cfg.CacheTTL)
	r := router.Setup(h, cfg.RateLimitPerHour, cfg.AllowedOrigins)

	// Step 5: Start the HTTP Server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Downloads stream large files; give writes the same budget as the
		// pipeline itself.
		WriteTimeout: cfg.DownloadTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Periodic snapshot cleanup keeps abandoned channels from piling up.
	var stopCleanup chan struct{}
	if db != nil {
		stopCleanup = make(chan struct{})
		go snapshotCleanup(db, cfg.CacheTTL, stopCleanup)
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	if stopCleanup != nil {
		close(stopCleanup)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}

// snapshotCleanup deletes cache rows well past the TTL once an hour.
func snapshotCleanup(db *database.DB, ttl time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := db.DeleteStaleSnapshots(ctx, 24*ttl)
			cancel()
			if err != nil {
				log.Printf("⚠️  Snapshot cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("🧹 Removed %d stale channel snapshots", n)
			}
		}
	}
}
