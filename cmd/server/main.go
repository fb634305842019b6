package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artseen/artseen/internal/api"
	"github.com/artseen/artseen/internal/auth"
	"github.com/artseen/artseen/internal/catalog"
	"github.com/artseen/artseen/internal/config"
	"github.com/artseen/artseen/internal/enrich"
	"github.com/artseen/artseen/internal/identify"
	"github.com/artseen/artseen/internal/store"
	"github.com/artseen/artseen/internal/worker"
)

func main() {
	cfg := config.Load()

	// Open SQLite.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// Initialize store.
	s, err := store.New(db)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reset artworks left mid-identification by a previous run.
	if n, err := s.ResetStaleIdentifying(ctx); err != nil {
		log.Printf("warning: reset stale identifying: %v", err)
	} else if n > 0 {
		log.Printf("reset %d stale identifying artworks to pending", n)
	}

	// Build pipeline dependencies.
	var sources []catalog.Source
	var enricher enrich.Enricher

	if cfg.Offline {
		log.Println("offline mode: using stub sources and enricher")
		sources = []catalog.Source{&catalog.StubSource{}}
		enricher = &enrich.StubEnricher{}
	} else {
		sources = []catalog.Source{
			catalog.NewAICSource(catalog.WithAICBaseURL(cfg.AICBaseURL)),
			catalog.NewMetSource(catalog.WithMetBaseURL(cfg.MetBaseURL)),
		}
		enricher = enrich.NewWikidataEnricher(enrich.WithEndpoint(cfg.WikidataURL))
	}

	pipeline := identify.NewPipeline(s, sources, enricher,
		identify.WithBonusRules(cfg.BonusRules),
		identify.WithSourceTimeout(cfg.SourceTimeout),
		identify.WithEnrichTimeout(cfg.EnrichTimeout),
	)

	// Start worker in background.
	w := worker.New(s, pipeline, cfg.WorkerInterval)
	go w.Start(ctx)

	// Start API server.
	verifier := auth.NewVerifier(cfg.AuthSecret)
	srv := api.New(s, pipeline, verifier, cfg.CORSOrigin)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		cancel()
		httpServer.Shutdown(context.Background())
	}()

	fmt.Printf("artseen server listening on http://localhost:%s\n", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
