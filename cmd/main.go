package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bistro/internal/api"
	"bistro/internal/cart"
	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/dialogue"
	"bistro/internal/llm"
	"bistro/internal/menu"
	"bistro/internal/monitoring"
	"bistro/internal/orders"
	"bistro/internal/session"
	"bistro/internal/transcript"
	"bistro/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

var (
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	issueToken  = flag.String("issue-token", "", "Print a bearer token for user[:email] and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	if *issueToken != "" {
		printToken(cfg, *issueToken)
		return
	}

	if cfg.Auth.JWTSecret == "" {
		log.Println("Warning: auth.jwt_secret is empty, only anonymous access is available")
	}
	if strings.ToLower(cfg.LogLevel) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := monitoring.NewMonitor()
	metrics := monitoring.NewMetrics()

	// Initialize database
	db, err := initializeDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	monitor.RecordComponentStatus("database", map[string]interface{}{"driver": cfg.Database.Driver, "healthy": true})

	// Domain services
	store := menu.NewStore(db)
	catalog := menu.FallbackCatalog{Primary: store}
	carts := cart.NewService(db, catalog, cart.Pricing{
		TaxRate:     cfg.Pricing.TaxRate,
		DeliveryFee: cfg.Pricing.DeliveryFee,
	})
	transcripts := transcript.NewStore(db)
	recorder := transcript.NewRecorder(transcripts, cfg.Conversation.TranscriptQueue, func(err error) {
		log.Printf("transcript: failed to persist turn: %v", err)
		metrics.TranscriptFailed(err)
	})

	// Language model for voice classification, menu chat and image search
	provider := initializeLLM(ctx, cfg, monitor)
	var classifier dialogue.CategoryClassifier
	if provider != nil {
		classifier = llm.NewClassifier(provider, cfg.LLM.Timeout)
	}

	sessions := session.NewManager(session.Dependencies{
		Catalog:       catalog,
		CartFor:       func(key string) dialogue.CartSink { return carts.SinkFor(key) },
		Conversations: transcripts,
		Transcript:    recorder,
		Classifier:    classifier,
		Observer:      metrics,
	}, cfg.Conversation.IdleTimeout)
	go func() {
		if err := sessions.Run(ctx, cfg.Conversation.SweepInterval); err != nil {
			log.Printf("session: sweeper stopped: %v", err)
		}
	}()

	metrics.TrackGauge("bistro_active_conversations", "Live assistant conversations", func() float64 {
		return float64(sessions.Count())
	})
	metrics.TrackGauge("bistro_transcript_queue_depth", "Transcript turns waiting to be written", func() float64 {
		return float64(recorder.Pending())
	})

	// Initialize API server
	services := api.Services{
		Menu:        store,
		Catalog:     catalog,
		Carts:       carts,
		Orders:      orders.NewService(db, carts),
		Users:       users.NewService(db, cfg.Auth.AdminEmails),
		Sessions:    sessions,
		Transcripts: transcripts,
		Metrics:     metrics,
		Monitor:     monitor,
	}
	if provider != nil {
		services.Chat = llm.NewMenuChat(provider, cfg.LLM.Timeout)
		services.Dishes = llm.NewDishRecognizer(provider, cfg.LLM.Timeout)
	}
	srv := api.NewServer(cfg.Server, cfg.Auth, services)

	// Start metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg.Metrics, metrics)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Metrics server shutdown error: %v", err)
			}
		}
		if err := recorder.Close(shutdownCtx); err != nil {
			log.Printf("Transcript writer did not drain: %v", err)
		}

		cancel() // Cancel main context
	}()

	// Start server
	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("API server error: %v", err)
	}
	<-ctx.Done()
}

func initializeDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogMode)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.Database.SeedMenu {
		n, err := menu.NewStore(db).Seed(ctx, false)
		if err != nil {
			db.Close()
			return nil, err
		}
		if n > 0 {
			log.Printf("Seeded menu with %d items", n)
		}
	}
	return db, nil
}

// initializeLLM returns nil when no provider is configured; voice
// conversations then rely on keywords alone and the menu chat and image
// search routes are unavailable
func initializeLLM(ctx context.Context, cfg *config.Config, monitor *monitoring.Monitor) llm.Provider {
	provider, err := llm.New(cfg.LLM)
	if errors.Is(err, llm.ErrDisabled) {
		monitor.RecordComponentStatus("llm", map[string]interface{}{"provider": "none"})
		return nil
	}
	if err != nil {
		log.Printf("llm: provider disabled: %v", err)
		monitor.RecordComponentStatus("llm", map[string]interface{}{"provider": cfg.LLM.Provider, "healthy": false, "error": err.Error()})
		return nil
	}

	status := map[string]interface{}{"provider": cfg.LLM.Provider, "model": cfg.LLM.Model, "healthy": true}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.LLM.Timeout)
	defer cancel()
	if err := llm.Ping(pingCtx, provider); err != nil {
		// keep the provider; it may recover
		log.Printf("llm: provider check failed: %v", err)
		status["healthy"] = false
		status["error"] = err.Error()
	}
	monitor.RecordComponentStatus("llm", status)

	return provider
}

func startMetricsServer(cfg config.MetricsConfig, metrics *monitoring.Metrics) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(cfg.Path, gin.WrapH(metrics.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: metricsRouter,
	}

	go func() {
		log.Printf("Starting metrics server on port %d", cfg.Port)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
		}
	}()
	return metricsServer
}

func printToken(cfg *config.Config, spec string) {
	userID, email, _ := strings.Cut(spec, ":")
	tok, err := api.IssueToken(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, userID, email, "")
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(tok)
}
