// api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"codingcats/api/analytics"
	"codingcats/api/config"
	"codingcats/api/database"
	"codingcats/api/handlers"
	"codingcats/api/store"
	"codingcats/api/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	utils.InitLogger("codingcats-api", cfg.Env)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// --- PostgreSQL (dashboard accounts, optionally the visit log) ---
	var pg *database.DBClient
	if cfg.DatabaseURL != "" {
		pg, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL")
		}
		defer pg.Close()
	}

	// --- Visit log store ---
	var logStore analytics.Store
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		kv := store.NewPostgresKV(pg.DB)
		if err := kv.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare kv_store")
		}
		logStore = kv
	case config.BackendRedis:
		rc, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis")
		}
		defer rc.Close()
		logStore = store.NewRedisKV(rc.Client, cfg.RedisPrefix)
	default:
		log.Warn().Msg("Using in-memory visit log; data is lost on restart")
		logStore = store.NewMemoryStore()
	}

	// --- ClickHouse (optional visit mirror) ---
	var warehouse handlers.VisitWarehouse
	if cfg.ClickHouse.Enabled() {
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize ClickHouse")
		}
		defer ch.Close()
		sink := store.NewClickHouseSink(ch)
		if err := sink.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare visit_events")
		}
		warehouse = sink
	}

	// --- GeoIP (optional country enrichment) ---
	var geo analytics.CountryResolver
	if cfg.GeoIPCityMMDB != "" {
		g, err := utils.NewGeoIP(cfg.GeoIPCityMMDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open GeoIP database")
		}
		defer g.Close()
		geo = g
	}

	// --- Handlers ---
	var authHandlers *handlers.AuthHandlers
	var jwtManager *utils.JWTManager
	if pg != nil {
		userStore := store.NewUserStore(pg.DB)
		if err := userStore.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare users table")
		}
		jwtManager = utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
		authHandlers = handlers.NewAuthHandlers(userStore, jwtManager, cfg.CookieSecure)
	}

	r := handlers.NewRouter(handlers.RouterConfig{
		Analytics:     handlers.NewAnalyticsHandlers(logStore, warehouse, geo, cfg.CookieSecure),
		Auth:          authHandlers,
		Cards:         handlers.NewCardHandlers(cfg.CardCount, cfg.FrameInterval, cfg.FrontendOrigin),
		APIKey:        cfg.APIKey,
		JWT:           jwtManager,
		AllowedOrigin: cfg.FrontendOrigin,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageBackend).Msg("CodingCats API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
