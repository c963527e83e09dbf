package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"zust-route-service/internal/adapters/cache"
	"zust-route-service/internal/adapters/lock"
	"zust-route-service/internal/adapters/ors"
	"zust-route-service/internal/adapters/repositories"
	"zust-route-service/internal/adapters/routestore"
	"zust-route-service/internal/api"
	"zust-route-service/internal/config"
	"zust-route-service/internal/platform/db"
	"zust-route-service/internal/platform/obs"
	"zust-route-service/internal/ports"
	"zust-route-service/internal/services"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, SQLite, ORS, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	if err := obs.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal(err)
	}
	obs.Register()

	zonesDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer zonesDB.Close()

	// Snapped positions never change for a coordinate, so they are kept across restarts.
	var snapCache ports.SnapCache
	if cfg.SnapCachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SnapCachePath), 0o755); err != nil {
			log.Fatal(err)
		}
		cacheDB, err := db.OpenSQLite(cfg.SnapCachePath)
		if err != nil {
			log.Fatal(err)
		}
		defer cacheDB.Close()

		c := cache.NewSqliteSnapCache(cacheDB)
		if err := c.InitSchema(context.Background()); err != nil {
			log.Fatal(err)
		}
		snapCache = c
	}

	client, err := ors.NewClient(cfg.ORS.APIKey, ors.Options{
		BaseURL:            cfg.ORS.BaseURL,
		Timeout:            cfg.ORS.Timeout,
		SnapTimeout:        cfg.ORS.SnapTimeout,
		MaxDurationSeconds: cfg.ORS.MaxDurationSeconds,
		SnapRadiusMeters:   cfg.ORS.SnapRadiusMeters,
		RatePerMinute:      cfg.ORS.RatePerMinute,
		SnapCache:          snapCache,
	})
	if err != nil {
		log.Fatal(err)
	}

	var locker ports.ZoneLocker = lock.NewLocalZoneLocker()
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisLocker, err := lock.NewRedisZoneLockerFromURL(ctx, cfg.RedisURL, cfg.ZoneLockTTL)
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		defer redisLocker.Close()
		locker = redisLocker
	}

	store := routestore.NewFileRouteStore(cfg.RoutesDir)
	svc := &services.RouteService{
		Zones:           repositories.NewSQLZoneRepository(zonesDB),
		Optimizer:       client,
		Directions:      client,
		Snapper:         client,
		Store:           store,
		Offsets:         store,
		Locker:          locker,
		SnapConcurrency: cfg.SnapConcurrency,
	}

	router := api.NewRouter(svc, store)

	// Route generation is synchronous; large zones with a cold snap cache take minutes.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
