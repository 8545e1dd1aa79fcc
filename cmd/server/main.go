// Command server runs the Rummikube game service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/rummikube/internal/auth"
	"github.com/jason-s-yu/rummikube/internal/cache"
	"github.com/jason-s-yu/rummikube/internal/config"
	"github.com/jason-s-yu/rummikube/internal/database"
	"github.com/jason-s-yu/rummikube/internal/game"
	"github.com/jason-s-yu/rummikube/internal/notify"
	"github.com/jason-s-yu/rummikube/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration.")
	}
	cfg.ConfigureLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped with error.")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart.")
	}
	signer, err := auth.NewSigner(secret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	manager := game.NewManager(cfg.Rules, logger)
	checks := map[string]server.HealthCheck{}

	var repo database.Repository
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pg, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		repo = pg
	case config.DriverSQLite:
		lite, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return err
		}
		repo = lite
	}
	if repo != nil {
		defer repo.Close()
		manager.History = repo
		checks[cfg.DBDriver] = repo.Ping
		logger.WithField("driver", cfg.DBDriver).Info("Database ready.")
	}

	if cfg.RedisAddr != "" {
		client, closeRedis := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer closeRedis()
		store := cache.NewStore(client, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis not reachable at startup.")
		}
		manager.Store = store
		manager.Recorder = store
		checks["redis"] = store.Ping
		logger.WithField("addr", cfg.RedisAddr).Info("Redis session store enabled.")
	}

	if cfg.NATSURL != "" {
		nc, err := notify.Connect(cfg.NATSURL)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, game results will not be published.")
		} else {
			defer nc.Drain()
			manager.OnGameEnd = notify.NewPublisher(nc, logger).OnGameEnd
			checks["nats"] = func(context.Context) error {
				if !nc.IsConnected() {
					return errors.New("nats: not connected")
				}
				return nil
			}
		}
	}

	srv := server.New(manager, signer, repo, logger)
	srv.AllowOrigins(cfg.WSOrigins...)
	for name, check := range checks {
		srv.AddHealthCheck(name, check)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("Listening.")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
