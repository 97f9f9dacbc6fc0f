// Package main is the entrypoint for the skater profiles API server.
//
// @title                       Skater Profiles API
// @version                     1.0
// @description                 Skater registration, login, profile management and admin review.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/skatepark/skater-profiles/internal/api"
	"github.com/skatepark/skater-profiles/internal/api/handler"
	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/service"
	mongostore "github.com/skatepark/skater-profiles/internal/infrastructure/db/mongo"
	pgstore "github.com/skatepark/skater-profiles/internal/infrastructure/db/postgres"
	redisstore "github.com/skatepark/skater-profiles/internal/infrastructure/db/redis"
	"github.com/skatepark/skater-profiles/internal/infrastructure/queue"
	"github.com/skatepark/skater-profiles/internal/infrastructure/storage"
	"github.com/skatepark/skater-profiles/internal/pkg/config"
	"github.com/skatepark/skater-profiles/internal/pkg/token"
	"github.com/skatepark/skater-profiles/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "skater-profiles",
	})

	// Initialize Postgres and apply the schema
	pool, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pgstore.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	log.Info().Msg("connected to postgres")

	// Initialize MongoDB audit trail
	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "skater-profiles",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	auditRepo := mongostore.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create audit indexes")
	}
	log.Info().Msg("connected to mongodb")

	// Initialize Redis
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()
	log.Info().Msg("connected to redis")

	photos, err := storage.NewPhotoStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare photo directory")
	}

	// Initialize services
	skaterRepo := pgstore.NewSkaterRepository(pool)
	revocations := redisstore.NewRevocationStore(rdb)
	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, log.With().Str("component", "audit").Logger())
	dispatcher.Start(ctx)

	skaterService := service.NewSkaterService(skaterRepo, photos, codec, revocations, dispatcher, log)

	if email := cfg.Auth.BootstrapAdminEmail; email != "" {
		bootstrapAdmin(ctx, skaterRepo, email, log)
	}

	e := api.NewRouter(api.Dependencies{
		Service:     skaterService,
		Tokens:      codec,
		Revocations: revocations,
		Admins:      skaterRepo,
		Health: map[string]handler.DependencyCheck{
			"postgres": pool.Ping,
			"mongodb":  func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		PhotoDir:       photos.Dir(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Log:            log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Wait()
}

// bootstrapAdmin grants an active admin role to an already registered
// skater. A missing account is only logged so the first admin can register
// and be promoted on the next start.
func bootstrapAdmin(ctx context.Context, repo *pgstore.SkaterRepository, email string, log zerolog.Logger) {
	skater, err := repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrSkaterNotFound) {
		log.Warn().Str("email", email).Msg("bootstrap admin not registered yet")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("bootstrap admin lookup failed")
		return
	}
	if err := repo.GrantAdmin(ctx, skater.ID, true); err != nil {
		log.Error().Err(err).Int64("skater_id", skater.ID).Msg("bootstrap admin grant failed")
		return
	}
	log.Info().Int64("skater_id", skater.ID).Msg("bootstrap admin granted")
}
