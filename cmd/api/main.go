// @title                       User Admin API
// @version                     1.0
// @description                 User administration: accounts, role assignment and API tokens.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
// @securityDefinitions.apikey  ApiTokenAuth
// @in                          header
// @name                        X-API-Token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/api"
	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/config"
	mongodb "github.com/99minutos/user-admin/internal/infrastructure/db/mongo"
	"github.com/99minutos/user-admin/internal/infrastructure/db/postgres"
	redisdb "github.com/99minutos/user-admin/internal/infrastructure/db/redis"
	"github.com/99minutos/user-admin/internal/infrastructure/http/handlers"
	"github.com/99minutos/user-admin/internal/infrastructure/queue"
	"github.com/99minutos/user-admin/internal/infrastructure/seed"
	"github.com/99minutos/user-admin/internal/pkg/password"
	"github.com/99minutos/user-admin/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load(zerolog.New(os.Stderr).With().Timestamp().Logger())
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "user-admin",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres ---
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("postgres migrate")
	}

	// --- MongoDB (audit trail) ---
	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connect")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	auditRepo := mongodb.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb indexes")
	}

	// --- Redis (listing cache) ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()

	listingCache := redisdb.NewListingCache(rdb, cfg.Redis.ListingTTL, log)

	// The dispatcher outlives the signal context so queued events are written
	// after the HTTP server has stopped accepting requests.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, auditRepo, log)
	dispatcher.Start(auditCtx)

	// --- Core services ---
	store := postgres.NewStore(db)
	hasher := password.NewHasher(cfg.BcryptCost)
	userService := service.NewUserService(store, hasher, dispatcher, listingCache, log)
	queryService := service.NewUserQueryService(store, listingCache, cfg.ProtectedUsername, log)
	authService := service.NewAuthService(store, hasher, cfg.JWTSecret, cfg.TokenTTL)

	// --- Seeding ---
	seeder := seed.NewSeeder(userService, store.Users(), log)
	if cfg.Bootstrap.Username != "" {
		err := seeder.EnsureAdmin(ctx, seed.Admin{
			Username: cfg.Bootstrap.Username,
			Email:    cfg.Bootstrap.Email,
			Password: cfg.Bootstrap.Password,
			Role:     cfg.AdminRole,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrap admin")
		}
	}
	if cfg.SeedUsersPath != "" {
		if err := seeder.SeedFromFile(ctx, cfg.SeedUsersPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.SeedUsersPath).Msg("seed users")
		}
	}

	e := api.NewRouter(api.Deps{
		Writer:    userService,
		Reader:    queryService,
		Auth:      authService,
		JWTSecret: cfg.JWTSecret,
		AdminRole: cfg.AdminRole,
		HealthChecks: []handlers.Check{
			handlers.PostgresCheck(db),
			handlers.MongoCheck(mongoDB),
			handlers.RedisCheck(rdb),
		},
		Logger: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	stopAudit()
	dispatcher.Wait()
	log.Info().Msg("server exited")
}
