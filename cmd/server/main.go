package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/membership-site/internal/api"
	"github.com/99minutos/membership-site/internal/api/cookie"
	"github.com/99minutos/membership-site/internal/core/ports"
	"github.com/99minutos/membership-site/internal/core/service"
	"github.com/99minutos/membership-site/internal/core/validation"
	"github.com/99minutos/membership-site/internal/infrastructure/db/mongo"
	"github.com/99minutos/membership-site/internal/infrastructure/db/redis"
	"github.com/99minutos/membership-site/internal/infrastructure/hashing"
	"github.com/99minutos/membership-site/internal/pkg/config"
	"github.com/99minutos/membership-site/internal/view"
	"github.com/99minutos/membership-site/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("db", cfg.Mongo.Database).Msg("connected to mongodb")

	users := mongo.NewUserRepository(db)
	indexes := []mongo.IndexBuilder{users}

	var (
		sessions ports.SessionStore
		rdb      *goredis.Client
	)
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redis.NewSessionStore(rdb, cfg.Session.TTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
	default:
		mongoSessions := mongo.NewSessionStore(db, cfg.Session.TTL)
		indexes = append(indexes, mongoSessions)
		sessions = mongoSessions
		log.Info().Msg("sessions stored in mongodb")
	}

	if err := mongo.EnsureIndexes(ctx, indexes...); err != nil {
		return err
	}

	hasher := hashing.NewBcryptHasher(cfg.BcryptCost)
	authService := service.NewAuthService(users, sessions, hasher, log)
	userService := service.NewUserService(users, hasher, log)

	if cfg.Admin.Email != "" {
		email := validation.NormalizeEmail(cfg.Admin.Email)
		if err := userService.EnsureAdmin(ctx, cfg.Admin.Name, email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	e := api.NewRouter(api.Deps{
		Log:         log,
		AuthService: authService,
		UserService: userService,
		Validator:   validation.New(),
		Cookies: cookie.NewCodec(cookie.Options{
			Name:   cfg.Session.Cookie,
			Secret: cfg.Session.Secret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.IsProduction(),
		}),
		Renderer:   templates,
		Mongo:      db,
		Redis:      rdb,
		Production: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
