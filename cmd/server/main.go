package main

import (
	"context"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/lifeofpease/matchmaking-api/internal/api"
	mongodb "github.com/lifeofpease/matchmaking-api/internal/infrastructure/db/mongo"
	"github.com/lifeofpease/matchmaking-api/internal/infrastructure/db/redis"
	"github.com/lifeofpease/matchmaking-api/internal/infrastructure/notify"
	"github.com/lifeofpease/matchmaking-api/internal/pkg/config"
	"github.com/lifeofpease/matchmaking-api/pkg/logger"
)

// @title           Matchmaking API
// @version         1.0
// @description     Therapist/client matchmaking platform: discovery search, connection requests and admin moderation.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	mailer := notify.NewSMTPMailer(notify.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := notify.NewDispatcher(cfg.Notify.Workers, mailer, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, dispatcher, api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.TokenTTLHours) * time.Hour,
	}, log)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func ensureIndexes(ctx context.Context, db *mongodriver.Database) error {
	for _, ix := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{
		mongodb.NewUserRepository(db),
		mongodb.NewConnectionRepository(db),
		mongodb.NewArticleRepository(db),
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
