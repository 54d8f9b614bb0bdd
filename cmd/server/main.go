package main // Entry point for the team-manager API server

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/spikeside/team-manager/internal/config"
	"github.com/spikeside/team-manager/internal/database"
	"github.com/spikeside/team-manager/internal/handler"
	"github.com/spikeside/team-manager/internal/mailer"
	"github.com/spikeside/team-manager/internal/middleware"
	"github.com/spikeside/team-manager/internal/queue"
	"github.com/spikeside/team-manager/internal/repository"
	"github.com/spikeside/team-manager/internal/router"
	"github.com/spikeside/team-manager/internal/service"
	"github.com/spikeside/team-manager/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	avatars, err := storage.NewMinioClient(
		cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}
	if err := avatars.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("object storage: %v", err)
	}

	smtp := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	notifier := service.NewNotifier(smtp, cfg.MailWorkers, cfg.MailQueueSize, cfg.AppBaseURL)
	defer notifier.Close()

	// Audit trail consumer; runs its own reconnect loop forever.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	sessions := repository.NewSessionRepo(db)
	resets := repository.NewResetTokenRepo(db)
	teams := repository.NewTeamRepo(db)

	rdb := config.NewRedisClient() // nil disables rate limiting and the stats cache
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and stats cache disabled")
	}

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, db, users, roles, sessions, resets, notifier),
		Profile: handler.NewProfileHandler(users, avatars),
		Teams:   handler.NewTeamHandler(teams, users, notifier),
		Stats:   handler.NewStatsHandler(users, teams, rdb),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
