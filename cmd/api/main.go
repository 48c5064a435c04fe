package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/config"
	"github.com/tracktivity/tracktivity-api/internal/database"
	"github.com/tracktivity/tracktivity-api/internal/handler"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/observability"
	"github.com/tracktivity/tracktivity-api/internal/repository"
	"github.com/tracktivity/tracktivity-api/internal/router"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
	"github.com/tracktivity/tracktivity-api/pkg/cloudinary"
	"github.com/tracktivity/tracktivity-api/pkg/oauth"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("redis not configured, catalog cache and cross-node fan-out disabled")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn == nil {
		logger.Warn().Msg("nats not configured, snapshot fan-out limited to redis")
	}

	storage, err := cloudinary.New(cloudinary.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cloudinary")
	}

	oauthClient, err := oauth.New(oauth.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		TokenURL:     cfg.OAuthTokenURL,
		BasicInfoURL: cfg.OAuthBasicInfoURL,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize oauth client")
	}

	validate := validator.New()
	observability.RegisterMetrics()

	activityRepo := repository.NewActivityRepository(db)
	pendingRepo := repository.NewPendingActivityRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	realtimeSvc := service.NewRealtimeService(activityRepo, pendingRepo, redisClient, "tracktivity:realtime", natsConn, logger)
	realtimeSvc.Start(rootCtx)

	uploadSvc := service.NewUploadService(storage, cfg.MaxUploadMB, logger)
	catalogSvc := service.NewCatalogService(activityRepo, redisClient, cfg.CatalogCacheTTL, realtimeSvc, validate, logger)
	submissionSvc := service.NewSubmissionService(pendingRepo, uploadSvc, realtimeSvc, validate, logger)
	reviewSvc := service.NewReviewService(pendingRepo, realtimeSvc, validate, logger)
	profileSvc := service.NewProfileService(profileRepo, uploadSvc, logger)
	authSvc := service.NewAuthService(oauthClient, cfg.JWTSecret, cfg.SessionTTL, logger)
	seedSvc := service.NewSeedService(catalogSvc, !cfg.IsProduction(), cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
			}
			return utils.SendError(c, code, err.Error())
		},
	})

	middleware.Register(app, middleware.Config{
		Logger:            &logger,
		SessionCookieName: cfg.SessionCookieName,
		JWTSecret:         cfg.JWTSecret,
	})

	router.Register(app, router.Dependencies{
		Config:           cfg,
		Auth:             handler.NewAuthHandler(authSvc, cfg, validate, logger),
		Activities:       handler.NewActivityHandler(catalogSvc, logger),
		AdminActivities:  handler.NewAdminActivityHandler(catalogSvc, uploadSvc, logger),
		Submissions:      handler.NewSubmissionHandler(submissionSvc, logger),
		AdminSubmissions: handler.NewAdminSubmissionHandler(reviewSvc, logger),
		Profiles:         handler.NewProfileHandler(profileSvc, logger),
		Realtime:         handler.NewRealtimeHandler(realtimeSvc, logger),
		Seed:             handler.NewSeedHandler(seedSvc, logger),
	})

	go func() {
		<-rootCtx.Done()
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
		if natsConn != nil {
			natsConn.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting server")
	if err := app.Listen(cfg.HTTPAddress()); err != nil {
		logger.Fatal().Err(err).Msg("server terminated")
	}
}
