package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/talkroom/talkroom-api/internal/config"
	"github.com/talkroom/talkroom-api/internal/database"
	"github.com/talkroom/talkroom-api/internal/handler"
	"github.com/talkroom/talkroom-api/internal/middleware"
	"github.com/talkroom/talkroom-api/internal/models"
	"github.com/talkroom/talkroom-api/internal/repository"
	"github.com/talkroom/talkroom-api/internal/router"
	"github.com/talkroom/talkroom-api/internal/service"
	cloud "github.com/talkroom/talkroom-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Topic{}, &models.Room{}, &models.Message{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient == nil {
		logger.Warn().Msg("redis not configured, search cache disabled")
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	events := service.NewNATSPublisher(natsConn, "talkroom.activity", logger)

	searchService := service.NewSearchService(roomRepo, topicRepo, messageRepo, redisClient, cfg.SearchCacheTTL, logger)
	roomService := service.NewRoomService(roomRepo, messageRepo, validate, events, searchService, logger)
	messageService := service.NewMessageService(messageRepo, roomRepo, validate, events, searchService, logger)
	userService := service.NewUserService(userRepo, roomRepo, messageRepo, topicRepo, uploader, validate, searchService, cfg.AvatarMaxSizeMB, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	roomHandler := handler.NewRoomHandler(roomService, messageService, logger)
	messageHandler := handler.NewMessageHandler(messageService, logger)
	userHandler := handler.NewUserHandler(userService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:    authHandler,
		SearchHandler:  searchHandler,
		RoomHandler:    roomHandler,
		MessageHandler: messageHandler,
		UserHandler:    userHandler,
		JWTRequired:    middleware.JWTProtected(cfg.JWTSecret),
		JWTOptional:    middleware.JWTOptional(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
