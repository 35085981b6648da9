package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gpubsub "cloud.google.com/go/pubsub/v2"
	"github.com/campuschat/notification-service/internal/application/announce"
	"github.com/campuschat/notification-service/internal/application/audience"
	"github.com/campuschat/notification-service/internal/application/chat"
	"github.com/campuschat/notification-service/internal/application/dispatch"
	"github.com/campuschat/notification-service/internal/application/welcome"
	"github.com/campuschat/notification-service/internal/config"
	"github.com/campuschat/notification-service/internal/infrastructure/dedupe"
	"github.com/campuschat/notification-service/internal/infrastructure/dynamo"
	"github.com/campuschat/notification-service/internal/infrastructure/fcm"
	transporthttp "github.com/campuschat/notification-service/internal/transport/http"
	transportpubsub "github.com/campuschat/notification-service/internal/transport/pubsub"
	"github.com/campuschat/notification-service/internal/trigger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	log := newLogger(cfg)

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, log)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	announcementRepo := dynamo.NewAnnouncementRepo(dynamoClient, cfg.DynamoTables.Announcements)
	messageRepo := dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.ChatMessages)

	// FCM is the delivery channel; without it there is nothing to run.
	fcmClient, err := fcm.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize FCM client")
	}

	// Already-notified markers (optional — no Redis means no dedupe).
	var markers trigger.Markers
	if cfg.RedisAddr != "" {
		rdb, err := dedupe.NewClient(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to Redis")
		}
		defer rdb.Close()
		markers = dedupe.NewMarkers(rdb, time.Duration(cfg.MarkerTTLDays)*24*time.Hour)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, already-notified markers disabled")
	}

	dispatcher := dispatch.NewService(fcmClient, log)
	resolver := audience.NewResolver(userRepo, audience.Config{
		TenantScoped: cfg.TenantScoped,
		DefaultAppID: cfg.DefaultAppID,
	}, log)

	announceSvc := announce.NewService(announce.ServiceDeps{
		Audience:   resolver,
		Dispatcher: dispatcher,
		Repo:       announcementRepo,
		Options: announce.Options{
			FoldTitleCase: cfg.TenantScoped,
			CompactBody:   cfg.TenantScoped,
		},
	})
	chatSvc := chat.NewService(chat.ServiceDeps{
		Audience:   resolver,
		Dispatcher: dispatcher,
		Repo:       messageRepo,
	})
	welcomeSvc := welcome.NewService(welcome.ServiceDeps{
		Dispatcher: dispatcher,
		Repo:       userRepo,
	})

	registry := trigger.NewRegistry(markers, log)
	registry.OnCreate("announcements/{announcementId}", announceSvc.Handle)
	registry.OnCreate("apps/{appId}/announcements/{announcementId}", announceSvc.Handle)
	registry.OnCreate("apps/{appId}/chats/{chatId}/messages/{messageId}", chatSvc.Handle)
	registry.OnCreate("users/{userId}", welcomeSvc.Handle)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{Dispatcher: registry})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional Pub/Sub intake next to the HTTP push endpoint.
	if cfg.PubSubSubscription != "" {
		psClient, err := gpubsub.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create Pub/Sub client")
		}
		defer psClient.Close()

		sub := psClient.Subscriber(transportpubsub.SubscriptionName(cfg.GCPProjectID, cfg.PubSubSubscription))
		consumer, err := transportpubsub.NewConsumer(registry, sub, log)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build Pub/Sub consumer")
		}
		go func() {
			log.Info().Str("subscription", cfg.PubSubSubscription).Msg("Pub/Sub intake started")
			if err := consumer.Run(runCtx); err != nil && runCtx.Err() == nil {
				log.Error().Err(err).Msg("Pub/Sub intake stopped")
			}
		}()
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-runCtx.Done()

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.AppEnv == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return log
}
