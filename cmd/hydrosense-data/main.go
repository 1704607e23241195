package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hydrosense-data/internal/config"
	"hydrosense-data/internal/database"
	httpapi "hydrosense-data/internal/http"
	"hydrosense-data/internal/logger"
	sensormqtt "hydrosense-data/internal/mqtt"
	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"
	"hydrosense-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "hydrosense-data")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var kv store.KV = store.NewRedisKV(redisClient)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// Redis 未就绪：用内存 KV 支持本地联测（会话随进程消失）
		log.Warn("Redis unavailable, falling back to in-memory KV", zap.Error(err))
		kv = store.NewMemoryKV()
	}

	var db *sql.DB
	var repos *repository.Repositories
	var uow repository.UnitOfWork
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for hydrosense-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		repos = repository.NewPostgresRepositories(db)
		uow = repository.NewPostgresUnitOfWork(db)
	} else {
		memStore := repository.NewMemoryStore()
		repos = repository.NewMemoryRepositories(memStore)
		uow = repository.NewMemoryUnitOfWork(memStore)
	}

	sessionTTL := time.Duration(cfg.Session.TTLSeconds) * time.Second
	authService := service.NewAuthService(repos.Users, kv, sessionTTL, log)
	householdService := service.NewHouseholdService(repos.Households, repos.HouseholdUsers, uow, log)
	tagService := service.NewTagService(repos.Tags, repos.HouseholdUsers, uow, log)
	eventService := service.NewEventService(repos.Events, repos.Tags, repos.HouseholdUsers, log)
	consumptionService := service.NewConsumptionService(repos.Consumption, repos.Households, repos.HouseholdUsers, log)
	invitationService := service.NewInvitationService(repos.Invitations, repos.HouseholdUsers, repos.Users, uow, 0, log)

	recircClient := service.NewRecirculatorClient(
		cfg.Recirculator.BaseURL,
		cfg.Recirculator.APIKey,
		time.Duration(cfg.Recirculator.TimeoutSeconds)*time.Second,
		cfg.Recirculator.RetryCount,
		log,
	)
	recircService := service.NewRecirculatorService(recircClient, kv, log)

	router := httpapi.NewRouter(log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, log))
	router.RegisterAppRoutes(
		httpapi.NewAuthMiddleware(authService, log),
		httpapi.NewHouseholdHandler(householdService, log),
		httpapi.NewTagHandler(tagService, log),
		httpapi.NewEventHandler(eventService, log),
		httpapi.NewConsumptionHandler(consumptionService, log),
		httpapi.NewRecirculatorHandler(recircService, log),
		httpapi.NewUserHandler(householdService, repos.Users, log),
		httpapi.NewInvitationHandler(invitationService, log),
	)

	// 传感器摄取（默认禁用；Broker 不可达时只告警，HTTP API 照常服务）
	var mqttClient *sensormqtt.Client
	if cfg.MQTT.Enabled {
		broker := sensormqtt.NewSensorBroker(eventService, repos.Households, log)
		if c, err := sensormqtt.NewClient(&cfg.MQTT); err == nil {
			mqttClient = c
			if err := mqttClient.Subscribe(cfg.MQTT.Topic, 1, broker.HandleMessage); err != nil {
				log.Warn("MQTT subscribe failed", zap.String("topic", cfg.MQTT.Topic), zap.Error(err))
			} else {
				log.Info("Sensor ingestion enabled", zap.String("topic", cfg.MQTT.Topic))
			}
		} else {
			log.Warn("MQTT broker unavailable, sensor ingestion disabled", zap.Error(err))
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
