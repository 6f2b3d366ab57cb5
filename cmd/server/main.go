package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	authusecase "github.com/fleetlog/fleetlog/application/usecase/auth"
	"github.com/fleetlog/fleetlog/application/usecase/changerequest"
	"github.com/fleetlog/fleetlog/application/usecase/fleet"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/mutator"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/notification"
	"github.com/fleetlog/fleetlog/infrastructure/bootstrap"
	"github.com/fleetlog/fleetlog/infrastructure/config"
	"github.com/fleetlog/fleetlog/infrastructure/http/handler"
	"github.com/fleetlog/fleetlog/infrastructure/http/middleware"
	"github.com/fleetlog/fleetlog/infrastructure/http/router"
	"github.com/fleetlog/fleetlog/infrastructure/http/sse"
	"github.com/fleetlog/fleetlog/infrastructure/service/jwt"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/fleetlog/fleetlog/infrastructure/service/metrics"
	"github.com/fleetlog/fleetlog/infrastructure/service/password"
	"github.com/fleetlog/fleetlog/infrastructure/service/ratelimit"
	"github.com/fleetlog/fleetlog/infrastructure/service/tracing"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "fleetlog",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"version": version,
		"env":     cfg.Environment,
		"storage": cfg.StorageDriver,
	})

	tracerProvider, shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:        cfg.TracingEnabled,
		Endpoint:       cfg.TracingOTLPEndpoint,
		Insecure:       cfg.TracingOTLPInsecure,
		SampleRatio:    cfg.TracingSampleRatio,
		ServiceName:    "fleetlog",
		ServiceVersion: version,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	otel.SetTracerProvider(tracerProvider)

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open storage", err, map[string]interface{}{
			"storage": cfg.StorageDriver,
		})
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer stores.Close()

	var redisClient *redis.Client
	if cfg.RateLimitEnabled || cfg.NotifyRedisEnabled {
		redisClient, err = bootstrap.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			structuredLogger.Warn(ctx, "Redis unavailable, rate limiting and Redis notifications disabled", map[string]interface{}{
				"error": err.Error(),
			})
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	rateLimitService := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{Enabled: cfg.RateLimitEnabled}, redisClient, structuredLogger)

	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics := metrics.New(registry)

	streamCtx, stopStreams := context.WithCancel(ctx)
	defer stopStreams()
	streamer := sse.NewStreamer(cfg.SSEHeartbeat)
	streamer.Start(streamCtx)

	sinks := []outbound.NotificationSink{notification.NewLogSink(structuredLogger), streamer}
	if cfg.NotifyRedisEnabled && redisClient != nil {
		sinks = append(sinks, notification.NewRedisPublisher(redisClient, cfg.NotifyChannel))
	}
	asyncSink := notification.NewAsyncSink(notification.NewFanout(sinks...), structuredLogger, cfg.NotifyTimeout)

	driverMutator := mutator.NewDriverMutator(stores.Drivers)
	vehicleMutator := mutator.NewVehicleMutator(stores.Vehicles)

	changeRequestUseCase := changerequest.NewChangeRequestUseCase(
		stores.ChangeRequests,
		stores.Users,
		changerequest.Mutators{
			Driver:   driverMutator,
			Vehicle:  vehicleMutator,
			Creation: mutator.NewCreationRouter(driverMutator, vehicleMutator),
		},
		structuredLogger,
		changerequest.WithMetrics(workflowMetrics),
		changerequest.WithNotificationSink(asyncSink),
		changerequest.WithTracerProvider(tracerProvider),
	)

	authUseCase := authusecase.NewAuthUseCase(
		stores.Users,
		tokenService,
		passwordService,
		rateLimitService,
		structuredLogger,
		cfg.AccessTokenTTL,
		authusecase.LoginPolicy{
			IPLimit:       cfg.RateLimitIPAttempts,
			IPWindow:      cfg.RateLimitIPWindow,
			IPBlock:       cfg.RateLimitBlockDuration,
			AccountLimit:  cfg.RateLimitUserAttempts,
			AccountWindow: cfg.RateLimitUserWindow,
			AccountBlock:  cfg.RateLimitBlockDuration,
		},
	)

	var corsOrigins []string
	if cfg.CORSEnabled {
		corsOrigins = cfg.CORSAllowedOrigins
	}

	httpHandler := router.New(router.Config{
		Auth:                handler.NewAuthHandler(authUseCase),
		ChangeRequests:      handler.NewChangeRequestHandler(changeRequestUseCase),
		Fleet:               handler.NewFleetHandler(fleet.NewFleetUseCase(stores.Drivers, stores.Vehicles)),
		Events:              streamer,
		AuthMiddleware:      middleware.NewAuthMiddleware(tokenService),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger),
		LoginPolicy: middleware.RateLimitPolicy{
			Name:          "login",
			Limit:         cfg.RateLimitLoginRequests,
			Window:        cfg.RateLimitLoginWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		},
		Metrics:              workflowMetrics,
		Gatherer:             registry,
		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
		HealthCheck:          stores.Ping,
	})

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"host": cfg.ServerHost,
				"port": cfg.ServerPort,
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", map[string]interface{}{})

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	stopStreams()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, map[string]interface{}{})
	}
	if err := asyncSink.Wait(shutdownCtx); err != nil {
		structuredLogger.Warn(ctx, "Pending notifications dropped", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		structuredLogger.Warn(ctx, "Pending spans dropped", map[string]interface{}{
			"error": err.Error(),
		})
	}
	structuredLogger.Info(ctx, "Server exited", map[string]interface{}{})
}
