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

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"hospital-portal/accounts"
	"hospital-portal/apiclient"
	"hospital-portal/config"
	"hospital-portal/consumer"
	"hospital-portal/handlers"
	"hospital-portal/middleware"
	"hospital-portal/monitoring"
	"hospital-portal/navbar"
	"hospital-portal/notify"
	"hospital-portal/routes"
	"hospital-portal/session"
	"hospital-portal/utils"
	"hospital-portal/views"
)

func main() {
	logger := log.New(os.Stdout, "PORTAL: ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment, cfg.AppVersion); err != nil {
			logger.Printf("Sentry disabled: %v", err)
		} else {
			defer utils.FlushSentry()
		}
	}
	monitoring.Init()

	// Session flags live in Redis when it is configured; otherwise in memory.
	var store session.Store = session.NewMemoryStore()
	var redisClient utils.RedisClient
	if cfg.RedisHost != "" {
		redisClient = connectRedis(logger, cfg)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Printf("Error closing Redis connection: %v", err)
			}
		}()
		store = session.NewRedisStore(redisClient, cfg.SessionCookie)
	} else {
		logger.Println("REDIS_HOST not set, keeping sessions in memory")
	}
	sessions := session.NewManager(store, cfg.SessionTTL)

	var producer utils.KafkaProducer
	if cfg.KafkaBroker != "" {
		p, err := utils.NewKafkaProducer(cfg.KafkaBroker, handlers.EventsTopic)
		if err != nil {
			logger.Printf("Kafka disabled: %v", err)
		} else {
			producer = p
			defer producer.Close()
		}
	}

	var search utils.ElasticsearchClient
	if cfg.ElasticsearchURL != "" {
		es, err := utils.NewElasticsearchClient(cfg.ElasticsearchURL)
		if err != nil {
			logger.Printf("Elasticsearch disabled: %v", err)
		} else {
			search = es
			defer search.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if producer != nil && search != nil {
		activity := consumer.NewAppointmentConsumer(cfg.KafkaBroker, handlers.EventsTopic, search)
		activity.Start(ctx)
		defer activity.Stop()
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	registry := views.NewRegistry()
	hub := notify.NewHub(cfg.CarouselImages, cfg.CarouselInterval, cfg.AllowedOrigins)

	h := handlers.NewPortalHandler(handlers.Deps{
		API:          api,
		Accounts:     accounts.New(api, sessions, logger),
		Sessions:     sessions,
		Views:        registry,
		Hub:          hub,
		Navbar:       navbar.New(sessions, registry.Drop, hub.Disconnect),
		Events:       producer,
		Index:        search,
		Cache:        redisClient,
		Logger:       logger,
		CookieName:   cfg.SessionCookie,
		SecureCookie: cfg.IsProduction(),
	})

	limiter := middleware.NewRateLimiter(1, 5)
	go limiter.Cleanup(ctx.Done(), 3*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.NewEngine(cfg.TrustedProxies)
	if err != nil {
		logger.Fatalf("Failed to configure router: %v", err)
	}
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		middleware.SentryMiddleware(),
		middleware.ErrorHandler(),
		middleware.PrometheusMetrics(),
	)
	routes.SetupRoutes(router, h, sessions, cfg.SessionCookie, limiter)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Printf("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}
}

// connectRedis retries the initial connection before giving up.
func connectRedis(logger *log.Logger, cfg *config.Config) utils.RedisClient {
	const maxRetries = 5
	retryDelay := 3 * time.Second

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		client, err := utils.NewRedisClient(cfg.RedisHost, cfg.RedisPassword)
		if err == nil {
			return client
		}
		lastErr = err
		logger.Printf("Attempt %d: Failed to connect to Redis: %v", i+1, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	logger.Fatalf("Failed to initialize Redis after %d attempts: %v", maxRetries, lastErr)
	return nil
}
