package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers"
	getBuildingFreetimeHandler "github.com/m04kA/SMC-FreetimeService/internal/api/handlers/get_building_freetime"
	getResourceConfigHandler "github.com/m04kA/SMC-FreetimeService/internal/api/handlers/get_resource_config"
	getResourceFreetimeHandler "github.com/m04kA/SMC-FreetimeService/internal/api/handlers/get_resource_freetime"
	"github.com/m04kA/SMC-FreetimeService/internal/api/middleware"
	"github.com/m04kA/SMC-FreetimeService/internal/config"
	resourceRepo "github.com/m04kA/SMC-FreetimeService/internal/infra/storage/resource"
	scheduleRepo "github.com/m04kA/SMC-FreetimeService/internal/infra/storage/schedule"
	freetimeUC "github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
	"github.com/m04kA/SMC-FreetimeService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FreetimeService/pkg/logger"
	"github.com/m04kA/SMC-FreetimeService/pkg/metrics"
	"github.com/m04kA/SMC-FreetimeService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-FreetimeService...")

	loc, err := cfg.Freetime.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Freetime.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var (
		metricsCollector  *metrics.Metrics
		slotRecorder      freetimeUC.Recorder
		rateLimitRecorder middleware.RateLimitRecorder
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		slotRecorder = metricsCollector
		rateLimitRecorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка просто проксирует запросы
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	// Инициализируем репозитории
	resourceRepository := resourceRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB, loc)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем use case
	freetimeUseCase := freetimeUC.NewUseCase(
		resourceRepository,
		scheduleRepository,
		txMgr,
		freetimeUC.NewPolicy(cfg.Freetime.Ownership),
		slotRecorder,
		log,
		freetimeUC.Options{
			Location:     loc,
			QueryTimeout: cfg.Freetime.QueryTimeout(),
			MaxRangeDays: cfg.Freetime.MaxRangeDays,
			Workers:      cfg.Freetime.Workers,
		},
	)
	log.Info("Freetime engine initialized (timezone=%s, ownership=%s, workers=%d, max_range_days=%d)",
		loc, cfg.Freetime.Ownership, cfg.Freetime.Workers, cfg.Freetime.MaxRangeDays)

	// Инициализируем handlers
	getResourceFreetime := getResourceFreetimeHandler.NewHandler(freetimeUseCase, log)
	getBuildingFreetime := getBuildingFreetimeHandler.NewHandler(freetimeUseCase, log)
	getResourceConfig := getResourceConfigHandler.NewHandler(freetimeUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Error("GET /health - Database unavailable: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Лимит запросов: Redis общий для всех экземпляров, локальный лимитер при его отсутствии
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		localLimiter := middleware.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window())
		var primary middleware.Limiter = localLimiter

		if cfg.Redis.Enabled {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})

			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				log.Warn("Redis ping failed, local limiter will be used until it recovers: %v", err)
			} else {
				log.Info("Successfully connected to Redis (addr=%s)", cfg.Redis.Addr)
			}
			cancel()

			primary = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window())
		}

		trustedProxies, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
		if err != nil {
			log.Fatal("Invalid rate_limit.trusted_proxies: %v", err)
		}

		api.Use(middleware.RateLimit(primary, localLimiter, trustedProxies, rateLimitRecorder, log))
		log.Info("Rate limit enabled: %d requests per %s", cfg.RateLimit.Requests, cfg.RateLimit.Window())
	}

	// ============================================================
	// PUBLIC ROUTES (только чтение)
	// ============================================================

	// Слоты одного ресурса
	api.HandleFunc("/resources/{resourceId}/freetime", getResourceFreetime.Handle).Methods(http.MethodGet)

	// Слоты всех ресурсов здания
	api.HandleFunc("/buildings/{buildingId}/freetime", getBuildingFreetime.Handle).Methods(http.MethodGet)

	// Параметры расписания ресурса
	api.HandleFunc("/resources/{resourceId}/config", getResourceConfig.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.CORS(cfg.CORS.AllowedOrigins)(r),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
