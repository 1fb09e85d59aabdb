package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"academy-service/internal/audit"
	"academy-service/internal/config"
	"academy-service/internal/db"
	"academy-service/internal/health"
	"academy-service/internal/kafka"
	"academy-service/internal/logger"
	"academy-service/internal/messaging"
	"academy-service/internal/metrics"
	"academy-service/internal/middleware"
	"academy-service/internal/reminder"
	"academy-service/internal/student"

	"github.com/go-chi/chi/v5"
)

type App struct {
	config *config.Config
	router chi.Router
	server *http.Server
	logger *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	database := db.New(cfg.Database)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database, (*student.Student)(nil), (*student.Due)(nil), (*audit.ActionLog)(nil)); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	serviceMetrics, err := metrics.New()
	if err != nil {
		log.Fatal("failed to initialize metrics:", err)
	}

	// Apply CORS middleware globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Kafka audit mirroring is optional
	var kafkaProducer audit.KafkaProducer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize kafka producer", "error", err)
		} else {
			kafkaProducer = producer
		}
	}
	auditRecorder := audit.NewRecorder(database, kafkaProducer, slogLogger)

	// NATS reminder events are optional
	var publisher student.EventPublisher
	if cfg.NATS.URL != "" {
		natsProducer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			publisher = natsProducer
		}
	}

	reminderBuilder := reminder.NewBuilder(
		cfg.Reminder.AcademyName,
		cfg.Reminder.CountryCode,
		cfg.Reminder.SendBaseURL,
	)

	studentRepo := student.NewRepository(database)
	studentService := student.NewService(studentRepo, reminderBuilder, publisher, auditRecorder, slogLogger)
	studentHandler := student.NewHandler(studentService, slogLogger, serviceMetrics)

	app.router.Route("/api", func(r chi.Router) {
		studentHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", a.config.Server.Port),
		Handler: a.router,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	return a.server.Shutdown(ctx)
}
