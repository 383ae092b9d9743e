package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/parking-service/config"
	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/consumer"
	"github.com/Eursukkul/parking-service/internal/handler"
	"github.com/Eursukkul/parking-service/internal/middleware"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/notify"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/Eursukkul/parking-service/internal/ticket"
	"github.com/Eursukkul/parking-service/pkg/database"
	"github.com/Eursukkul/parking-service/pkg/logger"
	"github.com/Eursukkul/parking-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	logRepo := repository.NewLogRepository(db)

	// Notifications
	tickets := ticket.NewRenderer("Parking Ticket")

	var mailer notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		log.Warn("SMTP_HOST not set, emails will only be logged")
		mailer = notify.NewLogMailer(log)
	}
	email := notify.NewEmailNotifier(mailer, tickets)

	// A nil interface, not a typed nil, keeps the dispatcher on the in-process path.
	var publisher notify.Publisher
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect publisher to RabbitMQ")
		}
		defer mqPublisher.Close()
		publisher = mqPublisher
	} else {
		log.Warn("RABBITMQ_URL not set, notifications are dispatched in-process")
	}

	dispatcher := notify.NewDispatcher(publisher, email, userRepo, bookingRepo, log)

	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, consumer.QueueName, consumer.RoutingKeys, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect consumer to RabbitMQ")
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.WithError(err).Fatal("failed to start consuming")
		}
		consumer.NewBookingConsumer(dispatcher, log).Start(ctx, msgs)
	}

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := service.NewAuthService(userRepo, tokens, log)
	vehicleSvc := service.NewVehicleService(vehicleRepo, bookingRepo)
	slotSvc := service.NewSlotService(tx, slotRepo, bookingRepo, logRepo, log)
	bookingSvc := service.NewBookingService(tx, bookingRepo, slotRepo, vehicleRepo, paymentRepo, logRepo, dispatcher, tickets, log)
	entrySvc := service.NewEntryService(tx, entryRepo, vehicleRepo, logRepo, log)
	adminSvc := service.NewAdminService(userRepo, vehicleRepo, slotRepo, bookingRepo, paymentRepo, entryRepo, logRepo)

	if cfg.AdminEmail != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Fatal("failed to seed admin account")
		}
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.Validator = middleware.NewRequestValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Info("request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "parking-service"})
	})

	api := e.Group("/api/v1")
	guards := handler.Guards{
		Auth:  middleware.Authenticate(tokens),
		Admin: middleware.RequireRole(models.RoleAdmin),
	}
	handler.NewAuthHandler(authSvc).RegisterRoutes(api, guards)
	handler.NewVehicleHandler(vehicleSvc).RegisterRoutes(api, guards)
	handler.NewSlotHandler(slotSvc).RegisterRoutes(api, guards)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api, guards)
	handler.NewEntryHandler(entrySvc).RegisterRoutes(api, guards)
	handler.NewAdminHandler(adminSvc, bookingSvc, entrySvc).RegisterRoutes(api, guards)

	go func() {
		log.WithField("port", cfg.ServerPort).Info("parking service starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
