package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Studio-Zurich/fix-app-sub000/internal/config"
	"github.com/Studio-Zurich/fix-app-sub000/internal/db"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/geocoding"
	"github.com/Studio-Zurich/fix-app-sub000/internal/goroutine"
	"github.com/Studio-Zurich/fix-app-sub000/internal/http/middleware"
	httpRouter "github.com/Studio-Zurich/fix-app-sub000/internal/http/router"
	"github.com/Studio-Zurich/fix-app-sub000/internal/i18n"
	"github.com/Studio-Zurich/fix-app-sub000/internal/infrastructure/persistence"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/handler"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/mail"
	"github.com/Studio-Zurich/fix-app-sub000/internal/notification"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
	"github.com/Studio-Zurich/fix-app-sub000/internal/usecase/submission"
	"github.com/Studio-Zurich/fix-app-sub000/internal/usecase/upload"
	"github.com/Studio-Zurich/fix-app-sub000/internal/wizard"
	"github.com/Studio-Zurich/fix-app-sub000/internal/ws"
)

const (
	sessionSweepInterval = time.Minute
	cacheSweepInterval   = 5 * time.Minute
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}
	mainLog := logger.Component("main")

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath)
	if err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}
	if len(applied) > 0 {
		mainLog.WithField("migrations", applied).Info("миграции применены")
	}

	files, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	catalog := i18n.MustLoad()
	defaultLocale, _ := valueobject.ParseLocale(cfg.DefaultLocale)

	// Репозитории.
	reportRepo := persistence.NewReportRepositoryAdapter(dbConn)
	taxonomyRepo := persistence.NewTaxonomyRepositoryAdapter(dbConn)
	adminRepo := persistence.NewAdminRepositoryAdapter(dbConn)

	// Внешние клиенты.
	geocoder := geocoding.New(geocoding.Config{
		BaseURL:      cfg.GeocoderBaseURL,
		UserAgent:    cfg.GeocoderUserAgent,
		CountryCodes: cfg.GeocoderCountryCodes,
		Timeout:      cfg.GeocoderTimeout,
	})
	mailer := mail.New(mail.Config{
		BaseURL: cfg.MailBaseURL,
		APIKey:  cfg.MailAPIKey,
		Timeout: cfg.MailTimeout,
	})
	composer, err := notification.NewComposer(notification.Config{
		From:         cfg.MailFrom,
		InternalTo:   cfg.MailInternalTo,
		InternalBCC:  cfg.MailInternalBCC,
		InternalLang: defaultLocale,
		PublicAppURL: cfg.PublicAppURL,
	}, catalog)
	if err != nil {
		log.Fatalf("main: не удалось подготовить шаблоны писем: %v", err)
	}

	// Вебсокеты панели администратора.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Сервисы.
	cache := service.NewCacheService()
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) { cache.Run(ctx, cacheSweepInterval) })

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(adminRepo, tokenManager)
	taxonomyService := service.NewTaxonomyService(taxonomyRepo, cache)
	reportService := service.NewReportService(reportRepo, files, cache, hub)

	if len(cfg.MailInternalTo) == 0 {
		mainLog.Warn("MAIL_INTERNAL_TO не задан, внутреннее письмо отправляться не будет")
	}
	submitUC := submission.NewSubmitReportUseCase(reportRepo, files, mailer, composer, submission.Options{
		SendInternal: len(cfg.MailInternalTo) > 0,
		Publisher:    hub,
	})
	uploadUC := upload.NewUploadImageUseCase(files, geocoder, cfg.MaxUploadSizeMB)

	sessions := wizard.NewSessionStore(cfg.DraftTTL)
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) { sessions.Run(ctx, sessionSweepInterval) })

	wizardService := service.NewWizardService(service.WizardDeps{
		Sessions:             sessions,
		Taxonomy:             taxonomyService,
		Uploader:             uploadUC,
		Submitter:            submitUC,
		Geocoder:             geocoder,
		Reports:              reportRepo,
		Translator:           catalog,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
		OnSubmitted:          func(uuid.UUID) { reportService.InvalidateStats() },
	})

	// HTTP хэндлеры.
	wizardHandler := handler.NewWizardHandler(wizardService)
	adminHandler := handler.NewAdminHandler(authService, reportService, taxonomyService)
	healthHandler := handler.NewHealthHandler(dbConn, sessions.Len, hub.Len)
	wsHandler := handler.NewWSHandler(hub, authService, middleware.OriginAllowed(cfg.AllowedOrigins))

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, wizardHandler, adminHandler, healthHandler, wsHandler, authService)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("ошибка остановки http сервера")
		}
	})

	mainLog.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
