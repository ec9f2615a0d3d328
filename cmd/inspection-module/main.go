// Точка входа инспекционного модуля — сервис подписания инспекционных
// отчётов. Загружает конфигурацию, подключается к PostgreSQL, применяет
// миграции, создаёт сервисный слой и API handlers, запускает мониторинг
// зависимостей (topologymetrics), HTTP-сервер с JWT middleware и
// graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sakthiauto/inspection-module/internal/api/handlers"
	"github.com/sakthiauto/inspection-module/internal/api/middleware"
	"github.com/sakthiauto/inspection-module/internal/auth"
	"github.com/sakthiauto/inspection-module/internal/config"
	"github.com/sakthiauto/inspection-module/internal/database"
	"github.com/sakthiauto/inspection-module/internal/repository"
	"github.com/sakthiauto/inspection-module/internal/server"
	"github.com/sakthiauto/inspection-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Инспекционный модуль запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждение о дефолтном значении topologymetrics
	if os.Getenv("IM_DEPHEALTH_GROUP") == "" {
		logger.Warn("IM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	partRepo := repository.NewPartRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Менеджер JWT и кэш сводки соответствия
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	gridCache := service.NewGridCache(cfg.CacheMaxSize, cfg.CacheTTL)

	// 7. Services
	usersSvc := service.NewUserService(userRepo, txRunner, tokens, cfg.RoleCodes, logger)
	partsSvc := service.NewPartService(partRepo, gridCache, logger)
	reportsSvc := service.NewReportService(reportRepo, partRepo, gridCache, logger)
	complianceSvc := service.NewComplianceService(partRepo, reportRepo, gridCache, logger)
	logsheetsSvc := service.NewLogSheetService(reportRepo, userRepo, logger)

	// 8. Readiness checker и API handler
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		usersSvc,
		partsSvc,
		reportsSvc,
		complianceSvc,
		logsheetsSvc,
		logger,
	)

	// 9. JWT middleware
	jwtAuth := middleware.NewJWTAuth(tokens, logger)

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"inspection-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 12. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Инспекционный модуль остановлен")
}
