// Пакет server — HTTP-сервер инспекционного модуля с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakthiauto/inspection-module/internal/api/handlers"
	"github.com/sakthiauto/inspection-module/internal/api/middleware"
	"github.com/sakthiauto/inspection-module/internal/config"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// Server — HTTP-сервер инспекционного модуля.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// jwtAuth может быть nil для тестирования без аутентификации —
// тогда защищённые маршруты открыты.
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, jwtAuth *middleware.JWTAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Публичные endpoints: health/metrics для Kubernetes,
	// регистрация и вход — до получения токена.
	router.Get("/health/live", handler.HealthLive)
	router.Get("/health/ready", handler.HealthReady)
	router.Get("/metrics", handler.GetMetrics)
	router.Post("/api/v1/auth/signup", handler.SignUp)
	router.Post("/api/v1/auth/login", handler.Login)

	// Защищённые endpoints: все роли видят справочник, отчёты и сводку;
	// мутации справочника и администрирование — только Quality Head,
	// подача отчётов — только Auditor.
	router.Group(func(r chi.Router) {
		if jwtAuth != nil {
			r.Use(jwtAuth.Middleware())
		}

		r.Get("/api/v1/parts", handler.ListParts)
		r.Get("/api/v1/parts/{id}", handler.GetPart)

		r.With(middleware.RequireRole(workflow.RoleQualityHead)).Post("/api/v1/parts", handler.CreatePart)
		r.With(middleware.RequireRole(workflow.RoleQualityHead)).Put("/api/v1/parts/{id}", handler.UpdatePart)
		r.With(middleware.RequireRole(workflow.RoleQualityHead)).Delete("/api/v1/parts/{id}", handler.DeletePart)

		r.Get("/api/v1/reports/form/{partNo}", handler.GetReportForm)
		r.With(middleware.RequireRole(workflow.RoleAuditor)).Post("/api/v1/reports", handler.CreateReport)
		r.Get("/api/v1/reports", handler.ListReports)
		r.Get("/api/v1/reports/{id}", handler.GetReport)
		r.Post("/api/v1/reports/{id}/approve", handler.ApproveReport)
		r.Post("/api/v1/reports/{id}/reject", handler.RejectReport)
		r.With(middleware.RequireRole(workflow.RoleQualityHead)).Delete("/api/v1/reports/{id}", handler.DeleteReport)
		r.Get("/api/v1/reports/{id}/logsheet", handler.GetLogSheet)
		r.Get("/api/v1/reports/{id}/logsheet.csv", handler.GetLogSheetCSV)

		r.Get("/api/v1/compliance", handler.GetCompliance)
		r.Get("/api/v1/compliance/customers", handler.GetComplianceCustomers)

		r.With(middleware.RequireRole(workflow.RoleQualityHead)).Get("/api/v1/users", handler.ListUsers)
		r.With(middleware.RequireRole(workflow.RoleQualityHead)).Delete("/api/v1/users/{id}", handler.RemoveUserAccess)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
