package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"factory-erp/internal/config"
	generate_excel "factory-erp/internal/service/generate-excel"
	"factory-erp/internal/service/costing"
	"factory-erp/internal/service/production"
	"factory-erp/internal/service/workorder"
	"factory-erp/internal/storage/mysql"
	"factory-erp/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// лимит ключей антидребезга в памяти
const debounceMaxEntries = 10000

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env)

	storage, err := mysql.New(*cfg)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	guard, err := scanGuard(cfg, log)
	if err != nil {
		log.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}

	services := Services{
		Costs:   costing.NewCostService(log, storage, cfg.Costing.Parallelism),
		Reports: production.NewReportService(log, storage),
		Scans: workorder.NewScanService(log, storage, guard, workorder.ScanConfig{
			BreakStart:      cfg.WorkOrders.BreakStart,
			BreakEnd:        cfg.WorkOrders.BreakEnd,
			MinCycleSeconds: cfg.WorkOrders.MinCycleSeconds,
			Location:        cfg.WorkOrders.Location(),
		}),
		Excel: generate_excel.NewGenerateService(storage),
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, services),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

// scanGuard выбирает антидребезг: общий через Redis для нескольких инстансов, иначе в памяти.
func scanGuard(cfg *config.Config, log *slog.Logger) (workorder.ScanGuard, error) {
	if !cfg.Redis.Enabled {
		log.Info("scan debounce: in-memory", slog.Duration("window", cfg.WorkOrders.Debounce))
		return workorder.NewDebounceCache(cfg.WorkOrders.Debounce, debounceMaxEntries, time.Now), nil
	}

	client, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		return nil, err
	}

	log.Info("scan debounce: redis", slog.String("addr", cfg.Redis.Addr), slog.Duration("window", cfg.WorkOrders.Debounce))
	return redis.NewScanLock(client, cfg.WorkOrders.Debounce), nil
}

type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	// Всегда пишем в основной вывод (stdout)
	if h.coreHandler.Enabled(ctx, r.Level) {
		if err = h.coreHandler.Handle(ctx, r); err != nil {
			return err
		}
	}

	// Ошибки дублируем в файл, сбой записи в файл не роняет основной вывод
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		_ = h.errorHandler.Handle(ctx, r.Clone())
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envLocal:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case envDev, envProd:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	errorFile, err := os.OpenFile("errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		slog.Warn("Cannot open error log file", "error", err)
		return slog.New(coreHandler)
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	return slog.New(&dualHandler{
		coreHandler:  coreHandler,
		errorHandler: errorHandler,
	})
}
