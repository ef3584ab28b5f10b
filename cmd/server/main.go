package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskwise/api/handler"
	"github.com/fastygo/taskwise/internal/app"
	"github.com/fastygo/taskwise/internal/config"
	"github.com/fastygo/taskwise/internal/infrastructure/monitor"
	"github.com/fastygo/taskwise/internal/middleware"
	"github.com/fastygo/taskwise/internal/router"
	"github.com/fastygo/taskwise/internal/services"
	"github.com/fastygo/taskwise/internal/services/lifecycle"
	"github.com/fastygo/taskwise/pkg/httpcontext"
	"github.com/fastygo/taskwise/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	stopListening := manager.Listen(cancel)
	defer stopListening()

	application, err := app.Build(appCtx, cfg, zapLogger, manager)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal("startup failed", zap.Error(err))
	}
	board := application.Board

	mon := monitor.New(application.Checks, 10*time.Second, zapLogger.Named("monitor"))
	mon.Start()
	manager.Register("monitor", lifecycle.Closer(mon.Stop))

	autosaver := services.NewAutosaver(board, mon, zapLogger.Named("autosave"), services.AutosaveConfig{
		Interval: cfg.Autosave.Interval,
	})
	autosaver.Start()
	manager.Register("autosave", autosaver.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:       apiHandler.NewTaskHandler(board, ctxAdapter, zapLogger),
		Edit:       apiHandler.NewEditHandler(board, ctxAdapter, zapLogger),
		Suggestion: apiHandler.NewSuggestionHandler(board, ctxAdapter, zapLogger),
		Settings:   apiHandler.NewSettingsHandler(application.Credentials, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, board, ctxAdapter, zapLogger),
	}
	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.Recover(zapLogger),
			middleware.AccessLog(zapLogger.Named("http")),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server crashed", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
