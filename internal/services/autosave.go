package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Flusher is the part of the task board the autosaver drives.
type Flusher interface {
	Dirty() bool
	Flush(ctx context.Context) error
}

// AutosaveConfig controls how frequently unsaved changes are retried.
type AutosaveConfig struct {
	Interval time.Duration
}

// Autosaver periodically retries saves that failed while handling a request.
type Autosaver struct {
	board   Flusher
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     AutosaveConfig
}

func NewAutosaver(board Flusher, monitor ConnectionHealth, logger *zap.Logger, cfg AutosaveConfig) *Autosaver {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	as := &Autosaver{
		board:   board,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", max(1, int(cfg.Interval.Seconds())))
	_, _ = as.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := as.Run(ctx); err != nil {
			as.logger.Error("autosave failed", zap.Error(err))
		}
	})

	return as
}

// Start launches the cron scheduler.
func (as *Autosaver) Start() {
	if as == nil || as.cron == nil {
		return
	}
	as.cron.Start()
	as.logger.Info("autosave started", zap.Duration("interval", as.cfg.Interval))
}

// Stop waits for a running job, then flushes once more so nothing is lost on exit.
func (as *Autosaver) Stop(ctx context.Context) error {
	if as == nil || as.cron == nil {
		return nil
	}
	stopCtx := as.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	err := as.board.Flush(ctx)
	as.logger.Info("autosave stopped")
	return err
}

// Run flushes pending changes synchronously.
func (as *Autosaver) Run(ctx context.Context) error {
	if as == nil || as.board == nil || !as.board.Dirty() {
		return nil
	}
	if as.monitor != nil && !as.monitor.IsOnline() {
		as.logger.Debug("skipping autosave (store offline)")
		return nil
	}
	return as.board.Flush(ctx)
}
