package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"FxPulse/internal/middleware"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	pkgkafka "FxPulse/pkg/kafka"
	applogger "FxPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	cycle      *usecase.Cycle
	pipe       *middleware.EventPipeline
	proc       *usecase.EventProcessor
	consumer   *pkgkafka.Consumer
	sink       pkgkafka.MessageHandler
	httpServer *xhttp.Server
	closers    []io.Closer
	sched      *cron.Cron
	startup    sync.WaitGroup
}

// New creates a new App instance with all dependencies. consumer and sink are nil
// unless the backend is kafka. closers are closed last, in order.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	cycle *usecase.Cycle,
	pipe *middleware.EventPipeline,
	proc *usecase.EventProcessor,
	consumer *pkgkafka.Consumer,
	sink pkgkafka.MessageHandler,
	httpServer *xhttp.Server,
	closers ...io.Closer,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		cycle:      cycle,
		pipe:       pipe,
		proc:       proc,
		consumer:   consumer,
		sink:       sink,
		httpServer: httpServer,
		closers:    closers,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.pipe.Start(ctx)

	if a.consumer != nil && a.sink != nil {
		a.consumer.RegisterHandler(a.sink)
		if err := a.consumer.Start(ctx); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	a.sched = cron.New(cron.WithChain(
		cron.Recover(cronLogger{a.l}),
		cron.SkipIfStillRunning(cronLogger{a.l}),
	))
	if _, err := a.sched.AddFunc(a.cfg.Collector.Schedule, func() { a.runCycle(ctx) }); err != nil {
		return fmt.Errorf("collector.schedule %q: %w", a.cfg.Collector.Schedule, err)
	}
	a.sched.Start()
	a.l.Info("scheduler started",
		applogger.String("schedule", a.cfg.Collector.Schedule),
		applogger.String("mode", a.cfg.Collector.Mode),
		applogger.String("backend", a.cfg.Backend.Type),
	)

	a.startup.Add(1)
	go func() {
		defer a.startup.Done()
		a.runCycle(ctx)
	}()

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) runCycle(ctx context.Context) {
	err := a.cycle.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrCycleRunning):
		a.l.Info("cycle skipped, another run holds the lock")
	case errors.Is(err, context.Canceled):
		a.l.Info("cycle cancelled")
	default:
		a.l.Warn("cycle error", applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.sched != nil {
		select {
		case <-a.sched.Stop().Done():
		case <-ctx.Done():
			a.l.Warn("running cycle did not finish before shutdown timeout")
		}
	}
	a.waitStartup(ctx)

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.pipe.Stop()
	if n := a.pipe.Buffered(); n > 0 {
		a.l.Warn("discarding buffered batches", applogger.Int("batches", n))
	}
	a.proc.Close()

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}

// waitStartup blocks until the startup cycle returns or ctx expires.
func (a *App) waitStartup(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.startup.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.l.Warn("startup cycle did not finish before shutdown timeout")
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct{ l *applogger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if t, ok := kv[i+1].(time.Time); ok {
			fields = append(fields, applogger.String(key, t.Format(time.RFC3339)))
			continue
		}
		fields = append(fields, applogger.Any(key, kv[i+1]))
	}
	return fields
}
