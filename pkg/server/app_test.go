package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	applogger "FxPulse/pkg/logger"
)

func TestWaitStartupBlocksUntilCycleReturns(t *testing.T) {
	a := &App{l: applogger.Nop()}
	var finished atomic.Bool
	a.startup.Add(1)
	go func() {
		defer a.startup.Done()
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	a.waitStartup(ctx)
	if !finished.Load() {
		t.Fatal("shutdown continued while the startup cycle was running")
	}
}

func TestWaitStartupGivesUpAtDeadline(t *testing.T) {
	a := &App{l: applogger.Nop()}
	a.startup.Add(1)
	defer a.startup.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	a.waitStartup(ctx)
	if time.Since(start) > time.Second {
		t.Fatal("waitStartup ignored the shutdown deadline")
	}
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"next", time.Unix(0, 0), "entry", 3, 42, "dangling"})
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
}
