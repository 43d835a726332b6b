package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/yumina0616/PromptLab-sub000/pkg/lifecycle"
)

func TestStartupReadiness(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Fatal("ready before startup")
	}

	var started atomic.Int32
	for range 3 {
		lc.OnStartup(func() { started.Add(1) })
	}
	lc.WaitForStartup()

	if got := started.Load(); got != 3 {
		t.Errorf("startup hooks ran %d times, want 3", got)
	}
	if !lc.Ready() {
		t.Error("not ready after startup")
	}
}

func TestShutdown(t *testing.T) {
	t.Run("hooks run after cancel", func(t *testing.T) {
		lc := lifecycle.New()
		var closed atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			closed.Store(true)
		})

		if err := lc.Shutdown(time.Second); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
		if !closed.Load() {
			t.Error("shutdown hook did not run")
		}
		if lc.Context().Err() == nil {
			t.Error("context should be cancelled")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		lc := lifecycle.New()
		release := make(chan struct{})
		defer close(release)
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			<-release
		})

		if err := lc.Shutdown(20 * time.Millisecond); err == nil {
			t.Error("expected timeout error")
		}
	})
}
