package ratelimit_test

import (
	"testing"

	"github.com/yumina0616/PromptLab-sub000/pkg/ratelimit"
)

func TestLimiterPerKey(t *testing.T) {
	l := ratelimit.PerMinute(1, 2)

	if !l.Allow("alice") || !l.Allow("alice") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("alice") {
		t.Error("third call within the minute should be limited")
	}
	if !l.Allow("bob") {
		t.Error("other keys have their own bucket")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := ratelimit.PerMinute(0, 0)
	for i := range 100 {
		if !l.Allow("alice") {
			t.Fatalf("call %d limited with limiting disabled", i)
		}
	}
}
