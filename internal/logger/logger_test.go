package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
	}{
		{name: "local", env: "local"},
		{name: "prod with level", env: "prod", level: "warn"},
		{name: "empty env is local", env: ""},
		{name: "none", env: "none"},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "bad level", env: "dev", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.level == "warn" && l.Core().Enabled(zap.InfoLevel) {
				t.Error("info should be disabled at warn level")
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
	l := zap.NewExample()
	ctx := Into(context.Background(), l)
	if From(ctx) != l {
		t.Error("logger not returned from context")
	}
}

func TestStage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := Into(context.Background(), zap.New(core))

	ctx, log := Stage(ctx, "corpus", zap.String("path", "c.txt"))
	if From(ctx) != log {
		t.Fatal("stage logger not carried by the context")
	}
	From(ctx).Info("fetching source")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries want 1", len(entries))
	}
	if entries[0].LoggerName != "corpus" {
		t.Errorf("got logger name %q want corpus", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["path"] != "c.txt" {
		t.Errorf("stage field missing: %v", entries[0].ContextMap())
	}
}
