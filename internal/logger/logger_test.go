package logger

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"bogus":    zapcore.DebugLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestWatermillAdapter_ForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	a := Watermill(l).With(watermill.LogFields{"topic": "events"})
	a.Info("subscribed", watermill.LogFields{"consumer": "c1"})
	a.Error("subscribe failed", errors.New("boom"), nil)
	a.Trace("tick", nil)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["topic"] != "events" || ctx["consumer"] != "c1" {
		t.Fatalf("missing fields: %v", ctx)
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["err"] != "boom" {
		t.Fatalf("unexpected error entry: %+v", entries[1])
	}
	if entries[2].Level != zapcore.DebugLevel {
		t.Fatalf("trace should map to debug, got %v", entries[2].Level)
	}
}

func TestWatermill_NilLoggerIsNop(t *testing.T) {
	a := Watermill(nil)
	if _, ok := a.(watermill.NopLogger); !ok {
		t.Fatalf("expected NopLogger, got %T", a)
	}
}
