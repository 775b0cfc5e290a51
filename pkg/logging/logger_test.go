package logging_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-tplform/pkg/logging"
)

func TestZapAdapterForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.NewZap(zap.New(core).Sugar())

	logger.Warn("formatting failed", "dialect", "html")
	logger.Error("compile failed", "generation", 3)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel || entries[0].Message != "formatting failed" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if got := entries[0].ContextMap()["dialect"]; got != "html" {
		t.Fatalf("expected dialect field, got %v", got)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %v", entries[1].Level)
	}
}

func TestNilZapFallsBackToNop(t *testing.T) {
	logger := logging.NewZap(nil)
	if _, ok := logger.(logging.Nop); !ok {
		t.Fatalf("expected Nop logger, got %T", logger)
	}
	logging.OrNop(nil).Info("ignored")
}
