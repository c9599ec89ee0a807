package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewHonoursLevel(t *testing.T) {
	logger, err := New("warn", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled at warn level")
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	logger, err := New("", true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected info level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
