package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLoggerWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	if err := InitLogger(logPath, false); err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	Log.Infow("hello from test")
	Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("Log file does not contain message, got %q", string(data))
	}
}

func TestInitLoggerBadPath(t *testing.T) {
	err := InitLogger(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), false)
	if err == nil {
		t.Error("Expected error for unwritable log path")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := Log
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger unchanged")
	}
}
