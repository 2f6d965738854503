package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "TEST", FlagLevel|FlagPrefix)

		logger.Info("Hello %s", "World")

		output := buf.String()
		if !strings.Contains(output, "[INFO]") {
			t.Error("Missing log level")
		}
		if !strings.Contains(output, "[TEST]") {
			t.Error("Missing prefix")
		}
		if !strings.Contains(output, "Hello World") {
			t.Error("Missing message")
		}
	})

	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		logger.SetLevel(LogLevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Debug message should not be logged")
		}
		if strings.Contains(output, "info message") {
			t.Error("Info message should not be logged")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("Warn message should be logged")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Error message should be logged")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetEnabled(false)

		logger.Info("should not appear")

		if buf.Len() > 0 {
			t.Error("Disabled logger should not write")
		}
	})

	t.Run("FileInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagShortFile|FlagLevel)

		logger.Info("test")

		if output := buf.String(); !strings.Contains(output, "logger_test.go:") {
			t.Errorf("Expected the caller's file in output: %s", output)
		}
	})

	t.Run("Fatal", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)

		defer func() {
			if recover() == nil {
				t.Error("Fatal should panic")
			}
			if !strings.Contains(buf.String(), "[FATAL] boom") {
				t.Errorf("Fatal message missing: %s", buf.String())
			}
		}()
		logger.Fatal("boom")
	})
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LogLevelDebug)
	SetFlags(FlagShortFile)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LogLevelInfo)
		SetFlags(DefaultFlags)
	})

	Debug("from the default logger")
	WarnIf(true, "should appear")
	WarnIf(false, "should not appear")

	output := buf.String()
	if !strings.Contains(output, "logger_test.go:") {
		t.Errorf("Package functions should report their caller: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Error("Conditional true message missing")
	}
	if strings.Contains(output, "should not appear") {
		t.Error("Conditional false message should not appear")
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "polyplay.log")
	logger, closer, err := NewFileLogger(path, "file", FlagPrefix)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Info("written to disk")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "[file] written to disk\n" {
		t.Errorf("Unexpected file contents: %q", data)
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(New(&buf, "swap", FlagPrefix|FlagLevel))
	defer SetDefault(prev)

	Info("to the new logger")
	if got := buf.String(); got != "[INFO] [swap] to the new logger\n" {
		t.Errorf("Unexpected output: %q", got)
	}
	if Default() == prev {
		t.Error("Expected Default to return the new logger")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelFatal, "FATAL"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "Warn", "error", "off"} {
		level, err := ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%s) error: %v", name, err)
			continue
		}
		if !strings.EqualFold(level.String(), name) {
			t.Errorf("ParseLevel(%s) = %v", name, level)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for an unknown level")
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH", DefaultFlags)

	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})

	b.Run("BelowLevel", func(b *testing.B) {
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
}
