package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
		wantError bool
	}{
		{"Debug level shows everything", LevelDebug, true, true, true, true},
		{"Info level hides debug", LevelInfo, false, true, true, true},
		{"Warn level hides info", LevelWarn, false, false, true, true},
		{"Error level hides warn", LevelError, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.level)

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")

			out := buf.String()
			checks := []struct {
				marker string
				want   bool
			}{
				{"[DEBUG]", tt.wantDebug},
				{"[INFO]", tt.wantInfo},
				{"[WARN]", tt.wantWarn},
				{"[ERROR]", tt.wantError},
			}
			for _, c := range checks {
				if got := strings.Contains(out, c.marker); got != c.want {
					t.Errorf("output contains %s = %v, want %v", c.marker, got, c.want)
				}
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		logLevel string
		want     Level
	}{
		{"DEBUG=1 wins", "1", "error", LevelDebug},
		{"DEBUG=true wins", "true", "", LevelDebug},
		{"LOG_LEVEL=debug", "", "debug", LevelDebug},
		{"LOG_LEVEL=warn", "", "warn", LevelWarn},
		{"LOG_LEVEL=warning", "", "warning", LevelWarn},
		{"LOG_LEVEL=error", "", "error", LevelError},
		{"Default is info", "", "", LevelInfo},
		{"Unknown is info", "", "bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEBUG", tt.debug)
			t.Setenv("LOG_LEVEL", tt.logLevel)
			if got := LevelFromEnv(); got != tt.want {
				t.Errorf("LevelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintfAlwaysLogs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)
	l.Printf("build complete")
	if !strings.Contains(buf.String(), "build complete") {
		t.Error("Printf output missing")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(42), "unknown(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
