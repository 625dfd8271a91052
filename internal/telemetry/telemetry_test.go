package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{env: "DEBUG", want: slog.LevelDebug},
		{env: "WARN", want: slog.LevelWarn},
		{env: "ERROR", want: slog.LevelError},
		{env: "", want: slog.LevelInfo},
		{env: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := LogLevel(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), WithRequestID(logger, "req-1"))
	ctx = WithRequestIDContext(ctx, "req-1")

	WithDocument(FromContext(ctx), "deploy").Info("compiled")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"document":"deploy"`) {
		t.Errorf("unexpected log line: %s", out)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("expected req-1, got %q", got)
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger for empty context")
	}
}

func TestObserveCompile(t *testing.T) {
	before := testutil.ToFloat64(compilationsTotal.WithLabelValues(SourceCLI, "ok"))

	ObserveCompile(CompileObservation{
		Source:   SourceCLI,
		Result:   "ok",
		Duration: time.Millisecond,
		Nodes:    3,
		Issues:   map[string]int{"UndefinedParameterReference": 2},
	})

	if got := testutil.ToFloat64(compilationsTotal.WithLabelValues(SourceCLI, "ok")); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}

func TestNewCLILogger(t *testing.T) {
	var buf bytes.Buffer

	quiet := NewCLILogger(&buf, false)
	quiet.Info("hidden")
	quiet.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected quiet output: %q", buf.String())
	}

	buf.Reset()
	NewCLILogger(&buf, true).Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Errorf("expected debug output in verbose mode, got %q", buf.String())
	}
}
