package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerFormatsOutput(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		assertions func(t *testing.T, output string)
	}{
		{
			name:   "console format is not json",
			format: "console",
			level:  "info",
			assertions: func(t *testing.T, output string) {
				if strings.HasPrefix(strings.TrimSpace(output), "{") || !strings.Contains(output, "hello") {
					t.Fatalf("expected console output with message, got %q", output)
				}
			},
		},
		{
			name:   "json format starts with brace",
			format: "json",
			level:  "debug",
			assertions: func(t *testing.T, output string) {
				if !strings.HasPrefix(strings.TrimSpace(output), "{") {
					t.Fatalf("expected json output to start with '{', got %q", output)
				}
				if !strings.Contains(output, `"message":"hello"`) {
					t.Fatalf("expected message field, got %q", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(Config{Format: tt.format, Level: tt.level}, &buf)
			log.Info().Msg("hello")

			if buf.Len() == 0 {
				t.Fatalf("expected log output, got empty string")
			}

			tt.assertions(t, buf.String())
		})
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: "json", Level: "warn"}, &buf)
	log.Info().Msg("dropped")

	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(Config{Format: "json", Level: "info"}, &buf)

	ctx := domain.ContextWithRequestID(context.Background(), "req-7")
	ctx = domain.ContextWithPrincipal(ctx, domain.Principal{UserID: "u1", Role: domain.RoleClient})

	log := WithContext(ctx, base)
	log.Info().Msg("placed")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-7"`, `"user_id":"u1"`, `"role":"client"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}
