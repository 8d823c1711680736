package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		format  string
		want    []string
	}{
		{name: "slog text", backend: "", format: "text", want: []string{"msg=hello", "k=v"}},
		{name: "slog json", backend: "slog", format: "json", want: []string{`"msg":"hello"`, `"k":"v"`}},
		{name: "zerolog json", backend: "zerolog", format: "json", want: []string{`"message":"hello"`, `"k":"v"`}},
		{name: "zap json", backend: "zap", format: "json", want: []string{`"msg":"hello"`, `"k":"v"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Options{Backend: tt.backend, Level: "debug", Format: tt.format, Output: &buf})
			l.With("k", "v").Info(context.Background(), "hello")

			out := buf.String()
			for _, w := range tt.want {
				require.Contains(t, out, w)
			}
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	for _, backend := range []string{"slog", "zerolog", "zap"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Options{Backend: backend, Level: "warn", Format: "json", Output: &buf})
			ctx := context.Background()

			l.Info(ctx, "quiet")
			l.Warn(ctx, "loud")

			out := buf.String()
			require.False(t, strings.Contains(out, "quiet"), out)
			require.Contains(t, out, "loud")
		})
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	ctx := context.Background()
	l.Debug(ctx, "x")
	l.Info(ctx, "x")
	l.With("a", 1).Error(ctx, "x")
}

func TestNew_ContextFieldsOnEveryBackend(t *testing.T) {
	for _, backend := range []string{"slog", "zerolog", "zap"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Options{Backend: backend, Level: "info", Format: "json", Output: &buf})

			ctx := ContextWith(context.Background(), "resource", "r-1")
			l.Info(ctx, "scan completed", "score", 88)

			out := buf.String()
			require.Contains(t, out, `"resource":"r-1"`)
			require.Contains(t, out, `"score":88`)
		})
	}
}
