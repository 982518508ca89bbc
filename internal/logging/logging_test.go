package logging

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"trace", zerolog.TraceLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"  Debug  ", zerolog.DebugLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSelectWriter(t *testing.T) {
	if _, ok := selectWriter("console").(zerolog.ConsoleWriter); !ok {
		t.Errorf("selectWriter(console) = %T, want zerolog.ConsoleWriter", selectWriter("console"))
	}
	if w := selectWriter("json"); w != os.Stderr {
		t.Errorf("selectWriter(json) = %T, want os.Stderr", w)
	}
	// Unknown formats fall back to json rather than failing.
	if w := selectWriter("xml"); w != os.Stderr {
		t.Errorf("selectWriter(xml) = %T, want os.Stderr", w)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx, id := WithRequestID(context.Background(), "")
	if id == "" {
		t.Fatal("expected a generated request ID")
	}
	if got := RequestIDFrom(ctx); got != id {
		t.Errorf("RequestIDFrom = %q, want %q", got, id)
	}

	ctx, id = WithRequestID(context.Background(), "  fixed-id  ")
	if id != "fixed-id" {
		t.Errorf("expected trimmed incoming ID, got %q", id)
	}
	if got := RequestIDFrom(ctx); got != "fixed-id" {
		t.Errorf("RequestIDFrom = %q, want fixed-id", got)
	}

	if got := RequestIDFrom(context.Background()); got != "" {
		t.Errorf("RequestIDFrom on bare context = %q, want empty", got)
	}
}
