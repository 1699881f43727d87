package audit

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogActionCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	al := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := WithRequestID(context.Background(), "req-abc123")
	al.LogAction(ctx, "company-1", "user-1", "create", "shortage_record", "r1", "completed", "")

	line := buf.String()
	if !strings.Contains(line, `"request_id":"req-abc123"`) {
		t.Fatalf("expected request id in audit line, got: %s", line)
	}
	if !strings.Contains(line, `"tenant_id":"company-1"`) || !strings.Contains(line, `"user_id":"user-1"`) {
		t.Fatalf("expected tenant and user in audit line, got: %s", line)
	}
}

func TestRequestIDFromContextMissing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
