package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID so audit lines
// can be correlated with the request log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey{}); v != nil {
		return v.(string)
	}
	return ""
}

func (al *Logger) LogAction(ctx context.Context, tenantID, userID, action, resource, resourceID, status, details string) {
	requestID := RequestIDFromContext(ctx)

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("tenant_id", tenantID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogRecordCreated(ctx context.Context, tenantID, userID, recordID string) {
	al.LogAction(ctx, tenantID, userID, "create", "shortage_record", recordID, "completed", "")
}

func (al *Logger) LogRecordDeleted(ctx context.Context, tenantID, userID, recordID string) {
	al.LogAction(ctx, tenantID, userID, "delete", "shortage_record", recordID, "completed", "")
}

func (al *Logger) LogReportGenerated(ctx context.Context, tenantID, userID, details string) {
	al.LogAction(ctx, tenantID, userID, "generate", "report", "", "completed", details)
}

func (al *Logger) LogUserManaged(ctx context.Context, tenantID, actorID, action, targetUserID string) {
	al.LogAction(ctx, tenantID, actorID, action, "user", targetUserID, "completed", "")
}

func (al *Logger) LogDenied(ctx context.Context, tenantID, userID, reason string) {
	al.LogAction(ctx, tenantID, userID, "access_denied", "api", "", "denied", reason)
}
