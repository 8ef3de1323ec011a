package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, actor domain.Actor, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("actor_id", actor.ID),
		slog.String("role", string(actor.Role)),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogMutation(ctx context.Context, actor domain.Actor, action, taskID, status, details string) {
	al.LogAction(ctx, actor, action, "task", taskID, status, details)
}

func (al *Logger) LogDenied(ctx context.Context, actor domain.Actor, reason string) {
	al.LogAction(ctx, actor, "access_denied", "api", "", "denied", reason)
}
