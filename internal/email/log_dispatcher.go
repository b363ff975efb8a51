package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogDispatcher writes messages to the log instead of sending them. Used in
// development when no delivery provider is configured.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	id := "dev-" + uuid.NewString()
	d.logger.InfoContext(ctx, "email dispatch (log only)",
		"to", msg.To,
		"subject", msg.Subject,
		"message_id", id,
	)
	return id, nil
}
