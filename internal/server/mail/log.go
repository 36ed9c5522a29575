package mail

import (
	"context"

	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
)

// LogSender writes messages to the log instead of sending them. It is the
// development backend.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log.With("module", "mail")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info(ctx, "mail not sent, log backend", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
