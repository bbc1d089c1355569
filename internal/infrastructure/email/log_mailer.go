package email

import (
	"context"
	"sync"

	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogMailer records emails instead of sending them. It backs
// EMAIL_TRANSPORT=log for local runs.
type LogMailer struct {
	logger *zap.Logger
	mu     sync.Mutex
	sent   []interfaces.Email
}

var _ interfaces.IMailer = (*LogMailer)(nil)

func NewLogMailer(l *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.OrNop(l)}
}

func (m *LogMailer) Send(_ context.Context, e interfaces.Email) (string, error) {
	id := "log-" + uuid.NewString()
	m.mu.Lock()
	m.sent = append(m.sent, e)
	m.mu.Unlock()
	m.logger.Info("[email][log] message captured",
		zap.String("message_id", id),
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.Int("attachments", len(e.Attachments)),
		zap.String("text", e.Text),
	)
	return id, nil
}

func (m *LogMailer) Sent() []interfaces.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]interfaces.Email, len(m.sent))
	copy(out, m.sent)
	return out
}
