package utils

import "go.uber.org/zap"

// Mailer is the fire-and-forget notification side channel. A send
// failure must never fail the triggering mutation, so implementations
// log and move on.
type Mailer interface {
	SendPasswordReset(email, token string)
	SendGroupNotification(email, subject, body string)
}

// LogMailer is the default Mailer: it records what would have been sent.
// A real SMTP/provider implementation slots in behind the same
// interface.
type LogMailer struct {
	Logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendPasswordReset(email, token string) {
	m.Logger.Info("password reset email queued",
		zap.String("email", email), zap.Int("token_len", len(token)))
}

func (m *LogMailer) SendGroupNotification(email, subject, body string) {
	m.Logger.Info("group notification email queued",
		zap.String("email", email), zap.String("subject", subject))
}
