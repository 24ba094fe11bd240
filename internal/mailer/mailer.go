// Package mailer contains adapters that deliver organizer notifications.
package mailer

import (
	"context"
	"sync"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"go.uber.org/zap"
)

// Memory records every email it is asked to send.
type Memory struct {
	mu   sync.Mutex
	sent []model.Email
}

// NewMemory returns an empty Memory mailer.
func NewMemory() *Memory {
	return &Memory{}
}

// Send records the email.
func (m *Memory) Send(ctx context.Context, email model.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

// Sent returns a copy of the recorded emails in send order.
func (m *Memory) Sent() []model.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Email, len(m.sent))
	copy(out, m.sent)
	return out
}

// Log writes emails to a zap logger instead of delivering them.
type Log struct {
	logger *zap.Logger
}

// NewLog returns a Log mailer.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Send logs the email at info level.
func (l *Log) Send(_ context.Context, email model.Email) error {
	l.logger.Info("email",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("body", email.Body),
	)
	return nil
}
