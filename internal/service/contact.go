package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/pkg/logger"
	"github.com/shophub/storefront/pkg/validator"
)

// ContactMessage is the contact page form.
type ContactMessage struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" form:"subject" validate:"required,max=200"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

// Normalize trims surrounding whitespace from every field.
func (m *ContactMessage) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
}

// ContactService accepts contact form submissions. Messages are logged and
// dropped; nothing is sent or stored.
type ContactService struct {
	logger *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(logger *slog.Logger) *ContactService {
	return &ContactService{logger: logger}
}

// Submit validates msg and returns the confirmation notice.
func (s *ContactService) Submit(ctx context.Context, msg ContactMessage) (domain.Notice, error) {
	msg.Normalize()
	if err := validator.Validate(msg); err != nil {
		return domain.Notice{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "contact message received",
		slog.String("subject", msg.Subject),
		slog.Int("message_length", utf8.RuneCountInString(msg.Message)),
	)

	return domain.Notice{
		Title:       "Message sent!",
		Description: "We'll get back to you within 24 hours.",
	}, nil
}
