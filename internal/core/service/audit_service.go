package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditService returns an AuditService that persists every event it is given.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log, now: time.Now}
}

// Process stamps and stores one audit event.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	if event.Kind == "" {
		return fmt.Errorf("process audit event: %w: missing kind", domain.ErrInvalidInput)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	event.Email = domain.NormalizeEmail(event.Email)

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Int64("user_id", event.UserID).
		Str("reason", event.Reason).
		Msg("audit event stored")
	return nil
}
