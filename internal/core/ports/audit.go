package ports

import (
	"context"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService processes a single audit event off the request path.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// AuditRecorder accepts events from request handlers without blocking them.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
