package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

type authEventRecord struct {
	ID         uint      `gorm:"primaryKey"`
	Kind       string    `gorm:"size:32;not null;index"`
	UserID     *int64    `gorm:"index"`
	Email      string    `gorm:"size:100;index"`
	Reason     string    `gorm:"size:255"`
	RemoteIP   string    `gorm:"size:64"`
	OccurredAt time.Time `gorm:"not null;index"`
}

func (authEventRecord) TableName() string { return "auth_events" }

// AuditRepository stores auth events in the auth_events table.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	rec := authEventRecord{
		Kind:       string(event.Kind),
		Email:      event.Email,
		Reason:     event.Reason,
		RemoteIP:   event.RemoteIP,
		OccurredAt: event.OccurredAt.UTC(),
	}
	if event.UserID != 0 {
		id := event.UserID
		rec.UserID = &id
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
