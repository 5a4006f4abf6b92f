package billing

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/TutorFox/app/models"
)

// Repository provides DB operations used by the webhook gate.
type Repository interface {
	// GrantPremium upserts the profile for email as premium. It never reads
	// the row first; replays and reordering converge on the latest expiry.
	GrantPremium(ctx context.Context, email string, expiry *time.Time) error
	RecordWebhookEvent(ctx context.Context, event *models.BillingWebhookEvent) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GrantPremium(ctx context.Context, email string, expiry *time.Time) error {
	return r.grantPremium(ctx, email, expiry).Error
}

func (r *gormRepository) RecordWebhookEvent(ctx context.Context, event *models.BillingWebhookEvent) error {
	return r.recordWebhookEvent(ctx, event).Error
}

// grantPremium relies on the unique index on profiles.email; MySQL picks the
// conflicting key from the table, not from the statement.
func (r *gormRepository) grantPremium(ctx context.Context, email string, expiry *time.Time) *gorm.DB {
	profile := &models.Profile{
		Email:         email,
		IsPremium:     true,
		PremiumExpiry: expiry,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_premium": true,
			// Keep the later expiry so out-of-order deliveries commute.
			"premium_expiry": gorm.Expr("GREATEST(COALESCE(premium_expiry, VALUES(premium_expiry)), COALESCE(VALUES(premium_expiry), premium_expiry))"),
			"updated_at":     time.Now(),
		}),
	}).Create(profile)
}

func (r *gormRepository) recordWebhookEvent(ctx context.Context, event *models.BillingWebhookEvent) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "payload_sha256"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"stage":            event.Stage,
			"processing_error": event.ProcessingError,
			"processed_at":     event.ProcessedAt,
			"updated_at":       time.Now(),
		}),
	}).Create(event)
}
