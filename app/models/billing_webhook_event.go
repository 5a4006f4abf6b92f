package models

import "time"

const (
	BillingProviderLemonSqueezy = "lemonsqueezy"
)

// Webhook processing stages recorded on the delivery ledger.
const (
	WebhookStageApplied        = "applied"
	WebhookStageIgnored        = "ignored"
	WebhookStageInvalidPayload = "invalid_payload"
	WebhookStageStoreFailed    = "store_failed"
)

// BillingWebhookEvent is the delivery ledger for verified payment webhooks.
// Rows are keyed by the SHA-256 of the raw payload so redeliveries update the
// same row instead of adding new ones.
type BillingWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index" json:"provider"`
	PayloadSHA256   string     `gorm:"column:payload_sha256;type:char(64);not null;uniqueIndex" json:"payload_sha256"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:''" json:"provider_event_id"`
	EventName       string     `gorm:"type:varchar(100);not null;index" json:"event_name"`
	UserEmail       string     `gorm:"type:varchar(200);not null;default:'';index" json:"user_email"`
	Stage           string     `gorm:"type:varchar(32);not null;index" json:"stage"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
