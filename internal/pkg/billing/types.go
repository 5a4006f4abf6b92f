package billing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/TutorFox/app/models"
)

const (
	EventOrderCreated        = "order_created"
	EventSubscriptionCreated = "subscription_created"
)

// WebhookEvent is a verified Lemon Squeezy notification.
type WebhookEvent struct {
	Raw             []byte
	Signature       string
	EventName       string
	UserEmail       string
	ProviderEventID string
	OccurredAt      *time.Time
}

// Result describes what the gate did with an accepted event.
type Result struct {
	EventName     string
	UserEmail     string
	Applied       bool
	Ignored       bool
	PremiumExpiry *time.Time
}

type lemonSqueezyPayload struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			UserEmail string `json:"user_email"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			CreatedAt *time.Time `json:"created_at"`
		} `json:"attributes"`
	} `json:"data"`
}

// ParseWebhookEvent decodes the fields the gate acts on. It must only be
// called on bytes that already passed signature verification.
func ParseWebhookEvent(raw []byte) (*WebhookEvent, error) {
	var p lemonSqueezyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	eventName := strings.ToLower(strings.TrimSpace(p.Meta.EventName))
	if eventName == "" {
		return nil, fmt.Errorf("webhook payload missing meta.event_name")
	}
	return &WebhookEvent{
		Raw:             raw,
		EventName:       eventName,
		UserEmail:       models.NormalizeEmail(p.Meta.CustomData.UserEmail),
		ProviderEventID: strings.TrimSpace(p.Data.Type + ":" + p.Data.ID),
		OccurredAt:      p.Data.Attributes.CreatedAt,
	}, nil
}

// IsEntitlingEvent reports whether eventName grants premium access.
func IsEntitlingEvent(eventName string) bool {
	switch strings.ToLower(strings.TrimSpace(eventName)) {
	case EventOrderCreated, EventSubscriptionCreated:
		return true
	default:
		return false
	}
}
