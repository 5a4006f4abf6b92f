package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TutorFox/app/models"
	"github.com/ManuelReschke/TutorFox/internal/pkg/metrics"
)

const DefaultPremiumDuration = 30 * 24 * time.Hour

var (
	// ErrWebhookNotConfigured means no shared secret is set. The gate refuses
	// to act rather than skip verification.
	ErrWebhookNotConfigured = errors.New("webhook secret is not configured")
	ErrEmptyPayload         = errors.New("webhook payload is empty")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	// ErrEntitlementStore must surface as a non-2xx so the sender redelivers.
	ErrEntitlementStore = errors.New("entitlement store update failed")
)

// GateConfig is the operator configuration of the webhook gate.
type GateConfig struct {
	Secret          string
	PremiumDuration time.Duration
}

// Gate verifies payment webhooks and applies the premium entitlement.
type Gate struct {
	secret          string
	premiumDuration time.Duration
	repo            Repository
	now             func() time.Time
}

// NewGate creates a gate from an injected repository.
func NewGate(cfg GateConfig, repo Repository) *Gate {
	d := cfg.PremiumDuration
	if d <= 0 {
		d = DefaultPremiumDuration
	}
	return &Gate{
		secret:          cfg.Secret,
		premiumDuration: d,
		repo:            repo,
		now:             time.Now,
	}
}

// Handle runs one delivery through the gate. raw must be the unmodified
// request body and signature the sender supplied header value.
func (g *Gate) Handle(ctx context.Context, raw []byte, signature string) (*Result, error) {
	if g.secret == "" {
		metrics.WebhookOutcomes.WithLabelValues("not_configured").Inc()
		fiberlog.Error("webhook rejected: stage=config error=secret missing")
		return nil, ErrWebhookNotConfigured
	}
	if len(raw) == 0 {
		metrics.WebhookOutcomes.WithLabelValues("empty_payload").Inc()
		return nil, ErrEmptyPayload
	}
	if !VerifyWebhookSignature(raw, signature, g.secret) {
		metrics.WebhookOutcomes.WithLabelValues("invalid_signature").Inc()
		fiberlog.Warnf("webhook rejected: stage=signature bytes=%d", len(raw))
		return nil, ErrInvalidSignature
	}

	event, err := ParseWebhookEvent(raw)
	if err != nil {
		metrics.WebhookOutcomes.WithLabelValues("invalid_payload").Inc()
		fiberlog.Errorf("webhook rejected: stage=parse error=%v", err)
		g.record(ctx, raw, &WebhookEvent{}, models.WebhookStageInvalidPayload, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	event.Signature = signature

	res := &Result{EventName: event.EventName, UserEmail: event.UserEmail}
	if !IsEntitlingEvent(event.EventName) {
		res.Ignored = true
		metrics.WebhookOutcomes.WithLabelValues("ignored").Inc()
		fiberlog.Infof("webhook accepted: stage=ignored event=%s", event.EventName)
		g.record(ctx, raw, event, models.WebhookStageIgnored, nil)
		return res, nil
	}

	if err := (&models.Profile{Email: event.UserEmail}).Validate(); err != nil {
		err = fmt.Errorf("custom_data.user_email %q: %v", event.UserEmail, err)
		metrics.WebhookOutcomes.WithLabelValues("invalid_payload").Inc()
		fiberlog.Errorf("webhook rejected: stage=apply event=%s error=%v", event.EventName, err)
		g.record(ctx, raw, event, models.WebhookStageInvalidPayload, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	expiry := g.expiryFor(event)
	if err := g.repo.GrantPremium(ctx, event.UserEmail, &expiry); err != nil {
		metrics.WebhookOutcomes.WithLabelValues("store_failed").Inc()
		fiberlog.Errorf("webhook failed: stage=apply event=%s email=%s error=%v", event.EventName, event.UserEmail, err)
		g.record(ctx, raw, event, models.WebhookStageStoreFailed, err)
		return nil, fmt.Errorf("%w: %v", ErrEntitlementStore, err)
	}

	res.Applied = true
	res.PremiumExpiry = &expiry
	metrics.WebhookOutcomes.WithLabelValues("applied").Inc()
	fiberlog.Infof("webhook applied: event=%s email=%s premium_expiry=%s", event.EventName, event.UserEmail, expiry.Format(time.RFC3339))
	g.record(ctx, raw, event, models.WebhookStageApplied, nil)
	return res, nil
}

// expiryFor anchors the expiry on the event's own timestamp so that replaying
// a delivery produces the same record.
func (g *Gate) expiryFor(event *WebhookEvent) time.Time {
	base := g.now()
	if event.OccurredAt != nil && !event.OccurredAt.IsZero() {
		base = *event.OccurredAt
	}
	return base.Add(g.premiumDuration).UTC()
}

// record writes the delivery ledger. Failures are logged only; the response
// to the sender depends on the entitlement write alone.
func (g *Gate) record(ctx context.Context, raw []byte, event *WebhookEvent, stage string, processingErr error) {
	sum := sha256.Sum256(raw)
	now := g.now()
	row := &models.BillingWebhookEvent{
		Provider:        models.BillingProviderLemonSqueezy,
		PayloadSHA256:   hex.EncodeToString(sum[:]),
		ProviderEventID: event.ProviderEventID,
		EventName:       event.EventName,
		UserEmail:       event.UserEmail,
		Stage:           stage,
		PayloadJSON:     string(raw),
		ProcessedAt:     &now,
	}
	if processingErr != nil {
		row.ProcessingError = processingErr.Error()
	}
	if err := g.repo.RecordWebhookEvent(ctx, row); err != nil {
		fiberlog.Warnf("webhook ledger write failed: event=%s email=%s stage=%s error=%v", event.EventName, event.UserEmail, stage, err)
	}
}
