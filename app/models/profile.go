package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Profile holds the premium entitlement of a learner, keyed by email.
type Profile struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Email         string     `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	IsPremium     bool       `gorm:"default:false;index" json:"is_premium"`
	PremiumExpiry *time.Time `gorm:"type:timestamp;default:null" json:"premium_expiry,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// NormalizeEmail is the canonical key form used for profile lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPremium reports whether the profile is entitled at the given instant.
// A premium profile without expiry never lapses.
func (p *Profile) HasPremium(at time.Time) bool {
	if p == nil || !p.IsPremium {
		return false
	}
	return p.PremiumExpiry == nil || p.PremiumExpiry.After(at)
}
