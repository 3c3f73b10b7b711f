package domain

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrUnknownAudience = errors.New("unknown audience")
)

// Audience enumerates the two variants the landing page offers.
type Audience string

const (
	AudiencePersonal   Audience = "Personal"
	AudienceEnterprise Audience = "Enterprise"
)

// ParseAudience maps a form or query value to an Audience. Matching is
// case-insensitive; the empty string selects Personal.
func ParseAudience(s string) (Audience, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "personal":
		return AudiencePersonal, nil
	case "enterprise":
		return AudienceEnterprise, nil
	default:
		return AudiencePersonal, ErrUnknownAudience
	}
}

// ShowsBusinessWebsite reports whether the variant collects a business URL.
func (a Audience) ShowsBusinessWebsite() bool { return a == AudienceEnterprise }

// emailPattern requires a non-whitespace local part, an @, and a domain with
// a dot-separated suffix. Deliverability is never checked.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email has the basic local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Submission is a single waitlist signup as forwarded to the webhook.
type Submission struct {
	Email           string   `json:"email"`
	Audience        Audience `json:"user_type"`
	BusinessWebsite string   `json:"business_website"`
	UserAgent       string   `json:"user_agent"`
}

// Validate checks the invariants a submission must hold before dispatch.
func (s Submission) Validate() error {
	if !ValidEmail(s.Email) {
		return ErrInvalidEmail
	}
	if s.Audience != AudiencePersonal && s.Audience != AudienceEnterprise {
		return ErrUnknownAudience
	}
	return nil
}

// Payload returns the submission as sent over the wire. The business website
// is blanked for every audience that does not collect it.
func (s Submission) Payload() Submission {
	if !s.Audience.ShowsBusinessWebsite() {
		s.BusinessWebsite = ""
	}
	return s
}
