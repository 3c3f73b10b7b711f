package waitlist

import (
	"strings"

	"github.com/sherpa/waitlist/internal/domain"
)

// State is where a form sits in its submit lifecycle:
// idle -> validating -> (blocked | submitting -> submitted).
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateBlocked    State = "blocked"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

// Form holds the field values of one page visit. The zero value is not
// usable; call NewForm.
type Form struct {
	email           string
	audience        domain.Audience
	businessWebsite string
	honeypot        string
	userAgent       string

	state  State
	status *domain.StatusMessage
}

// NewForm returns an empty form with the Personal variant selected.
func NewForm() *Form {
	return &Form{audience: domain.AudiencePersonal, state: StateIdle}
}

// Field setters are plain state mutations.
func (f *Form) SetEmail(v string)             { f.email = strings.TrimSpace(v) }
func (f *Form) SetAudience(a domain.Audience) { f.audience = a }
func (f *Form) SetBusinessWebsite(v string)   { f.businessWebsite = strings.TrimSpace(v) }
func (f *Form) SetHoneypot(v string)          { f.honeypot = v }
func (f *Form) SetUserAgent(v string)         { f.userAgent = v }
func (f *Form) Email() string                 { return f.email }
func (f *Form) Audience() domain.Audience     { return f.audience }
func (f *Form) BusinessWebsite() string       { return f.businessWebsite }
func (f *Form) State() State                  { return f.state }
func (f *Form) Status() *domain.StatusMessage { return f.status }
func (f *Form) ShowsBusinessWebsite() bool    { return f.audience.ShowsBusinessWebsite() }

// Reset clears the fields after a successful submission. The status message
// is kept so the visitor sees the confirmation.
func (f *Form) Reset() {
	f.email = ""
	f.audience = domain.AudiencePersonal
	f.businessWebsite = ""
	f.honeypot = ""
}

// Submission snapshots the form as a domain value.
func (f *Form) Submission() domain.Submission {
	return domain.Submission{
		Email:           f.email,
		Audience:        f.audience,
		BusinessWebsite: f.businessWebsite,
		UserAgent:       f.userAgent,
	}.Payload()
}
