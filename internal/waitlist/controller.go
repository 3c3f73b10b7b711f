// Package waitlist implements the waitlist form controller: it validates a
// visitor's form, filters bots, and hands accepted signups to the webhook
// dispatcher without waiting for delivery.
package waitlist

import (
	"context"
	"errors"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/sherpa/waitlist/internal/domain"
	"github.com/sherpa/waitlist/internal/pkg/logger"
)

// releaseTimeout bounds the Redis call that hands a claim back after a
// failed delivery.
const releaseTimeout = 3 * time.Second

// Dispatcher sends an accepted submission. Dispatch must not block on the
// network. onFailure, when non-nil, runs once if delivery fails.
type Dispatcher interface {
	Configured() bool
	Dispatch(id string, sub domain.Submission, onFailure func())
}

// Guard reports whether an email may be forwarded now. A nil Guard allows
// everything. Release hands a claim back so the visitor can retry.
type Guard interface {
	Claim(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

// Result describes what Submit did.
type Result struct {
	ID         string
	State      State
	Status     *domain.StatusMessage
	Dispatched bool
}

// Controller runs form submissions.
type Controller struct {
	dispatcher Dispatcher
	guard      Guard
	policy     *bluemonday.Policy
}

// NewController creates a Controller. guard may be nil.
func NewController(d Dispatcher, guard Guard) *Controller {
	return &Controller{
		dispatcher: d,
		guard:      guard,
		policy:     bluemonday.StrictPolicy(),
	}
}

// Validate applies the basic local@domain.tld check.
func Validate(email string) bool {
	return domain.ValidEmail(email)
}

// Configured reports whether submissions can be forwarded at all.
func (c *Controller) Configured() bool {
	return c.dispatcher != nil && c.dispatcher.Configured()
}

// Submit runs one submission attempt against the form and updates its state
// and status message in place.
func (c *Controller) Submit(ctx context.Context, f *Form) Result {
	f.state = StateValidating
	f.status = nil

	if !Validate(f.email) {
		msg := domain.MessageInvalidEmail
		f.state, f.status = StateBlocked, &msg
		return Result{State: f.state, Status: f.status}
	}

	if f.honeypot != "" {
		logger.Info("waitlist: honeypot tripped", "user_agent", f.userAgent)
		f.state = StateIdle
		return Result{State: f.state}
	}

	if !c.Configured() {
		msg := domain.MessageComingSoon
		f.state, f.status = StateIdle, &msg
		return Result{State: f.state, Status: f.status}
	}

	f.state = StateSubmitting
	id := uuid.NewString()
	sub := f.Submission()
	sub.BusinessWebsite = c.normalizeWebsite(id, sub.BusinessWebsite)

	if err := sub.Validate(); err != nil {
		logger.Warn("waitlist: submission rejected", "submission_id", id, "error", err)
		msg := domain.MessageInvalidEmail
		if errors.Is(err, domain.ErrUnknownAudience) {
			msg = domain.MessageInvalidAudience
		}
		f.state, f.status = StateBlocked, &msg
		return Result{ID: id, State: f.state, Status: f.status}
	}

	dispatched := false
	if ok, claimed := c.claim(ctx, id, sub.Email); ok {
		var onFailure func()
		if claimed {
			onFailure = c.releaseFunc(id, sub.Email)
		}
		c.dispatcher.Dispatch(id, sub, onFailure)
		dispatched = true
	}

	logger.Info("waitlist: submission accepted",
		"submission_id", id,
		"email", sub.Email,
		"user_type", sub.Audience,
		"dispatched", dispatched)

	msg := domain.MessageJoined
	f.state, f.status = StateSubmitted, &msg
	f.Reset()
	return Result{ID: id, State: f.state, Status: f.status, Dispatched: dispatched}
}

// claim consults the duplicate guard. ok reports whether to dispatch;
// claimed reports whether the guard now holds a key for the email. Guard
// failures let the submission through unclaimed.
func (c *Controller) claim(ctx context.Context, id, email string) (ok, claimed bool) {
	if c.guard == nil {
		return true, false
	}
	got, err := c.guard.Claim(ctx, email)
	if err != nil {
		logger.Warn("waitlist: duplicate guard unavailable", "submission_id", id, "error", err)
		return true, false
	}
	if !got {
		logger.Info("waitlist: duplicate submission skipped", "submission_id", id, "email", email)
	}
	return got, got
}

// releaseFunc returns the callback that frees a claim when delivery fails,
// so a retry inside the duplicate window is forwarded.
func (c *Controller) releaseFunc(id, email string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := c.guard.Release(ctx, email); err != nil {
			logger.Warn("waitlist: duplicate claim not released", "submission_id", id, "error", err)
			return
		}
		logger.Info("waitlist: duplicate claim released", "submission_id", id)
	}
}

// normalizeWebsite strips markup, prefixes a scheme when the visitor typed a
// bare domain, and drops anything that is not an http(s) address.
func (c *Controller) normalizeWebsite(id, raw string) string {
	// Sanitize escapes entities; undo that so query strings survive.
	site := strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(raw)))
	if site == "" {
		return ""
	}
	if strings.Contains(site, "://") {
		u, err := url.Parse(site)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			logger.Info("waitlist: business website dropped", "submission_id", id)
			return ""
		}
		return site
	}
	if hasForeignScheme(site) {
		logger.Info("waitlist: business website dropped", "submission_id", id)
		return ""
	}
	return "https://" + site
}

// hasForeignScheme reports values like mailto:x or javascript:... that parse
// with a scheme but no authority. host:port forms such as localhost:3000 do
// not count.
func hasForeignScheme(site string) bool {
	u, err := url.Parse(site)
	if err != nil || u.Scheme == "" || strings.Contains(u.Scheme, ".") {
		return false
	}
	return !isPort(u.Opaque)
}

func isPort(opaque string) bool {
	port, _, _ := strings.Cut(opaque, "/")
	if port == "" {
		return false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
