package domain

// StatusKind classifies the message shown above the form.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
	StatusInfo    StatusKind = "info"
)

// StatusMessage is the inline feedback rendered with the form.
type StatusMessage struct {
	Kind StatusKind `json:"type"`
	Text string     `json:"text"`
}

// Canonical messages shown to visitors.
var (
	MessageInvalidEmail    = StatusMessage{Kind: StatusError, Text: "Please enter a valid email address."}
	MessageInvalidAudience = StatusMessage{Kind: StatusError, Text: "Please choose Personal or Enterprise."}
	MessageComingSoon      = StatusMessage{Kind: StatusInfo, Text: "Waitlist opening soon — check back later."}
	MessageJoined          = StatusMessage{Kind: StatusSuccess, Text: "You're on the list. We'll reach out soon."}
)
