package webhook

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sherpa/waitlist/internal/config"
	"github.com/sherpa/waitlist/internal/domain"
)

// Wire field names expected by the spreadsheet script.
const (
	fieldEmail           = "email"
	fieldUserType        = "user_type"
	fieldBusinessWebsite = "business_website"
	fieldUserAgent       = "user_agent"
)

// Encode renders the submission payload in the given encoding and returns
// the body with its Content-Type.
func Encode(sub domain.Submission, encoding string) ([]byte, string, error) {
	p := sub.Payload()
	switch encoding {
	case config.EncodingJSON, "":
		body, err := json.Marshal(p)
		if err != nil {
			return nil, "", fmt.Errorf("webhook: marshal submission: %w", err)
		}
		return body, "application/json", nil
	case config.EncodingForm:
		v := url.Values{}
		v.Set(fieldEmail, p.Email)
		v.Set(fieldUserType, string(p.Audience))
		v.Set(fieldBusinessWebsite, p.BusinessWebsite)
		v.Set(fieldUserAgent, p.UserAgent)
		return []byte(v.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return nil, "", fmt.Errorf("webhook: unsupported encoding %q", encoding)
	}
}
