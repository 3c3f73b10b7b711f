package landing

import (
	"embed"
	"fmt"

	"github.com/osteele/liquid"

	"github.com/sherpa/waitlist/internal/config"
	"github.com/sherpa/waitlist/internal/domain"
	"github.com/sherpa/waitlist/internal/waitlist"
)

//go:embed templates/page.liquid
var templateFS embed.FS

// Renderer renders the landing page with the Liquid engine. The template is
// parsed once at construction.
type Renderer struct {
	page *liquid.Template
	site config.SiteConfig
}

// NewRenderer parses the embedded page template.
func NewRenderer(site config.SiteConfig) (*Renderer, error) {
	src, err := templateFS.ReadFile("templates/page.liquid")
	if err != nil {
		return nil, fmt.Errorf("read page template: %w", err)
	}
	engine := liquid.NewEngine()
	tpl, perr := engine.ParseTemplate(src)
	if perr != nil {
		return nil, fmt.Errorf("parse page template: %w", perr)
	}
	return &Renderer{page: tpl, site: site}, nil
}

// Render produces the page for a form in its current state.
func (r *Renderer) Render(f *waitlist.Form, configured bool) ([]byte, error) {
	out, err := r.page.Render(r.bindings(f, configured))
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out, nil
}

func (r *Renderer) bindings(f *waitlist.Form, configured bool) liquid.Bindings {
	ogImage := ""
	if r.site.OGImage != "" {
		ogImage = r.site.AbsoluteURL(r.site.OGImage)
	}
	b := liquid.Bindings{
		"site": map[string]any{
			"title":        r.site.Title,
			"description":  r.site.Description,
			"product_name": r.site.ProductName,
			"base_url":     r.site.BaseURL,
			"locale":       r.site.Locale,
			"og_image":     ogImage,
			"og_image_alt": r.site.OGImageAlt,
		},
		"form": map[string]any{
			"email":                 f.Email(),
			"audience":              string(f.Audience()),
			"business_website":      f.BusinessWebsite(),
			"show_business_website": f.ShowsBusinessWebsite(),
		},
		"configured": configured,
		"status":     nil,
	}
	if s := f.Status(); s != nil {
		b["status"] = statusBinding(*s)
	}
	return b
}

func statusBinding(s domain.StatusMessage) map[string]any {
	return map[string]any{"type": string(s.Kind), "text": s.Text}
}
