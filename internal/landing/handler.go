// Package landing serves the waitlist landing page and its submission
// endpoints.
package landing

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sherpa/waitlist/internal/domain"
	"github.com/sherpa/waitlist/internal/pkg/httputil"
	"github.com/sherpa/waitlist/internal/pkg/logger"
	"github.com/sherpa/waitlist/internal/waitlist"
)

// maxFormBytes caps the HTML form body.
const maxFormBytes = 16 << 10

// Options wires a Handler. Limiter and Redis may be nil.
type Options struct {
	Controller     *waitlist.Controller
	Renderer       *Renderer
	Limiter        *IPRateLimiter
	Redis          Pinger
	AllowedOrigins []string
	// TrustProxyHeaders lets X-Forwarded-For/X-Real-IP set the client IP
	// that rate limiting keys on.
	TrustProxyHeaders bool
}

// Handler serves the landing page.
type Handler struct {
	controller     *waitlist.Controller
	renderer       *Renderer
	limiter        *IPRateLimiter
	redis          Pinger
	allowedOrigins []string
	trustProxy     bool
	started        time.Time
}

// NewHandler creates a Handler from its dependencies.
func NewHandler(opts Options) *Handler {
	return &Handler{
		controller:     opts.Controller,
		renderer:       opts.Renderer,
		limiter:        opts.Limiter,
		redis:          opts.Redis,
		allowedOrigins: opts.AllowedOrigins,
		trustProxy:     opts.TrustProxyHeaders,
		started:        time.Now(),
	}
}

// Routes builds the router for the whole site.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Forwarding headers are client-controlled unless a proxy rewrites them.
	if h.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)

	r.Get("/", h.HandlePage)
	r.Get("/health", h.HandleHealth)

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}
		r.Post("/waitlist", h.HandleFormSubmit)
	})

	r.Route("/api", func(r chi.Router) {
		if len(h.allowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: h.allowedOrigins,
				AllowedMethods: []string{"POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}
		r.Post("/waitlist", h.HandleAPISubmit)
	})

	return r
}

// HandlePage renders an empty form. ?audience=Enterprise preselects the
// Enterprise variant.
//
//	GET /
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	f := waitlist.NewForm()
	if aud, err := domain.ParseAudience(r.URL.Query().Get("audience")); err == nil {
		f.SetAudience(aud)
	}
	h.writePage(w, http.StatusOK, f)
}

// HandleFormSubmit runs a submission posted by the page itself and renders
// the page again with the outcome.
//
//	POST /waitlist
func (h *Handler) HandleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	f := waitlist.NewForm()
	f.SetEmail(r.PostFormValue("email"))
	// Tampered radio values fall back to Personal.
	if aud, err := domain.ParseAudience(r.PostFormValue("userType")); err == nil {
		f.SetAudience(aud)
	}
	f.SetBusinessWebsite(r.PostFormValue("businessWebsite"))
	f.SetHoneypot(r.PostFormValue("nickname"))
	f.SetUserAgent(r.UserAgent())

	res := h.controller.Submit(r.Context(), f)

	status := http.StatusOK
	if res.State == waitlist.StateBlocked {
		status = http.StatusUnprocessableEntity
	}
	h.writePage(w, status, f)
}

// SubmitRequest is the JSON body accepted by the API endpoint.
type SubmitRequest struct {
	Email           string `json:"email"`
	UserType        string `json:"user_type"`
	BusinessWebsite string `json:"business_website"`
	Nickname        string `json:"nickname"`
}

// SubmitResponse reports the controller outcome to script clients.
type SubmitResponse struct {
	State  waitlist.State        `json:"state"`
	Status *domain.StatusMessage `json:"status,omitempty"`
}

// HandleAPISubmit is the JSON counterpart of HandleFormSubmit.
//
//	POST /api/waitlist
func (h *Handler) HandleAPISubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	aud, err := domain.ParseAudience(req.UserType)
	if errors.Is(err, domain.ErrUnknownAudience) {
		httputil.BadRequest(w, "user_type must be Personal or Enterprise")
		return
	}

	f := waitlist.NewForm()
	f.SetEmail(req.Email)
	f.SetAudience(aud)
	f.SetBusinessWebsite(req.BusinessWebsite)
	f.SetHoneypot(req.Nickname)
	f.SetUserAgent(r.UserAgent())

	res := h.controller.Submit(r.Context(), f)

	status := http.StatusOK
	if res.State == waitlist.StateBlocked {
		status = http.StatusUnprocessableEntity
	}
	httputil.JSON(w, status, SubmitResponse{State: res.State, Status: res.Status})
}

func (h *Handler) writePage(w http.ResponseWriter, status int, f *waitlist.Form) {
	body, err := h.renderer.Render(f, h.controller.Configured())
	if err != nil {
		logger.Error("landing: render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
