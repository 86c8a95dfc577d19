// Package web exposes the local control surface the presentation layer
// drives. It only translates HTTP into controller and dispatcher calls; all
// authorization decisions stay in the session controller.
package web

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-openapi/runtime/middleware"
	"github.com/rs/zerolog"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/dispatch"
	"github.com/MauroHerreraJ/vigia/session"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Control holds the dependencies needed by the control handlers.
type Control struct {
	ctrl      *session.Controller
	client    *api.Client
	hold      *dispatch.HoldTrigger
	log       zerolog.Logger
	origins   []string
	wipeGuard func(passcode string) bool
}

// Option configures the Control instance.
type Option func(*Control)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Control) { c.log = log }
}

// WithAllowedOrigins sets the origins permitted by CORS and the websocket
// upgrader.
func WithAllowedOrigins(origins []string) Option {
	return func(c *Control) { c.origins = origins }
}

// WithWipeGuard installs the passcode check gating the wipe endpoint.
// Without a guard every wipe request is refused.
func WithWipeGuard(guard func(passcode string) bool) Option {
	return func(c *Control) { c.wipeGuard = guard }
}

// New creates a Control instance.
func New(ctrl *session.Controller, client *api.Client, hold *dispatch.HoldTrigger, opts ...Option) *Control {
	c := &Control{
		ctrl:    ctrl,
		client:  client,
		hold:    hold,
		log:     zerolog.Nop(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Router returns a chi.Router with all control routes mounted.
func (c *Control) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/openapi.yaml",
		Path:    "docs",
	}, nil))
	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/openapi.yaml",
		Path:    "redoc",
	}, nil))

	r.Get("/v1/session", c.getSession)
	r.Get("/v1/watch", c.watch)
	r.Post("/v1/register/validate", c.validateRegistration)
	r.Post("/v1/register", c.register)
	r.Post("/v1/panic/press", c.panicPress)
	r.Post("/v1/panic/release", c.panicRelease)
	r.Post("/v1/wipe", c.wipe)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the body of every failed control request. Message is
// always actionable text, never a raw error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// mapAPIError translates a remote API failure into an actionable message for
// the user, distinguishing unreachable from rejected per the error policy.
func mapAPIError(w http.ResponseWriter, err error) {
	switch {
	case api.IsUnreachable(err):
		writeError(w, http.StatusServiceUnavailable,
			"Could not reach the server. Check your internet connection and try again.")
	case api.StatusCode(err) == http.StatusNotFound:
		writeError(w, http.StatusNotFound,
			"The account number does not exist in this neighborhood. Check the information entered.")
	case api.StatusCode(err) == http.StatusConflict:
		writeError(w, http.StatusConflict,
			"This account number is already assigned to another device.")
	case api.IsRejected(err):
		writeError(w, http.StatusBadRequest,
			"The server rejected the request. Check the information entered.")
	default:
		writeError(w, http.StatusBadGateway,
			"The server returned an unexpected response. Try again in a moment.")
	}
}
