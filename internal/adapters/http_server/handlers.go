package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/observability"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/app"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// maxBodyBytes caps POST /properties; image descriptors are URLs, not blobs.
const maxBodyBytes = 1 << 20

type Handlers struct {
	Props    *app.PropertyService
	Q        *app.QueryService
	Verifier domain.TokenVerifier
	Cookie   string
	Limiter  *RateLimiter                    // nil disables write limiting
	Health   func(ctx context.Context) error // optional dependency check for /healthz
}

type errorBody struct {
	Error string `json:"error"`
}

// MountHandlers registers the property routes at the root and again under /api,
// the prefix the website calls them with.
func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)

	routes := func(r chi.Router) {
		r.Get("/properties", h.listProperties)
		r.Get("/properties/{slug}", h.getProperty)
		r.With(h.Limiter.Limit, RequireAuth(h.Verifier, h.Cookie)).Post("/properties", h.createProperty)
	}
	routes(s.mux)
	s.mux.Route("/api", routes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := gojson.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps err to its status and {error} body. Anything that is not a
// *domain.Error is treated as a persistence failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.ErrPersistence.Msg("%s", err.Error()).WithCause(err)
	}
	if de.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("kind", string(de.Kind)).Msg("request failed")
	}
	writeJSON(w, de.Status, errorBody{Error: de.Message})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := gojson.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeError(w, r, domain.ErrPersistence.Msg("failed to encode response"))
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in app.CreatePropertyInput
	if err := gojson.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		log.Warn().Err(err).Msg("create property: undecodable body")
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	p, err := h.Props.Create(r.Context(), in)
	observability.ObserveCreate("http", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Q.Forget(r.Context(), p.Slug)
	if who, ok := PrincipalFrom(r.Context()); ok {
		log.Info().Str("slug", p.Slug).Str("by", who.Subject).Msg("property created via admin")
	}
	writeJSON(w, http.StatusCreated, map[string]any{"property": p})
}

// listProperties serves GET /properties?locale=&includeTranslations=.
// includeTranslations defaults to true.
func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	q := domain.ListQuery{Locale: r.URL.Query().Get("locale"), IncludeTranslations: true}
	if s := r.URL.Query().Get("includeTranslations"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, r, domain.ErrInvalidRequest.Msg("includeTranslations must be a boolean"))
			return
		}
		q.IncludeTranslations = b
	}

	out, err := h.Q.ListProperties(r.Context(), q)
	if err != nil {
		writeError(w, r, domain.ErrPersistence.Msg("Failed to fetch properties").WithCause(err))
		return
	}
	writeCacheable(w, r, map[string]any{"properties": out})
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = negotiateLocale(r.Header.Get("Accept-Language"))
	}

	p, err := h.Q.GetProperty(r.Context(), chi.URLParam(r, "slug"), locale)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrPersistence.Msg("Failed to fetch property").WithCause(err)
		}
		writeError(w, r, err)
		return
	}
	if locale != "" {
		w.Header().Set("Content-Language", locale)
	}
	writeCacheable(w, r, map[string]any{"property": p})
}
