package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kalambet/folio/internal/profile"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Field limits enforced at the HTTP boundary.
const (
	maxEducationLen          = 500
	maxWorkTitleLen          = 100
	maxWorkDescriptionLen    = 2000
	maxProjectTitleLen       = 120
	maxProjectDescriptionLen = 3000
)

// maxSearchLimit caps the page size a client may ask for.
const maxSearchLimit = 100

// Pinger reports whether a backing dependency is reachable.
// Implemented by *storage.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AppDeps struct {
	Service     *profile.Service
	Store       Pinger // optional; /health pings it when set
	Credentials Credentials
	RateLimits  RateLimits
	CORSOrigins []string
	Metrics     *Metrics // optional; a private registry is created if nil
}

// NewAppHandler returns the HTTP API: /health, /metrics and the
// authenticated, rate-limited /api/user routes.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	readLimiter := newClientLimiter("read", deps.RateLimits.Window, deps.RateLimits.ReadMax, deps.Metrics)
	writeLimiter := newClientLimiter("write", deps.RateLimits.Window, deps.RateLimits.WriteMax, deps.Metrics)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	auth := BasicAuth(deps.Credentials)
	r.Route("/api/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(readLimiter.Middleware, auth)
			r.Get("/profile", handleGetProfile(deps))
			r.Get("/project/search", handleSearchProjects(deps))
		})
		r.Group(func(r chi.Router) {
			r.Use(writeLimiter.Middleware, auth)
			r.Put("/profile", handleUpdateProfile(deps))
			r.Post("/work", handleAddWork(deps))
			r.Put("/links", handleReplaceLinks(deps))
			r.Post("/project/add", handleAddProject(deps))
			r.Put("/project/update", handleUpdateProject(deps))
			r.Delete("/project/delete", handleDeleteProject(deps))
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store != nil {
			if err := deps.Store.Ping(r.Context()); err != nil {
				slog.Error("health check failed", "error", err)
				httpError(w, http.StatusServiceUnavailable, "Storage unavailable")
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"OK"}`))
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Service.GetProfile(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, p)
	}
}

func handleUpdateProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profile.ProfileUpdate
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Education != nil {
			education := strings.TrimSpace(*req.Education)
			if utf8.RuneCountInString(education) > maxEducationLen {
				httpError(w, http.StatusBadRequest, "education must be at most %d characters", maxEducationLen)
				return
			}
			req.Education = &education
		}

		p, err := deps.Service.UpdateProfile(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, p)
	}
}

func handleAddWork(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profile.WorkInput
		if !decodeBody(w, r, &req) {
			return
		}
		if msg := checkLen("title", req.Title, maxWorkTitleLen); msg != "" {
			httpError(w, http.StatusBadRequest, "%s", msg)
			return
		}
		if msg := checkLen("description", req.Description, maxWorkDescriptionLen); msg != "" {
			httpError(w, http.StatusBadRequest, "%s", msg)
			return
		}

		work, err := deps.Service.AddWork(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, map[string]any{"work": work})
	}
}

func handleReplaceLinks(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Links profile.Links `json:"links"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Links == nil {
			httpError(w, http.StatusBadRequest, "links is required")
			return
		}

		links, err := deps.Service.ReplaceLinks(r.Context(), req.Links)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, map[string]any{"links": links})
	}
}

// projectRequest is the body of project add and update. Skills is a pointer
// so a missing field can be told apart from an empty list.
type projectRequest struct {
	ProjectID   string                `json:"projectId"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Skills      *[]string             `json:"skills"`
	Links       []profile.ProjectLink `json:"links"`
}

func (p projectRequest) validate() string {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" || p.Skills == nil {
		return "All fields are required"
	}
	if msg := checkLen("title", p.Title, maxProjectTitleLen); msg != "" {
		return msg
	}
	return checkLen("description", p.Description, maxProjectDescriptionLen)
}

func (p projectRequest) input() profile.ProjectInput {
	in := profile.ProjectInput{
		Title:       p.Title,
		Description: p.Description,
		Links:       p.Links,
	}
	if p.Skills != nil {
		in.Skills = *p.Skills
	}
	return in
}

func handleAddProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if msg := req.validate(); msg != "" {
			httpError(w, http.StatusBadRequest, "%s", msg)
			return
		}

		projects, err := deps.Service.AddProject(r.Context(), req.input())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, map[string]any{"projects": projects})
	}
}

func handleUpdateProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ProjectID) == "" {
			httpError(w, http.StatusBadRequest, "Project ID is required")
			return
		}
		if msg := req.validate(); msg != "" {
			httpError(w, http.StatusBadRequest, "%s", msg)
			return
		}

		projects, err := deps.Service.UpdateProject(r.Context(), req.ProjectID, req.input())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, map[string]any{"projects": projects})
	}
}

func handleDeleteProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProjectID string `json:"projectId"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ProjectID) == "" {
			httpError(w, http.StatusBadRequest, "Project ID is required")
			return
		}

		projects, err := deps.Service.DeleteProject(r.Context(), req.ProjectID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, map[string]any{"projects": projects})
	}
}

func handleSearchProjects(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := profile.SearchParams{
			Query: q.Get("searchQuery"),
			Page:  parseIntParam(r, "page", profile.DefaultPage, 0),
			Limit: parseIntParam(r, "limit", profile.DefaultLimit, maxSearchLimit),
		}
		if raw := q.Get("skills"); raw != "" {
			params.Skills = strings.Split(raw, ",")
		}

		res, err := deps.Service.SearchProjects(r.Context(), params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, res)
	}
}

func checkLen(field, value string, max int) string {
	if utf8.RuneCountInString(strings.TrimSpace(value)) > max {
		return field + " must be at most " + strconv.Itoa(max) + " characters"
	}
	return ""
}

// parseIntParam reads a positive integer query parameter. Missing, malformed
// or non-positive values yield defaultVal; maxVal > 0 caps the result.
func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
