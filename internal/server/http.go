// Package server exposes the router to the UI collaborator over HTTP and
// over MCP on stdio.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/app"
	"github.com/rcliao/forgecore/internal/index"
	"github.com/rcliao/forgecore/internal/journal"
	"github.com/rcliao/forgecore/internal/model"
)

const maxBodySize = 64 << 10

// PromptRequest is the body of POST /route.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// TextRequest is the body of the journal endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// SelectionRequest is the body of PUT /scene/selection.
type SelectionRequest struct {
	Names []string `json:"names"`
}

// NewHandler returns the HTTP API for a.
func NewHandler(a *app.App, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/route", handleRoute(a))
	r.Get("/recent", handleRecent(a))
	r.Get("/goal", handleGetGoal(a))
	r.Post("/goal", handleJournal(a.SetGoal))
	r.Post("/progress", handleJournal(a.AddProgress))
	r.Post("/note", handleJournal(a.AddNote))
	r.Get("/scene", handleScene(a))
	r.Put("/scene/selection", handleSelect(a))
	r.Get("/search", handleSearch(a))
	r.Get("/stats", handleStats(a))
	r.Handle("/metrics", promhttp.HandlerFor(a.Metrics().Registry, promhttp.HandlerOpts{}))

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}

func handleRoute(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PromptRequest
		if !decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "prompt is required")
			return
		}
		res, err := a.Route(r.Context(), req.Prompt)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleJournal(fn func(ctx context.Context, text string) (model.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TextRequest
		if !decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}
		res, err := fn(r.Context(), req.Text)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleRecent(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := parseIntParam(r, "n", 10, 500)
		writeJSON(w, http.StatusOK, a.Recent(n))
	}
}

func handleGetGoal(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := a.Goal()
		if errors.Is(err, journal.ErrNoGoal) {
			httpError(w, http.StatusNotFound, "not_found_error", "no goal set")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func handleScene(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, snap := a.Scene()
		writeJSON(w, http.StatusOK, map[string]any{"summary": sum, "snapshot": snap})
	}
}

func handleSelect(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectionRequest
		if !decode(w, r, &req) {
			return
		}
		if err := a.Select(req.Names...); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		_, snap := a.Scene()
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleSearch(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		hits, err := a.Search(r.Context(), index.SearchParams{
			Query:    q.Get("q"),
			Category: q.Get("category"),
			Status:   q.Get("status"),
			Kind:     q.Get("kind"),
			Limit:    parseIntParam(r, "limit", 20, 200),
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "search: %v", err)
			return
		}
		if hits == nil {
			hits = []index.Hit{}
		}
		writeJSON(w, http.StatusOK, hits)
	}
}

func handleStats(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := a.Stats(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "stats: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
