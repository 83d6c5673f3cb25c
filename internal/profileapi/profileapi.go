// Package profileapi serves the two endpoints the editor persists through:
// GET /api/profile/get-state/{username} and POST /api/profile/save-state.
package profileapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pagesmith/internal/editor"
	"pagesmith/internal/idgen"
	"pagesmith/internal/persist"
)

var requestIDs = idgen.Prefixed("req_", idgen.NanoID(12))

// DefaultMaxBody caps the size of a saved document.
const DefaultMaxBody = 1 << 20

type Options struct {
	Logger *zap.Logger
	// Tokens maps bearer tokens to usernames. Requests without a known
	// token fall back to the X-Profile-User header, which must only be
	// trusted behind an authenticating proxy.
	Tokens  map[string]string
	MaxBody int64
}

type Service struct {
	store   persist.Store
	logger  *zap.Logger
	tokens  map[string]string
	maxBody int64
}

func New(store persist.Store, opts Options) *Service {
	s := &Service{store: store, logger: opts.Logger, tokens: opts.Tokens, maxBody: opts.MaxBody}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBody
	}
	return s
}

// RegisterHTTP mounts the endpoints on r.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get(persist.GetStatePath+"{username}", s.handleGetState)
	r.Post(persist.SaveStatePath, s.handleSaveState)
}

// Router returns a standalone router with recovery and request ids.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)
	s.RegisterHTTP(r)
	return r
}

// requestID tags each request with an id, echoed in X-Request-ID, unless
// the caller already sent one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = requestIDs()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Service) handleGetState(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}
	doc, err := s.store.Load(r.Context(), username)
	if errors.Is(err, persist.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no saved state")
		return
	}
	if err != nil {
		s.logger.Error("load state", zap.String("user", username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load failed")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Service) handleSaveState(w http.ResponseWriter, r *http.Request) {
	username := s.user(r)
	if username == "" {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}
	doc, err := editor.ParseDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed document")
		return
	}
	if err := s.store.Save(r.Context(), username, persist.Sanitize(doc)); err != nil {
		s.logger.Error("save state", zap.String("user", username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "components": doc.Len()})
}

func (s *Service) user(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return s.tokens[strings.TrimPrefix(auth, "Bearer ")]
	}
	return strings.TrimSpace(r.Header.Get(persist.UserHeader))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
