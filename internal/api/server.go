// Package api exposes the HTTP interface for the bookmark service.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/ingest"
	"github.com/sohee-an/smart-bookmark-app/internal/metrics"
	metricsmw "github.com/sohee-an/smart-bookmark-app/internal/middleware"
	"github.com/sohee-an/smart-bookmark-app/internal/store"
)

// User-facing messages owned by the HTTP layer.
const (
	MsgMissingURL       = "URL이 누락되었습니다."
	MsgServerError      = "분석 중 예기치 않은 오류가 발생했습니다."
	MsgQuotaExceeded    = "무료 체험 한도(5개)를 초과했습니다. 로그인이 필요합니다."
	msgMethodNotAllowed = "Method not allowed"
)

// GuestIDHeader carries the anonymous partition id. When a request
// arrives with neither identity header, the server mints a guest id and
// echoes it back so the client can persist it.
const (
	UserIDHeader  = "X-User-ID"
	GuestIDHeader = "X-Guest-ID"
)

// Server wires HTTP handlers to the ingestion orchestrator and the
// repository selector.
type Server struct {
	router   chi.Router
	ingestor *ingest.Orchestrator
	stores   *store.Selector
	idGen    bookmark.IDGenerator
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	ingestor *ingest.Orchestrator,
	stores *store.Selector,
	idGen bookmark.IDGenerator,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ingestor: ingestor,
		stores:   stores,
		idGen:    idGen,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(metricsmw.Middleware)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/process-url", s.processURL)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/bookmarks", func(r chi.Router) {
			r.Post("/", s.createBookmark)
			r.Get("/", s.listBookmarks)
			r.Delete("/", s.removeAllBookmarks)
			r.Get("/count", s.countBookmarks)
			r.Route("/{bookmark_id}", func(r chi.Router) {
				r.Get("/", s.getBookmark)
				r.Patch("/", s.updateBookmark)
				r.Delete("/", s.deleteBookmark)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// owner resolves the storage identity for a request. An anonymous
// request without a guest id gets one minted and echoed in the
// response headers.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (bookmark.Identity, error) {
	if userID := r.Header.Get(UserIDHeader); userID != "" {
		return bookmark.Identity{UserID: userID}, nil
	}
	guestID := r.Header.Get(GuestIDHeader)
	if guestID == "" {
		var err error
		guestID, err = s.idGen.NewID()
		if err != nil {
			return bookmark.Identity{}, fmt.Errorf("generate guest id: %w", err)
		}
		w.Header().Set(GuestIDHeader, guestID)
	}
	return bookmark.Identity{GuestID: guestID}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}
