package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r.Context())

		log := s.log.With(
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		)
		log.Info("request started")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		t1 := time.Now()

		next.ServeHTTP(ww, r)

		log.Info("request completed",
			slog.Int("status", statusOf(ww)),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("duration", time.Since(t1).String()),
		)
	})
}

// authenticate rejects requests without a valid bearer token and stores the caller's id in the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			s.respondAPIError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "missing or malformed authorization header")
			return
		}

		userID, err := s.tokens.ParseToken(strings.TrimSpace(token))
		if err != nil {
			s.log.Debug("rejected bearer token", slog.String("request_id", getRequestID(r.Context())), sl.Err(err))
			s.respondAPIError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "invalid or expired token")

			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}

	return ww.Status()
}
