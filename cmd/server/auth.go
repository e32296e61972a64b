package main

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const adminTokenHeader = "X-Admin-Token"

// requireAdminToken guards admin routes. With no token configured the admin
// surface is disabled entirely.
func (s *server) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeJSONError(w, http.StatusForbidden, "admin endpoints are disabled")
			return
		}

		provided := r.Header.Get(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.adminToken)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("ip", r.RemoteAddr),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}

		switch {
		case status >= 500:
			s.logger.Error("server error", fields...)
		case status >= 400:
			s.logger.Warn("client error", fields...)
		default:
			s.logger.Info("request", fields...)
		}
	})
}
