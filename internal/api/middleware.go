package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type authedHandler func(w http.ResponseWriter, r *http.Request, caller domain.Principal)

// requireAuth answers 401 "No token" without a bearer token and 401
// "Unauthorized" when the token does not verify.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		scheme, token, _ := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "No token"})
			return
		}

		caller, err := s.auth.Authenticate(token)
		if err != nil {
			s.logger.Debug("token rejected", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
			return
		}
		next(w, r, caller)
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	origin := strings.TrimSpace(s.cfg.FrontendURL)
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
