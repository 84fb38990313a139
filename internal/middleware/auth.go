// Package middleware provides the HTTP middleware for the campaign server.
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

// AdminAuth guards the admin endpoints with a bearer secret shared with the
// staff dashboard.
type AdminAuth struct {
	secret string
	log    *logger.Logger
}

// NewAdminAuth creates the admin authentication middleware. An empty secret
// rejects every request rather than opening the endpoints up.
func NewAdminAuth(secret string, log *logger.Logger) *AdminAuth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &AdminAuth{secret: secret, log: log}
}

// Handler returns the middleware handler.
func (m *AdminAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.authorized(r) {
			m.log.WithFields(map[string]interface{}{
				"path":   r.URL.Path,
				"method": r.Method,
			}).Warn("unauthorized admin request")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AdminAuth) authorized(r *http.Request) bool {
	if m.secret == "" {
		return false
	}

	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.secret)) == 1
}
