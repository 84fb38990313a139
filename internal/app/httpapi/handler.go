// Package httpapi exposes the campaign REST API: the public spin and
// code-validation endpoints and the bearer-guarded admin surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	app "github.com/rakkenlabs/qr-campaign/internal/app"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/services/draw"
	"github.com/rakkenlabs/qr-campaign/internal/app/services/redemption"
	"github.com/rakkenlabs/qr-campaign/internal/middleware"
	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the campaign REST API. Admin routes
// are guarded by the bearer secret.
func NewHandler(application *app.Application, adminSecret string, log *logger.Logger) *mux.Router {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/api/spin", h.spin).Methods(http.MethodPost)
	r.HandleFunc("/api/validate-code", h.validateCode).Methods(http.MethodGet)

	adminRouter := r.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(middleware.NewAdminAuth(adminSecret, log).Handler)
	adminRouter.HandleFunc("/codes", h.listCodes).Methods(http.MethodGet)
	adminRouter.HandleFunc("/codes", h.claimCode).Methods(http.MethodPost)
	adminRouter.HandleFunc("/stats", h.stats).Methods(http.MethodGet)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) spin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.app.Draw.Attempt(r.Context(), payload.Phone, clientIP(r))
	switch {
	case err == nil:
	case errors.Is(err, draw.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, "Invalid phone number.")
		return
	case errors.Is(err, draw.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many attempts. Try again later.")
		return
	case errors.Is(err, draw.ErrAlreadyPlayed):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":         "This number has already played.",
			"alreadyPlayed": true,
		})
		return
	default:
		h.log.WithError(err).Error("spin failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if result.Won {
		writeJSON(w, http.StatusOK, map[string]interface{}{"won": true, "code": result.Code})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"won": false, "redirectUrl": result.RedirectURL})
}

func (h *handler) validateCode(w http.ResponseWriter, r *http.Request) {
	c, err := h.app.Redemption.Lookup(r.Context(), r.URL.Query().Get("code"))
	switch {
	case errors.Is(err, redemption.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, "Invalid code.")
		return
	case errors.Is(err, redemption.ErrCodeNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"valid":   false,
			"message": "Code not found.",
		})
		return
	case err != nil:
		h.log.WithError(err).Error("code lookup failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":     true,
		"code":      c.Code,
		"claimed":   c.Claimed,
		"claimedAt": nullableTime(c.ClaimedAt),
		"createdAt": c.CreatedAt,
	})
}

func (h *handler) listCodes(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}

	result, err := h.app.Redemption.List(r.Context(), page)
	if err != nil {
		h.log.WithError(err).Error("list codes failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	codes := make([]map[string]interface{}, 0, len(result.Codes))
	for _, c := range result.Codes {
		codes = append(codes, codeRow(c))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"codes":    codes,
		"total":    result.Total,
		"page":     result.Page,
		"pageSize": result.PageSize,
	})
}

func (h *handler) claimCode(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil || strings.TrimSpace(payload.Code) == "" {
		writeError(w, http.StatusBadRequest, "Code required.")
		return
	}

	c, err := h.app.Redemption.Claim(r.Context(), payload.Code)
	switch {
	case errors.Is(err, redemption.ErrInvalidCode), errors.Is(err, redemption.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "Code not found or already claimed.")
		return
	case err != nil:
		h.log.WithError(err).Error("claim failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "code": c.Code})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Stats.Compute(r.Context())
	if err != nil {
		h.log.WithError(err).Error("stats failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalScans":    summary.TotalScans,
		"totalWins":     summary.TotalWins,
		"totalClaimed":  summary.TotalClaimed,
		"winRateActual": summary.WinRateActual,
	})
}

func codeRow(c wincode.ListedCode) map[string]interface{} {
	return map[string]interface{}{
		"code":      c.Code.Code,
		"claimed":   c.Claimed,
		"claimedAt": nullableTime(c.ClaimedAt),
		"createdAt": c.CreatedAt,
		"ipAddress": c.IPAddress,
	}
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// clientIP extracts the request origin, preferring the first forwarded hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
