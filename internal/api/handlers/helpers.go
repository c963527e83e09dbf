package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"

	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.WithFields(log.Fields{
			"req_id": obs.RequestID(r.Context()),
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps pipeline errors onto HTTP statuses.
// Upstream failures surface as 502 with their message; unexpected errors stay opaque.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := classify(err)

	entry := log.WithFields(log.Fields{"req_id": obs.RequestID(r.Context()), "op": op}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}

	writeError(w, r, status, msg)
}

func classify(err error) (int, string) {
	var (
		oe *domain.OptimizationError
		de *domain.DirectionsError
		ie *domain.RouteIntegrityError
		ce *domain.CorruptRecordError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidZone), errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "no saved route for this zone"
	case errors.Is(err, domain.ErrZoneBusy):
		return http.StatusConflict, "route generation already running for this zone"
	case errors.Is(err, domain.ErrInsufficientStops):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &ce):
		return http.StatusInternalServerError, "saved route is corrupt"
	case errors.Is(err, domain.ErrNoRoute),
		errors.As(err, &oe),
		errors.As(err, &de),
		errors.As(err, &ie):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
