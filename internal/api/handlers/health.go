package handlers

import (
	"net/http"
	"zust-route-service/internal/api/dto"
	"zust-route-service/internal/domain"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{"status": "ok"}
	writeJSON(w, r, http.StatusOK, res)
}

// Profiles lists the travel modes a route can be generated for.
func Profiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.ProfilesResponse{
		Default:  domain.DefaultProfile,
		Profiles: domain.Profiles(),
	})
}
