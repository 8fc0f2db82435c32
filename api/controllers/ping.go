package controllers

import (
	"net/http"

	"github.com/domiquerendona/domiq-backend/api/middleware"
	"github.com/domiquerendona/domiq-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if profile := middleware.ProfileIDFromContext(r.Context()); profile != "" {
			payload["profile_id"] = profile
		}
		responses.WriteSuccess(w, payload)
	}
}
