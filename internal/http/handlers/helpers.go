package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agendasalud/clinic-platform/internal/gateway"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// gatewayError maps gateway failures onto an HTTP status, passing the
// server-supplied message through untouched.
func gatewayError(w http.ResponseWriter, err error) {
	var notFound *gateway.NotFoundError
	if errors.As(err, &notFound) {
		jsonError(w, http.StatusNotFound, notFound.Message)
		return
	}
	var reqErr *gateway.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Message
		if msg == "" {
			msg = "request failed"
		}
		jsonError(w, http.StatusBadGateway, msg)
		return
	}
	jsonError(w, http.StatusBadGateway, err.Error())
}
