package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	applog "bakeshop/internal/log"
	"bakeshop/internal/recipes"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the recipe core's error taxonomy onto HTTP statuses:
// NotFoundError to 404, BadRequestError to 400, anything else to 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var notFound *recipes.NotFoundError
	var badRequest *recipes.BadRequestError

	switch {
	case errors.As(err, &notFound):
		writeJSONError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &badRequest):
		writeJSONError(w, http.StatusBadRequest, badRequest.Error())
	default:
		applog.Error(ctx, fallback, "error", err)
		writeJSONError(w, http.StatusInternalServerError, fallback)
	}
}
