package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// ValidationErrorResponse lists the rejected fields by their JSON name
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// decodeRequest reads exactly one JSON document into a T and validates it.
// When ok is false the error response has already been written.
func decodeRequest[T any](w http.ResponseWriter, r *http.Request, action string) (req T, ok bool) {
	log := logger.FromContext(r.Context()).With("action", action)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		log.Warn(LogMsgDecodeFailed, "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrMsgRequestTooLarge)
		} else {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		}
		return req, false
	}
	if dec.More() {
		log.Warn(LogMsgTrailingBody)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return req, false
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		log.Debug(LogMsgValidationFailed, "error", err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return req, false
	}
	return req, true
}

// requireQuery returns a non-empty query parameter or writes a 400
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := r.URL.Query().Get(name)
	if value != "" {
		return value, true
	}
	logger.FromContext(r.Context()).Warn(LogMsgMissingQuery, "param", name)
	respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, name))
	return "", false
}
