package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// ErrorResponse is the body of every non-validation error
type ErrorResponse struct {
	Error string `json:"error"`
}

// maxPooledBuffer keeps one oversized response from pinning memory in the pool
const maxPooledBuffer = 64 << 10

var encodeBuffers = sync.Pool{
	New: func() any { return bytes.NewBuffer(make([]byte, 0, 512)) },
}

// respondJSON encodes payload before touching the response, so an encoding
// failure can still become a 500
func respondJSON(w http.ResponseWriter, status int, payload any) {
	buf := encodeBuffers.Get().(*bytes.Buffer)
	defer func() {
		if buf.Cap() <= maxPooledBuffer {
			buf.Reset()
			encodeBuffers.Put(buf)
		}
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		http.Error(w, ErrMsgGenericServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs err at a level matching its status and writes the client-safe form
func respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status, msg := clientError(err)
	log := logger.FromContext(r.Context()).With("action", action)
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgServiceFailed, "error", err)
	} else {
		log.Warn(LogMsgServiceRejected, "error", err)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgUnknownError          = "Unknown error"
	ErrMsgInvalidRequestError   = "Invalid request. Please check your inputs."
	ErrMsgCreatorNotFoundError  = "Creator not found"
	ErrMsgChargesNotEnabledErr  = "Creator has not finished onboarding and cannot accept payments yet"
	ErrMsgAccountConflictError  = "Creator already has a different payment account"
	ErrMsgStoreUnavailableError = "Record store is temporarily unavailable. Please try again later."
	ErrMsgProviderUnavailable   = "Payment provider is temporarily unavailable. Please try again later."
	ErrMsgChatUnavailableError  = "Chat service is temporarily unavailable. Please try again later."
	ErrMsgAuthFailedError       = "Authentication failed"
)

// errorMappings is checked in order; the first sentinel err wraps decides the response
var errorMappings = []struct {
	sentinel error
	status   int
	message  string
}{
	{domain.ErrCreatorNotFound, http.StatusNotFound, ErrMsgCreatorNotFoundError},
	{domain.ErrChargesNotEnabled, http.StatusConflict, ErrMsgChargesNotEnabledErr},
	{domain.ErrAccountIDConflict, http.StatusConflict, ErrMsgAccountConflictError},
	{domain.ErrAuthenticationFailure, http.StatusUnauthorized, ErrMsgAuthFailedError},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrMsgStoreUnavailableError},
	{domain.ErrProviderUnavailable, http.StatusBadGateway, ErrMsgProviderUnavailable},
	{domain.ErrChatUnavailable, http.StatusBadGateway, ErrMsgChatUnavailableError},
}

// clientError maps a service error to a status and a message that leaks no internals
func clientError(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest, invalidInputMessage(err)
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// invalidInputMessage keeps the detail after the sentinel, which is written for clients
func invalidInputMessage(err error) string {
	_, detail, ok := strings.Cut(err.Error(), domain.ErrMsgInvalidInput+": ")
	if !ok || detail == "" {
		return ErrMsgInvalidRequestError
	}
	return detail
}
