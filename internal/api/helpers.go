// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package api

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/validation"
)

// maxRequestBodyBytes caps POST bodies. The control endpoints only
// carry tiny JSON documents.
const maxRequestBodyBytes = 1 << 20

// maxLogValueLength caps user-supplied strings in log output.
const maxLogValueLength = 200

// respondJSON writes an APIResponse as the reply body. Successful
// responses carry an ETag and a no-cache directive; sync state goes
// stale in seconds, so intermediaries must revalidate instead of
// serving cached payloads.
func respondJSON(w http.ResponseWriter, statusCode int, response *models.APIResponse) {
	body, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal API response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"status":"error","error":{"code":"INTERNAL_ERROR","message":"Failed to encode response"}}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusOK {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("ETag", generateETag(body))
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Failed to write API response")
	}
}

// generateETag produces a weak validator from the response body. FNV-1a
// is enough for cache revalidation; this is not an integrity check.
func generateETag(body []byte) string {
	h := fnv.New32a()
	h.Write(body)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", h.Sum32()))
}

// respondError writes an error-status APIResponse with a stable error
// code. The underlying error, when present, goes to the logs rather
// than the client.
func respondError(w http.ResponseWriter, statusCode int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Err(err).
			Str("code", code).
			Str("message", sanitizeLogValue(message)).
			Msg("API request failed")
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// respondAPIError writes a prebuilt APIError, preserving its Details
// map. Used for validation failures where the field breakdown matters.
func respondAPIError(w http.ResponseWriter, statusCode int, apiErr *models.APIError) {
	respondJSON(w, statusCode, &models.APIResponse{
		Status:   "error",
		Error:    apiErr,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// validateRequest runs struct validation and converts failures to the
// APIError format. Returns nil when the request is valid.
func validateRequest(req interface{}) *models.APIError {
	if err := validation.ValidateStruct(req); err != nil {
		return err.ToAPIError()
	}
	return nil
}

// decodeJSONBody decodes a JSON request body into dst. An empty body is
// not an error, so optional-body endpoints fall back to their defaults.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parse request body: %w", err)
	}
	return nil
}

// sanitizeLogValue strips newlines and control characters from
// user-supplied strings so they cannot forge log lines, and truncates
// oversized values.
func sanitizeLogValue(value string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, value)

	if len(sanitized) > maxLogValueLength {
		sanitized = sanitized[:maxLogValueLength] + "..."
	}
	return sanitized
}
