// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/oops"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/pkg/errutil"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

// statusOf maps an error kind to its HTTP status.
func statusOf(kind auth.Kind) int {
	switch kind {
	case auth.KindValidation:
		return http.StatusBadRequest
	case auth.KindConflict:
		return http.StatusConflict
	case auth.KindNotFound:
		return http.StatusNotFound
	case auth.KindInvalidCredentials, auth.KindUnauthenticated, auth.KindSessionInvalid:
		return http.StatusUnauthorized
	case auth.KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the JSON error body for err. Internal errors are logged
// with their oops context and answered with a generic message.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := auth.KindOf(err)
	status := statusOf(kind)

	if kind == auth.KindInternal {
		logger := h.logger.With("request_id", RequestIDFromContext(r.Context()), "path", r.URL.Path)
		errutil.LogErrorContext(r.Context(), logger, "request failed", err)
		writeJSON(w, status, errorResponse{Error: kind.String(), Message: "internal server error"})
		return
	}

	resp := errorResponse{Error: kind.String(), Message: err.Error()}
	if oopsErr, ok := oops.AsOops(err); ok {
		if field, ok := oopsErr.Context()["field"].(string); ok {
			resp.Field = field
		}
	}
	var schemaErr *schemaError
	if errors.As(err, &schemaErr) {
		resp.Details = schemaErr.details
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(body)
}

// readBody reads the request body up to the configured limit.
func (h *handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, oops.Code(auth.CodeInvalidRequest).With("limit", tooLarge.Limit).Errorf("request body too large")
		}
		return nil, oops.Code(auth.CodeInvalidRequest).Wrapf(err, "could not read request body")
	}
	return body, nil
}
