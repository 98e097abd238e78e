package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"saldo/internal/core"
	"saldo/internal/log"
)

// HeaderUserID carries the authenticated owner id set by the upstream auth
// layer.
const HeaderUserID = "X-User-ID"

const maxBodyBytes = 1 << 20

var (
	errMissingOwner = errors.New("missing or invalid " + HeaderUserID + " header")
	errRequired     = errors.New("required")
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ownerHandler receives the owner id resolved once per request.
type ownerHandler func(w http.ResponseWriter, r *http.Request, ownerID int64)

// withOwner resolves the owner from HeaderUserID and rejects the request
// with 401 when it is absent or not a positive integer.
func (s *Server) withOwner(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
		if err != nil || ownerID <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errMissingOwner.Error()})
			return
		}
		next(w, r, ownerID)
	}
}

// pathID parses the {id} wildcard. Malformed ids are validation errors.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", fmt.Errorf("invalid id %q", raw))
	}
	return id, nil
}

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected so typos do not silently drop data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &badRequestError{err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &badRequestError{err: errors.New("body must contain a single JSON object")}
	}
	return nil
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return "malformed request body: " + e.err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

// writeError maps an error to its status code. Not-found is checked before
// access-denied because a missing transaction reports both.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var (
		status = http.StatusInternalServerError
		body   = errorResponse{Error: "internal server error"}
		field  *core.FieldError
		badReq *badRequestError
	)

	switch {
	case errors.As(err, &badReq):
		status, body.Error = http.StatusBadRequest, badReq.Error()
	case errors.Is(err, core.ErrNotFound):
		status, body.Error = http.StatusNotFound, "not found"
	case errors.Is(err, core.ErrAccessDenied):
		status, body.Error = http.StatusForbidden, err.Error()
	case errors.As(err, &field):
		status = http.StatusUnprocessableEntity
		body = errorResponse{Error: field.Err.Error(), Field: field.Field}
	case errors.Is(err, core.ErrValidation):
		status, body.Error = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, core.ErrInUse):
		status, body.Error = http.StatusConflict, err.Error()
	}

	logger := log.FromContext(ctx)
	if status >= 500 {
		log.LogError(ctx, "Request failed", err, log.ErrorTypeInternal, r.Method, nil)
	} else {
		logger.DebugContext(ctx, "Request rejected", log.FieldStatusCode, status, log.FieldError, err)
	}
	writeJSON(w, status, body)
}
