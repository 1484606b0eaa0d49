// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// writeJSON writes data wrapped in the standard success envelope.
func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(common.OK(data))
}

// writeError maps any error onto the standard failure envelope.  AppErrors
// carry their own code and HTTP status; anything else is reported as an
// internal error without leaking detail.
func writeError(w http.ResponseWriter, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := errors.DefaultMessageForCode(code)
	detail := ""
	if appErr, ok := errors.AsAppError(err); ok {
		if appErr.Message != "" {
			message = appErr.Message
		}
		detail = appErr.Detail
	}

	if status >= 500 && logger != nil {
		logger.Error("request failed", logging.Err(err), logging.String("code", string(code)))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(common.Fail[any](string(code), message, detail))
}

// decodeJSON decodes the request body into dst, rejecting unknown fields and
// oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New(errors.ErrCodeBadRequest, "invalid request body").WithCause(err)
	}
	return nil
}
