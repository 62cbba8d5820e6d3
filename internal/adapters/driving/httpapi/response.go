package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

var validate = validator.New()

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// validateStruct runs struct tag validation and flattens the result.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[name] = name + " is required"
		case "min":
			fields[name] = fmt.Sprintf("%s must have at least %s item(s)", name, fe.Param())
		case "url":
			fields[name] = fmt.Sprintf("%s must be a valid URL", name)
		case "gte", "lte":
			fields[name] = fmt.Sprintf("%s must be %s %s", name, fe.Tag(), fe.Param())
		default:
			fields[name] = fmt.Sprintf("%s failed on '%s'", name, fe.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	return validateStruct(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("writing response: %v", err)
	}
}

// writeError maps err onto a status code and writes an ErrorResponse.
func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Fields:  verr.Fields,
		})
		return
	}

	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: err.Error()})
}

// statusFor returns the HTTP status and error code for a domain error.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNoDocuments):
		return http.StatusUnprocessableEntity, "no_documents"
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadGateway, "embedding_failed"
	case errors.Is(err, domain.ErrSynthesis):
		return http.StatusBadGateway, "synthesis_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrStoreCorrupt):
		return http.StatusInternalServerError, "store_corrupt"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
