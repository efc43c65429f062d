package apperr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a service error onto the HTTP status and machine-readable
// code the API exposes. Validation failures default to 422; upload handlers
// downgrade them to 400 themselves.
func HTTPStatus(err error) (int, string) {
	var ve *ValidationError
	var ie *InferError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusInternalServerError, "storage_unavailable"
	case errors.Is(err, ErrPersistence):
		return http.StatusInternalServerError, "persistence_error"
	case errors.Is(err, ErrModelLoad):
		return http.StatusInternalServerError, "model_load_error"
	case errors.Is(err, ErrModelNotLoaded):
		return http.StatusInternalServerError, "model_not_loaded"
	case errors.Is(err, ErrNoPreviousModel):
		return http.StatusInternalServerError, "no_previous_model"
	case errors.As(err, &ie):
		return http.StatusInternalServerError, "inference_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
