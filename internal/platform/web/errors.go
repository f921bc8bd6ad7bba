package web

import (
	"errors"
	"net/http"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

// FromError maps the domain error taxonomy to HTTP status codes. Errors
// outside the taxonomy are treated as internal.
func FromError(err error, message string) *Error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, catalog.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, catalog.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, catalog.ErrInvalid):
		code = http.StatusUnprocessableEntity
	}
	return &Error{Code: code, Message: message, Err: err}
}
