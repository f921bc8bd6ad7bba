package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error is the web layer's error type. Handlers return it instead of
// writing error responses themselves.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Handler is an http.Handler that returns a *Error. A non-nil return is
// logged and rendered as a JSON error envelope.
type Handler func(w http.ResponseWriter, r *http.Request) *Error

func (fn Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		log.Error().
			Err(err.Err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", err.Code).
			Msg(err.Message)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(err.Code)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Message})
	}
}
