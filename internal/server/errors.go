package server

import (
	"errors"
	"io/fs"
	"net/http"
)

// ErrHidden is returned for dot-prefixed paths, which are never published.
var ErrHidden = errors.New("hidden path")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrHidden):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, fs.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
