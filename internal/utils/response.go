package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"kafila-ticketing/internal/models"
)

type ErrorBody struct {
	Error string `json:"error"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{models.ErrEmptyCart, http.StatusBadRequest},
	{models.ErrInvalidSelection, http.StatusBadRequest},
	{models.ErrMissingSignature, http.StatusBadRequest},
	{models.ErrInvalidSignature, http.StatusBadRequest},
	{models.ErrMalformedCredential, http.StatusBadRequest},
	{models.ErrPaymentIncomplete, http.StatusBadRequest},
	{models.ErrOrderNotFound, http.StatusNotFound},
	{models.ErrAlreadyUsed, http.StatusConflict},
	{models.ErrOrderExpired, http.StatusGone},
}

// StatusFor maps a service error to its HTTP status and the message safe to
// show the caller. Unknown errors are 500 with an empty message.
func StatusFor(err error) (int, string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, reqErr.Message
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status, s.err.Error()
		}
	}
	return http.StatusInternalServerError, ""
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": ...}. fallback is shown for 500s so internal
// detail never leaves the server.
func WriteError(w http.ResponseWriter, err error, fallback string) int {
	status, msg := StatusFor(err)
	if status == http.StatusInternalServerError {
		msg = fallback
	}
	WriteJSON(w, status, ErrorBody{Error: msg})
	return status
}
