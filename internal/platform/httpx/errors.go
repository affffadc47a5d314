// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the service layer.
var (
	ErrValidation      = errors.New("validation failed")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrUpstream        = errors.New("upstream service failed")
)

// Messages used as the "error" field of failure bodies.
const (
	MsgGenerate  = "Failed to generate proposal"
	MsgCalculate = "Failed to calculate proposal"
	MsgEncode    = "Failed to encode response"
)

// RespondError writes err as a 500 error body.
func RespondError(w http.ResponseWriter, message string, err error) {
	JSON(w, http.StatusInternalServerError, ErrorBody{Error: message, Details: details(err)})
}

// RespondStatusError maps service errors to HTTP status codes.
func RespondStatusError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUpstream):
		status = http.StatusBadGateway
	}
	JSON(w, status, ErrorBody{Error: message, Details: details(err)})
}

func details(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
