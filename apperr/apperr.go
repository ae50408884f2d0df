// Package apperr carries the HTTP status of domain errors up to the handlers.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error is a client-facing failure with a fixed status and message.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

func New(status int, msg string) *Error {
	return &Error{Status: status, Msg: msg}
}

var (
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden    = New(http.StatusForbidden, "Forbidden")
	ErrBadRequest   = New(http.StatusBadRequest, "Invalid request payload")
)

func NotFound(what string) *Error {
	return New(http.StatusNotFound, what+" not found")
}

// ValidationError reports per-field problems; nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string { return "Validation failed" }

// Add records a problem for field and returns v for chaining.
func (v *ValidationError) Add(field, msg string) *ValidationError {
	if v.Fields == nil {
		v.Fields = map[string]string{}
	}
	v.Fields[field] = msg
	return v
}

// OrNil returns v as an error only when a field was recorded.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

// Respond writes err in the {"error": "..."} shape and aborts the chain.
// A wrapped *Error also sends the full chain as "detail". Errors that carry
// no status are logged and reported as 500.
func Respond(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}
	var aerr *Error
	if errors.As(err, &aerr) {
		body := gin.H{"error": aerr.Msg}
		if detail := err.Error(); detail != aerr.Msg {
			body["detail"] = detail
		}
		c.AbortWithStatusJSON(aerr.Status, body)
		return
	}
	log.Error().Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.FullPath()).
		Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
