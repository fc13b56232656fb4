// Package response writes the JSON envelope every endpoint answers with:
//
//	{"status": 200, "message": "...", "data": {...}, "errors": {...}}
//
// Message is the user-facing banner text; clients render it verbatim.
// Errors is only present on validation failures and maps field → message.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func send(w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success answers 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	send(w, envelope{Status: http.StatusOK, Data: data})
}

// Created answers 201 with the stored record.
func Created(w http.ResponseWriter, data interface{}) {
	send(w, envelope{Status: http.StatusCreated, Data: data})
}

// WithMessage answers with data plus a banner message. The auth flow uses
// this for its fixed wordings ("An account with this email already
// exists.", the check-email banner, and so on).
func WithMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	send(w, envelope{Status: status, Message: message, Data: data})
}

// Error answers with a message and no data.
func Error(w http.ResponseWriter, status int, message string) {
	send(w, envelope{Status: status, Message: message})
}

// ValidationError answers 422 with the field → message map produced by
// pkg/validate. Nothing was written when this fires.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	send(w, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "The given data was invalid.",
		Errors:  errs,
	})
}

// Paginated answers 200 with items plus their page metadata.
func Paginated(w http.ResponseWriter, data interface{}, page orm.Pagination) {
	send(w, envelope{
		Status: http.StatusOK,
		Data:   map[string]interface{}{"items": data, "pagination": page},
	})
}

// Unauthorized answers 401.
func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, "Unauthorized") }

// Forbidden answers 403.
func Forbidden(w http.ResponseWriter) { Error(w, http.StatusForbidden, "Forbidden") }

// NotFound answers 404.
func NotFound(w http.ResponseWriter) { Error(w, http.StatusNotFound, "Not found") }
