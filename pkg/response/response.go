// Package response writes JSON bodies. Successful reads return the resource
// itself; everything else is a {"message": ...} object.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

type messageBody struct {
	Message string `json:"message"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 with v as the body.
func Success(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created sends a 201 with v as the body.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Message sends {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, messageBody{Message: msg})
}

// Error sends {"message": msg} with an error status.
func Error(w http.ResponseWriter, status int, msg string) {
	Message(w, status, msg)
}

// FromError maps err through apperr: client errors keep their message,
// anything else becomes a generic 500.
func FromError(w http.ResponseWriter, err error) {
	Error(w, apperr.Status(err), apperr.Message(err))
}
