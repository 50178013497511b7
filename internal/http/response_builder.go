// Package http exposes the fintrack services as a JSON REST API.
//
// This file implements the Builder Pattern for constructing JSON responses,
// so handlers set status, headers and payload in one expression.
package http

import (
	"encoding/json"
	"io"
	"net/http"

	"fintrack/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode  int
	headers     map[string]string
	data        any
	raw         func(io.Writer) error
	contentType string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode:  http.StatusOK,
		headers:     make(map[string]string),
		contentType: "application/json",
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Stream replaces the JSON body with bytes produced by write, sent with the
// given content type.
func (b *JSONResponseBuilder) Stream(contentType string, write func(io.Writer) error) *JSONResponseBuilder {
	b.contentType = contentType
	b.raw = write
	return b
}

// Write sends the built response. Encoding failures after the header is
// written can only be logged.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.raw == nil && (b.data == nil || b.statusCode == http.StatusNoContent) {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", b.contentType)
	w.WriteHeader(b.statusCode)

	var err error
	if b.raw != nil {
		err = b.raw(w)
	} else {
		err = json.NewEncoder(w).Encode(b.data)
	}
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(), "Failed to write response",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
	}
}

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	NewJSONResponse().Status(status).Data(v).Write(w, r)
}

// respondNoContent writes an empty 204.
func respondNoContent(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Status(http.StatusNoContent).Write(w, r)
}
