// Package http serves the planner's JSON API.
//
// This file implements a small builder for JSON responses so every handler
// writes the same content type, status handling and error envelope.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a 200 status and no body.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
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

// Body sets the value to encode. A nil body writes no content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Created sets 201 and the Location of the new resource.
func (b *JSONResponseBuilder) Created(location string) *JSONResponseBuilder {
	b.statusCode = http.StatusCreated
	if location != "" {
		b.headers["Location"] = location
	}
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	data, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(data, '\n'))
}

// ErrorResponse creates a response with the standard error envelope.
func ErrorResponse(statusCode int, message, requestID string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: message, RequestID: requestID})
}

func BadRequestError(message, requestID string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message, requestID)
}

func UnprocessableEntityError(message, requestID string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message, requestID)
}

func NotFoundError(message, requestID string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message, requestID)
}

func InternalServerError(requestID string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal error", requestID)
}

func TooManyRequestsError(requestID string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later", requestID)
}
