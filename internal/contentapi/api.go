// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package contentapi serves collections and content items over REST/JSON.
package contentapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocms-editor/internal/apperr"
	"github.com/olegiv/ocms-editor/internal/middleware"
	"github.com/olegiv/ocms-editor/internal/store"
	"github.com/olegiv/ocms-editor/internal/version"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store   *store.SQLStore
	logger  *slog.Logger
	policy  *bluemonday.Policy
	version version.Info
}

// NewHandler creates a new API handler.
func NewHandler(s *store.SQLStore, logger *slog.Logger, info version.Info) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   s,
		logger:  logger,
		policy:  bluemonday.UGCPolicy(),
		version: info,
	}
}

// Routes builds the service router.
func (h *Handler) Routes(timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(h.logger))
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/health", h.Health)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.ListCollections)
		r.Post("/", h.CreateCollection)
		r.Get("/{idOrSlug}", h.GetCollection)
	})

	r.Route("/content-items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.CreateItem)
		r.Get("/{id}", h.GetItem)
		r.Patch("/{id}", h.UpdateItem)
		r.Delete("/{id}", h.DeleteItem)
	})

	return r
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeStoreError maps a store error onto a response.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		notFound   *apperr.NotFoundError
		validation *apperr.ValidationError
		schemaErr  *apperr.SchemaError
	)
	switch {
	case errors.As(err, &notFound):
		WriteError(w, http.StatusNotFound, "not_found", notFound.Error(), nil)
	case errors.As(err, &validation):
		WriteValidationError(w, validation.Fields)
	case errors.As(err, &schemaErr):
		WriteError(w, http.StatusUnprocessableEntity, "schema_error", schemaErr.Error(), nil)
	default:
		h.logger.Error("store operation failed", "op", op, "error", err,
			"request_id", chimw.GetReqID(r.Context()))
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to "+op, nil)
	}
}

// decodeBody decodes a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteBadRequest(w, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version.String()})
}
