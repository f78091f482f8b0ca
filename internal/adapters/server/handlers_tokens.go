package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
)

type TokenHandler struct {
	collector *application.CollectorService
	logger    *slog.Logger
}

func NewTokenHandler(collector *application.CollectorService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{collector: collector, logger: logger}
}

type storeResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	EntryIndex int    `json:"entry_index"`
	TotalCount int    `json:"total_count"`
}

type clearResponse struct {
	Status string `json:"status"`
}

// Store handles POST /api
func (h *TokenHandler) Store(w http.ResponseWriter, r *http.Request) {
	var submission domain.Submission
	if err := decodeJSON(r, &submission); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.collector.Store(r.Context(), submission)
	if err != nil {
		if errors.Is(err, domain.ErrTokenRequired) {
			writeError(w, http.StatusBadRequest, "No token provided")
			return
		}
		h.logger.Error("store token", "error", err, "request_id", requestIDFrom(r))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, storeResponse{
		Status:     "success",
		Message:    fmt.Sprintf("Token stored (rolling max %d)", result.MaxTokens),
		EntryIndex: result.EntryIndex,
		TotalCount: result.TotalCount,
	})
}

// List handles GET /api/tokens
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.collector.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Latest handles GET /api/tokens/latest
func (h *TokenHandler) Latest(w http.ResponseWriter, r *http.Request) {
	record, err := h.collector.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoTokens) {
			writeError(w, http.StatusNotFound, "No tokens stored yet")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Clear handles DELETE /api/tokens/clear
func (h *TokenHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.collector.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, clearResponse{Status: "cleared"})
}
