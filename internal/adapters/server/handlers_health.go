package server

import (
	"net/http"

	"github.com/bnema/challenge-harvester/internal/application"
)

type HealthHandler struct {
	collector *application.CollectorService
}

func NewHealthHandler(collector *application.CollectorService) *HealthHandler {
	return &HealthHandler{collector: collector}
}

type healthResponse struct {
	Status     string `json:"status"`
	TotalCount int    `json:"total_count"`
	Message    string `json:"message,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	list, err := h.collector.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", TotalCount: list.TotalCount})
}
