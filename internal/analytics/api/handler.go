package analytics_api

import (
	"fmt"
	"net/http"

	"kafila-ticketing/internal/analytics"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/utils"
)

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) GetSalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.GetSalesSummary(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetSalesSummary: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorBody{Error: "Failed to load analytics"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}
