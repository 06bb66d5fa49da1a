package ticket_api

import (
	"fmt"
	"net/http"

	"kafila-ticketing/internal/auth"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"
	tickets "kafila-ticketing/internal/tickets/service"
	"kafila-ticketing/internal/utils"
)

const DefaultBodyLimit = 64 << 10

type Handler struct {
	DoorService *tickets.DoorService
	Logger      *logger.Logger
	BodyLimit   int64
}

func NewHandler(doorService *tickets.DoorService, log *logger.Logger) *Handler {
	return &Handler{DoorService: doorService, Logger: log, BodyLimit: DefaultBodyLimit}
}

// ValidateTicket looks up a scanned QR payload.
// Expected POST request body: {"payload": "ORDER:<id>"}
func (h *Handler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateTicketRequest
	if err := utils.DecodeJSON(w, r, h.BodyLimit, &req); err != nil {
		utils.WriteError(w, err, "Failed to validate ticket")
		return
	}

	summary, err := h.DoorService.Validate(r.Context(), req.Payload)
	if err != nil {
		status := utils.WriteError(w, err, "Failed to validate ticket")
		if status >= http.StatusInternalServerError {
			h.Logger.Error("DOOR", fmt.Sprintf("ValidateTicket: %v", err))
		}
		return
	}

	h.Logger.Info("DOOR", fmt.Sprintf("Order %s validated by %s", summary.OrderID, auth.UserID(r.Context())))
	utils.WriteJSON(w, http.StatusOK, summary)
}

// MarkUsed admits a validated order.
// Expected POST request body: {"orderId": "<id>"}
func (h *Handler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	var req models.MarkUsedRequest
	if err := utils.DecodeJSON(w, r, h.BodyLimit, &req); err != nil {
		utils.WriteError(w, err, "Failed to admit ticket")
		return
	}

	if err := h.DoorService.MarkUsed(r.Context(), req.OrderID); err != nil {
		status := utils.WriteError(w, err, "Failed to admit ticket")
		if status >= http.StatusInternalServerError {
			h.Logger.Error("DOOR", fmt.Sprintf("MarkUsed: order %s: %v", req.OrderID, err))
		}
		return
	}

	h.Logger.Info("DOOR", fmt.Sprintf("Order %s admitted by %s", req.OrderID, auth.UserID(r.Context())))
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
