package order_api

import (
	"fmt"
	"net/http"

	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/order"
	"kafila-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
)

const DefaultBodyLimit = 1 << 20

type Handler struct {
	OrderService *order.OrderService
	Catalog      *catalog.Catalog
	Logger       *logger.Logger
	BodyLimit    int64
}

func NewHandler(orderService *order.OrderService, cat *catalog.Catalog, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Catalog:      cat,
		Logger:       log,
		BodyLimit:    DefaultBodyLimit,
	}
}

// GetEvent serves the event details and ticket tiers for the listing pages.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.Catalog)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := utils.DecodeJSON(w, r, h.BodyLimit, &req); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Quote: invalid request: %v", err))
		utils.WriteError(w, err, "Failed to price cart")
		return
	}

	quote, err := h.OrderService.Quote(req.Cart)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Quote: %v", err))
		utils.WriteError(w, err, "Failed to price cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}

// InitiateOrder prices the cart server-side and opens a gateway order.
// Client-supplied prices are never read.
func (h *Handler) InitiateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := utils.DecodeJSON(w, r, h.BodyLimit, &req); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("InitiateOrder: invalid request: %v", err))
		utils.WriteError(w, err, "Failed to create order")
		return
	}

	resp, err := h.OrderService.InitiateOrder(r.Context(), req)
	if err != nil {
		status := utils.WriteError(w, err, "Failed to create order")
		if status >= http.StatusInternalServerError {
			h.Logger.Error("API", fmt.Sprintf("InitiateOrder: %v", err))
		} else {
			h.Logger.Warn("API", fmt.Sprintf("InitiateOrder: rejected: %v", err))
		}
		return
	}

	h.Logger.Info("API", fmt.Sprintf("InitiateOrder: order %s created (gateway %s)", resp.InternalOrderID, resp.OrderID))
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	o, err := h.OrderService.GetOrder(r.Context(), orderID)
	if err != nil {
		status := utils.WriteError(w, err, "Failed to fetch order")
		if status >= http.StatusInternalServerError {
			h.Logger.Error("API", fmt.Sprintf("GetOrder: orderId=%s: %v", orderID, err))
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, o.Summary())
}
