package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/order"
	"kafila-ticketing/internal/sse"
	"kafila-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
)

const heartbeatInterval = 15 * time.Second

// SSEHandler streams status changes of one order to the checkout success
// page so it can stop showing "processing" once the webhook lands.
type SSEHandler struct {
	OrderService *order.OrderService
	Emitter      *sse.OrderStatusEmitter
	Logger       *logger.Logger
	Heartbeat    time.Duration
}

func NewSSEHandler(orderService *order.OrderService, emitter *sse.OrderStatusEmitter, log *logger.Logger) *SSEHandler {
	return &SSEHandler{
		OrderService: orderService,
		Emitter:      emitter,
		Logger:       log,
		Heartbeat:    heartbeatInterval,
	}
}

// OrderEvents sends the current status, then every change until the order
// is PAID or REFUNDED or the client goes away.
func (h *SSEHandler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorBody{Error: "Streaming unsupported"})
		return
	}

	// subscribe first so a transition between lookup and stream is not lost
	events := h.Emitter.Subscribe(ctx, orderID)

	o, err := h.OrderService.GetOrder(ctx, orderID)
	if err != nil {
		utils.WriteError(w, err, "Failed to fetch order")
		return
	}

	h.setupSSEHeaders(w)
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to order %s (%s)", orderID, o.Status))

	if !h.send(w, flusher, "status", models.LifecycleEvent{
		Type:      "order.status",
		OrderID:   o.ID,
		Status:    o.Status,
		Amount:    o.Amount.StringFixed(2),
		Timestamp: time.Now().UTC(),
	}) || o.Status != models.OrderPending {
		return
	}

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !h.send(w, flusher, "status", ev) || ev.Status != models.OrderPending {
				return
			}
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from order %s", orderID))
			return
		}
	}
}

func (h *SSEHandler) send(w http.ResponseWriter, flusher http.Flusher, name string, ev models.LifecycleEvent) bool {
	// anyone holding the order id may listen
	ev.Email = ""
	jsonData, err := json.Marshal(ev)
	if err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize order event: %v", err))
		return false
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, jsonData)
	flusher.Flush()
	return true
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
}
