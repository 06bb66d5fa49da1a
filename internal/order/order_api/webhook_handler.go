package order_api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"kafila-ticketing/internal/order"
	"kafila-ticketing/internal/utils"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"
)

// RazorpayWebhook reads the raw body (the signature covers exact bytes) and
// hands it to the order service. Anything but a signature failure or an
// infrastructure error is acknowledged so the gateway stops retrying.
func (h *Handler) RazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.BodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.LogSecurity("WEBHOOK_BODY", fmt.Sprintf("delivery over %d bytes rejected", tooLarge.Limit))
			utils.WriteJSON(w, http.StatusRequestEntityTooLarge, utils.ErrorBody{Error: "Payload too large"})
			return
		}
		// nothing was processed; a 5xx makes the gateway redeliver
		h.Logger.Error("WEBHOOK", fmt.Sprintf("RazorpayWebhook: failed to read body: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorBody{Error: "Webhook processing error"})
		return
	}

	err = h.OrderService.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader), r.Header.Get(EventIDHeader))
	if err != nil {
		var webhookErr *order.WebhookError
		if errors.As(err, &webhookErr) {
			h.Logger.Info("WEBHOOK", fmt.Sprintf("RazorpayWebhook: category=%s status=%d", webhookErr.Category, webhookErr.StatusCode))
			utils.WriteJSON(w, webhookErr.StatusCode, utils.ErrorBody{Error: webhookErr.PublicError})
			return
		}
		h.Logger.Error("WEBHOOK", fmt.Sprintf("RazorpayWebhook: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorBody{Error: "Webhook processing error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
