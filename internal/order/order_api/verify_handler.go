package order_api

import (
	"fmt"
	"net/http"

	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/payment/razorpay"
	"kafila-ticketing/internal/utils"
)

// VerifyHandler checks the signature the checkout widget returns to the
// browser. It has no access to the order store: only the webhook may mark
// an order paid.
type VerifyHandler struct {
	Signer    *razorpay.Signer
	Logger    *logger.Logger
	BodyLimit int64
}

func NewVerifyHandler(signer *razorpay.Signer, log *logger.Logger) *VerifyHandler {
	return &VerifyHandler{Signer: signer, Logger: log, BodyLimit: DefaultBodyLimit}
}

func (h *VerifyHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if err := utils.DecodeJSON(w, r, h.BodyLimit, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorBody{Error: "Missing payment details"})
		return
	}

	if err := h.Signer.VerifyPayment(req.OrderID, req.PaymentID, req.Signature); err != nil {
		h.Logger.LogSecurity("CHECKOUT_SIGNATURE", fmt.Sprintf("order %s payment %s: %v", req.OrderID, req.PaymentID, err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorBody{Error: "Invalid signature"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
