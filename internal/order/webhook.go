package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"kafila-ticketing/internal/metrics"
	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/payment/razorpay"
)

// WebhookError represents an error that occurred during webhook processing
type WebhookError struct {
	Category      string // "validation", "processing"
	StatusCode    int    // HTTP status code
	PublicError   string // Safe to expose to clients
	InternalError string // Detailed error for logs only
	OriginalErr   error  // Underlying error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

func (e *WebhookError) Unwrap() error {
	return e.OriginalErr
}

// HandleWebhook authenticates and applies one Razorpay delivery. Only a
// missing or bad signature (400) and an infrastructure failure (500, so the
// gateway retries) are errors; every business outcome is success.
func (s *OrderService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	if err := s.Signer.VerifyWebhook(body, signature); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		s.Logger.LogSecurity("WEBHOOK_SIGNATURE", fmt.Sprintf("rejected delivery %q: %v", eventID, err))
		public := "Invalid webhook signature"
		if errors.Is(err, models.ErrMissingSignature) {
			public = "Missing signature"
		}
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   public,
			InternalError: fmt.Sprintf("webhook signature check failed: %v", err),
			OriginalErr:   err,
		}
	}

	ev, err := razorpay.ParseEvent(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("Signed but unusable delivery %q: %v", eventID, err))
		return nil
	}

	if u, ok := ev.(razorpay.Unrecognized); ok {
		metrics.WebhookEventsTotal.WithLabelValues("other", "ignored").Inc()
		s.Logger.Info("WEBHOOK", fmt.Sprintf("Unhandled event type: %s", u.Type))
		return nil
	}

	claimed, err := s.Dedupe.Claim(ctx, eventID)
	if err != nil {
		// the conditional update still guards against double application
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("Event dedupe unavailable: %v", err))
		claimed = true
	}
	if !claimed {
		metrics.WebhookEventsTotal.WithLabelValues(ev.EventType(), "duplicate").Inc()
		s.Logger.Info("WEBHOOK", fmt.Sprintf("Duplicate delivery %s of %s ignored", eventID, ev.EventType()))
		return nil
	}

	if err := s.dispatch(ctx, ev); err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			metrics.WebhookEventsTotal.WithLabelValues(ev.EventType(), "unknown_order").Inc()
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("%s for unknown order: %v", ev.EventType(), err))
			s.complete(ctx, eventID)
			return nil
		}

		if relErr := s.Dedupe.Release(ctx, eventID); relErr != nil {
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("Release of event %s failed: %v", eventID, relErr))
		}
		metrics.WebhookEventsTotal.WithLabelValues(ev.EventType(), "failed").Inc()
		s.Logger.Error("WEBHOOK", fmt.Sprintf("Failed to process %s: %v", ev.EventType(), err))
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: fmt.Sprintf("process %s: %v", ev.EventType(), err),
			OriginalErr:   err,
		}
	}

	s.complete(ctx, eventID)
	metrics.WebhookEventsTotal.WithLabelValues(ev.EventType(), "processed").Inc()
	return nil
}

func (s *OrderService) dispatch(ctx context.Context, ev razorpay.Event) error {
	switch e := ev.(type) {
	case razorpay.PaymentCaptured:
		return s.ConfirmPayment(ctx, e)
	case razorpay.RefundProcessed:
		return s.ProcessRefund(ctx, e)
	default:
		return fmt.Errorf("no handler for %s", ev.EventType())
	}
}

func (s *OrderService) complete(ctx context.Context, eventID string) {
	if err := s.Dedupe.Complete(ctx, eventID); err != nil {
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("Marking event %s done failed: %v", eventID, err))
	}
}
