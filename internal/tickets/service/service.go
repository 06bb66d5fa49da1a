package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/metrics"
	"kafila-ticketing/internal/models"
	qr "kafila-ticketing/internal/tickets/qr_generator"
)

type OrderStore interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	MarkUsed(ctx context.Context, id string, at time.Time) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev models.LifecycleEvent) error
}

// DoorService checks scanned tickets at the venue entrance and admits each
// paid order exactly once.
type DoorService struct {
	DB     OrderStore
	Kafka  EventPublisher
	Logger *logger.Logger
	Now    func() time.Time
}

func NewDoorService(db OrderStore, publisher EventPublisher, log *logger.Logger) *DoorService {
	return &DoorService{DB: db, Kafka: publisher, Logger: log, Now: time.Now}
}

// Validate resolves a scanned payload to the order summary staff confirm
// against. Malformed payloads are rejected before the store is touched.
func (s *DoorService) Validate(ctx context.Context, payload string) (*models.TicketSummary, error) {
	summary, err := s.validate(ctx, payload)
	metrics.DoorScansTotal.WithLabelValues("validate", scanResult(err)).Inc()
	return summary, err
}

func (s *DoorService) validate(ctx context.Context, payload string) (*models.TicketSummary, error) {
	orderID, err := qr.ParsePayload(payload)
	if err != nil {
		s.Logger.LogSecurity("DOOR_SCAN", fmt.Sprintf("malformed payload %q", truncate(payload, 64)))
		return nil, err
	}

	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := admissible(order); err != nil {
		s.Logger.Info("DOOR", fmt.Sprintf("Order %s refused: %v", orderID, err))
		return nil, err
	}

	return &models.TicketSummary{
		OrderID: order.ID,
		Name:    order.Name,
		Tickets: order.Tickets,
	}, nil
}

// MarkUsed admits the order. Only one of any number of concurrent calls
// succeeds; the rest get ErrAlreadyUsed.
func (s *DoorService) MarkUsed(ctx context.Context, orderID string) error {
	err := s.markUsed(ctx, orderID)
	metrics.DoorScansTotal.WithLabelValues("admit", scanResult(err)).Inc()
	return err
}

func (s *DoorService) markUsed(ctx context.Context, orderID string) error {
	now := s.Now().UTC()
	ok, err := s.DB.MarkUsed(ctx, orderID, now)
	if err != nil {
		return fmt.Errorf("mark order %s used: %w", orderID, err)
	}

	if !ok {
		// work out which precondition failed
		order, err := s.DB.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := admissible(order); err != nil {
			return err
		}
		return models.ErrAlreadyUsed
	}

	s.Logger.LogOrder("CHECKIN", orderID, "admitted")
	if s.Kafka != nil {
		ev := models.LifecycleEvent{
			Type:      models.EventOrderCheckedIn,
			OrderID:   orderID,
			Status:    models.OrderPaid,
			Timestamp: now,
		}
		if err := s.Kafka.Publish(ctx, ev); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Publish check-in for %s failed: %v", orderID, err))
		}
	}
	return nil
}

func admissible(order *models.Order) error {
	if order.Status != models.OrderPaid {
		return models.ErrPaymentIncomplete
	}
	if order.Used {
		return models.ErrAlreadyUsed
	}
	return nil
}

func scanResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, models.ErrOrderNotFound):
		return "unknown"
	case errors.Is(err, models.ErrPaymentIncomplete):
		return "unpaid"
	case errors.Is(err, models.ErrAlreadyUsed):
		return "used"
	default:
		return "error"
	}
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
