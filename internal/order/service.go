package order

import (
	"context"
	"fmt"
	"time"

	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/kafka"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/metrics"
	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/order/pricing"
	orderredis "kafila-ticketing/internal/order/redis"
	"kafila-ticketing/internal/payment/razorpay"
	qr "kafila-ticketing/internal/tickets/qr_generator"
	"kafila-ticketing/internal/utils"
)

const (
	DefaultExpiry = 10 * time.Minute

	notifyTimeout = 30 * time.Second
)

type DBLayer interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	MarkPaid(ctx context.Context, id, qrCode, paymentID string, at time.Time) (bool, error)
	MarkRefunded(ctx context.Context, id string, at time.Time) (bool, error)
}

// Gateway creates the remote payment order the checkout widget pays into.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	KeyID() string
}

type EventDeduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Complete(ctx context.Context, eventID string) error
	Release(ctx context.Context, eventID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev models.LifecycleEvent) error
}

type Notifier interface {
	SendTicket(ctx context.Context, order *models.Order, cred *qr.Credential) error
	SendRefundNotice(ctx context.Context, order *models.Order) error
}

type CredentialIssuer interface {
	Issue(orderID string) (*qr.Credential, error)
}

type StatusEmitter interface {
	Emit(ev models.LifecycleEvent)
}

type OrderService struct {
	DB       DBLayer
	Gateway  Gateway
	Signer   *razorpay.Signer
	Catalog  *catalog.Catalog
	Dedupe   EventDeduper
	Kafka    EventPublisher
	Notifier Notifier
	QR       CredentialIssuer
	Events   StatusEmitter
	Logger   *logger.Logger

	Currency string
	Expiry   time.Duration
	Now      func() time.Time
}

type Option func(*OrderService)

func WithDeduper(d EventDeduper) Option { return func(s *OrderService) { s.Dedupe = d } }
func WithPublisher(p EventPublisher) Option { return func(s *OrderService) { s.Kafka = p } }
func WithNotifier(n Notifier) Option { return func(s *OrderService) { s.Notifier = n } }
func WithEmitter(e StatusEmitter) Option { return func(s *OrderService) { s.Events = e } }
func WithIssuer(i CredentialIssuer) Option { return func(s *OrderService) { s.QR = i } }
func WithExpiry(d time.Duration) Option { return func(s *OrderService) { s.Expiry = d } }
func WithCurrency(c string) Option { return func(s *OrderService) { s.Currency = c } }
func WithClock(now func() time.Time) Option { return func(s *OrderService) { s.Now = now } }

func NewOrderService(db DBLayer, gateway Gateway, signer *razorpay.Signer, cat *catalog.Catalog, log *logger.Logger, opts ...Option) *OrderService {
	s := &OrderService{
		DB:       db,
		Gateway:  gateway,
		Signer:   signer,
		Catalog:  cat,
		Dedupe:   orderredis.Nop{},
		Kafka:    kafka.NopPublisher{},
		QR:       qr.NewQRGenerator(),
		Logger:   log,
		Currency: cat.Currency,
		Expiry:   DefaultExpiry,
		Now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------- ORDERS ----------------

// Quote prices a cart without creating anything.
func (s *OrderService) Quote(cart []models.CartItem) (*pricing.Quote, error) {
	return pricing.Calculate(s.Catalog, pricing.ItemsFromCart(cart))
}

// InitiateOrder recomputes the price server-side, registers the amount with
// the gateway and stores a PENDING order with its line items.
func (s *OrderService) InitiateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	quote, err := s.Quote(req.Cart)
	if err != nil {
		return nil, err
	}

	gatewayOrderID, err := s.Gateway.CreateOrder(ctx, quote.TotalMinor, s.Currency, utils.GenerateReceipt())
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	order := &models.Order{
		ID:             utils.GenerateOrderID(),
		GatewayOrderID: gatewayOrderID,
		Name:           req.Customer.Name,
		Email:          req.Customer.Email,
		Phone:          req.Customer.Phone,
		Amount:         quote.Total,
		AmountMinor:    quote.TotalMinor,
		Currency:       s.Currency,
		Status:         models.OrderPending,
		CreatedAt:      s.Now().UTC(),
	}
	for _, line := range quote.Lines {
		order.Tickets = append(order.Tickets, &models.OrderTicket{TierID: line.TierID, Qty: line.Qty})
	}

	if err := s.DB.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("store order %s: %w", order.ID, err)
	}

	metrics.OrdersCreatedTotal.Inc()
	s.Logger.LogOrder("CREATE", order.ID, fmt.Sprintf("gateway=%s qty=%d total=%s", gatewayOrderID, quote.TotalQty, quote.Total.StringFixed(2)))
	s.publish(ctx, models.EventOrderCreated, order)

	return &models.CreateOrderResponse{
		OrderID:         gatewayOrderID,
		InternalOrderID: order.ID,
		Amount:          order.AmountMinor,
		Currency:        order.Currency,
		KeyID:           s.Gateway.KeyID(),
	}, nil
}

// GetOrder returns an order, or ErrOrderExpired for a PENDING order past
// the payment window.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ExpiredAt(s.Now(), s.Expiry) {
		return nil, models.ErrOrderExpired
	}
	return order, nil
}

// ---------------- TRANSITIONS ----------------

// ConfirmPayment moves the order PENDING → PAID and issues its ticket.
// Repeat deliveries and lost races are successful no-ops.
func (s *OrderService) ConfirmPayment(ctx context.Context, ev razorpay.PaymentCaptured) error {
	order, err := s.DB.GetOrderByGatewayID(ctx, ev.GatewayOrderID)
	if err != nil {
		return err
	}

	if order.Status != models.OrderPending {
		s.Logger.LogWebhook(ev.EventType(), ev.GatewayOrderID, fmt.Sprintf("order %s already %s, ignoring", order.ID, order.Status))
		return nil
	}
	if ev.Amount != 0 && ev.Amount != order.AmountMinor {
		s.Logger.LogSecurity("AMOUNT_MISMATCH", fmt.Sprintf("order %s expected %d captured %d", order.ID, order.AmountMinor, ev.Amount))
	}

	cred, err := s.QR.Issue(order.ID)
	if err != nil {
		return fmt.Errorf("issue credential for %s: %w", order.ID, err)
	}

	now := s.Now().UTC()
	ok, err := s.DB.MarkPaid(ctx, order.ID, cred.DataURL, ev.PaymentID, now)
	if err != nil {
		return fmt.Errorf("mark order %s paid: %w", order.ID, err)
	}
	if !ok {
		s.Logger.LogOrder("PAID", order.ID, "concurrent confirmation won, skipping")
		return nil
	}

	order.Status = models.OrderPaid
	order.QRCode = &cred.DataURL
	order.PaidAt = &now
	if ev.PaymentID != "" {
		order.PaymentID = &ev.PaymentID
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(models.OrderPaid)).Inc()
	s.Logger.LogOrder("PAID", order.ID, fmt.Sprintf("payment=%s", ev.PaymentID))
	s.publish(ctx, models.EventOrderPaid, order)

	s.notify(ctx, "ticket", order.ID, func(ctx context.Context) error {
		if s.Notifier == nil {
			return nil
		}
		return s.Notifier.SendTicket(ctx, order, cred)
	})
	return nil
}

// ProcessRefund moves the order PAID → REFUNDED and revokes its ticket.
func (s *OrderService) ProcessRefund(ctx context.Context, ev razorpay.RefundProcessed) error {
	order, err := s.DB.GetOrderByGatewayID(ctx, ev.GatewayOrderID)
	if err != nil {
		return err
	}

	if order.Status != models.OrderPaid {
		s.Logger.LogWebhook(ev.EventType(), ev.GatewayOrderID, fmt.Sprintf("order %s is %s, nothing to refund", order.ID, order.Status))
		return nil
	}

	now := s.Now().UTC()
	ok, err := s.DB.MarkRefunded(ctx, order.ID, now)
	if err != nil {
		return fmt.Errorf("mark order %s refunded: %w", order.ID, err)
	}
	if !ok {
		s.Logger.LogOrder("REFUNDED", order.ID, "concurrent refund won, skipping")
		return nil
	}

	order.Status = models.OrderRefunded
	order.QRCode = nil
	order.RefundedAt = &now

	metrics.OrderTransitionsTotal.WithLabelValues(string(models.OrderRefunded)).Inc()
	s.Logger.LogOrder("REFUNDED", order.ID, fmt.Sprintf("refund=%s", ev.RefundID))
	s.publish(ctx, models.EventOrderRefunded, order)

	s.notify(ctx, "refund", order.ID, func(ctx context.Context) error {
		if s.Notifier == nil {
			return nil
		}
		return s.Notifier.SendRefundNotice(ctx, order)
	})
	return nil
}

// notify runs a best-effort email. Failures are logged and counted, never
// returned: the state change it follows is already committed.
func (s *OrderService) notify(ctx context.Context, kind, orderID string, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := send(ctx); err != nil {
		metrics.EmailsTotal.WithLabelValues(kind, "failed").Inc()
		s.Logger.Error("EMAIL", fmt.Sprintf("%s email for order %s failed: %v", kind, orderID, err))
		return
	}
	metrics.EmailsTotal.WithLabelValues(kind, "sent").Inc()
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	ev := models.LifecycleEvent{
		Type:      eventType,
		OrderID:   order.ID,
		Status:    order.Status,
		Email:     order.Email,
		Amount:    order.Amount.StringFixed(2),
		Timestamp: s.Now().UTC(),
	}
	if s.Events != nil {
		s.Events.Emit(ev)
	}
	if err := s.Kafka.Publish(ctx, ev); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Publish %s for order %s failed: %v", eventType, order.ID, err))
	}
}
