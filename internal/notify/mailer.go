package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"
	qr "kafila-ticketing/internal/tickets/qr_generator"
	pdftemplate "kafila-ticketing/internal/tickets/template"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	qrFileName     = "ticket.png"
	pdfFileName    = "ticket.pdf"
	ticketSubject  = "🎟️ Your Event Ticket"
	refundSubjectF = "Refund processed for order %s"
)

// Sender delivers fully built messages. *SMTPSender is the production one.
type Sender interface {
	Send(ctx context.Context, msgs ...*mail.Msg) error
}

// TicketRenderer produces the printable ticket attached next to the inline QR.
type TicketRenderer interface {
	Generate(data pdftemplate.TicketData, qrCode []byte) ([]byte, error)
}

type Mailer struct {
	sender   Sender
	from     string
	fromName string
	catalog  *catalog.Catalog
	pdf      TicketRenderer
	logger   *logger.Logger
}

type MailerOption func(*Mailer)

// WithTicketPDF attaches a PDF ticket to confirmation emails.
func WithTicketPDF(r TicketRenderer) MailerOption {
	return func(m *Mailer) { m.pdf = r }
}

func NewMailer(sender Sender, fromName, fromAddress string, cat *catalog.Catalog, log *logger.Logger, opts ...MailerOption) *Mailer {
	m := &Mailer{
		sender:   sender,
		from:     fromAddress,
		fromName: fromName,
		catalog:  cat,
		logger:   log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type ticketLine struct {
	Tier string
	Qty  int
}

type emailData struct {
	Name        string
	OrderID     string
	Amount      string
	EventTitle  string
	EventDate   string
	Location    string
	QRContentID string
	Lines       []ticketLine
}

func (m *Mailer) dataFor(order *models.Order) emailData {
	d := emailData{
		Name:        order.Name,
		OrderID:     order.ID,
		Amount:      "₹" + order.Amount.StringFixed(2),
		EventTitle:  m.catalog.Title,
		EventDate:   formatEventDate(m.catalog.Date),
		Location:    m.catalog.Location,
		QRContentID: qrFileName,
	}
	for _, t := range order.Tickets {
		d.Lines = append(d.Lines, ticketLine{Tier: m.tierLabel(t.TierID), Qty: t.Qty})
	}
	return d
}

func (m *Mailer) tierLabel(id string) string {
	if tier, ok := m.catalog.Tier(id); ok && tier.Name != "" {
		return tier.Name
	}
	return strings.ToUpper(id)
}

func formatEventDate(raw string) string {
	t, err := time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return raw
	}
	return t.Format("02 Jan 2006")
}

func render(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) newMessage(to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

// SendTicket emails the confirmation with the QR code inline and, when a
// renderer is configured, a PDF ticket attached.
func (m *Mailer) SendTicket(ctx context.Context, order *models.Order, cred *qr.Credential) error {
	data := m.dataFor(order)
	html, err := render("ticket.html", data)
	if err != nil {
		return err
	}

	msg, err := m.newMessage(order.Email, ticketSubject, html)
	if err != nil {
		return err
	}
	if err := msg.EmbedReader(qrFileName, bytes.NewReader(cred.PNG)); err != nil {
		return fmt.Errorf("embed qr: %w", err)
	}

	if m.pdf != nil {
		pdfData := pdftemplate.TicketData{
			EventTitle: data.EventTitle,
			EventDate:  data.EventDate,
			Location:   data.Location,
			OrderID:    data.OrderID,
			Name:       data.Name,
			Amount:     data.Amount,
		}
		for _, l := range data.Lines {
			pdfData.Lines = append(pdfData.Lines, pdftemplate.TicketLine{Tier: l.Tier, Qty: l.Qty})
		}

		pdf, err := m.pdf.Generate(pdfData, cred.PNG)
		if err != nil {
			m.logger.Warn("EMAIL", fmt.Sprintf("PDF ticket skipped for order %s: %v", order.ID, err))
		} else if err := msg.AttachReader(pdfFileName, bytes.NewReader(pdf)); err != nil {
			m.logger.Warn("EMAIL", fmt.Sprintf("PDF attach failed for order %s: %v", order.ID, err))
		}
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}
	m.logger.Info("EMAIL", fmt.Sprintf("Ticket email sent for order %s", order.ID))
	return nil
}

// SendRefundNotice tells the purchaser their ticket was cancelled.
func (m *Mailer) SendRefundNotice(ctx context.Context, order *models.Order) error {
	html, err := render("refund.html", m.dataFor(order))
	if err != nil {
		return err
	}

	msg, err := m.newMessage(order.Email, fmt.Sprintf(refundSubjectF, order.ID), html)
	if err != nil {
		return err
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send refund email: %w", err)
	}
	m.logger.Info("EMAIL", fmt.Sprintf("Refund email sent for order %s", order.ID))
	return nil
}
