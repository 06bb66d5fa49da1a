package template_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	qr "kafila-ticketing/internal/tickets/qr_generator"
	"kafila-ticketing/internal/tickets/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTicket() template.TicketData {
	return template.TicketData{
		EventTitle: "BAN KAFILA",
		EventDate:  "03 Jan 2026",
		Location:   "PAC Ground, Kanpur",
		OrderID:    "order-1",
		Name:       "Asha",
		Amount:     "₹8289.80",
		Lines:      []template.TicketLine{{Tier: "SILVER", Qty: 3}, {Tier: "GOLD", Qty: 2}},
	}
}

func findFont(t *testing.T) string {
	t.Helper()
	candidates := []string{
		filepath.Join("..", "..", "..", "fonts", "DejaVuSans.ttf"),
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	t.Skip("DejaVuSans.ttf not available")
	return ""
}

func TestGenerateRequiresFont(t *testing.T) {
	_, err := template.NewTicketPDFGenerator("").Generate(sampleTicket(), nil)
	assert.Error(t, err)

	_, err = template.NewTicketPDFGenerator(filepath.Join(t.TempDir(), "missing.ttf")).Generate(sampleTicket(), nil)
	assert.ErrorContains(t, err, "failed to load font")
}

func TestGenerateWithQRCode(t *testing.T) {
	font := findFont(t)

	cred, err := qr.NewQRGenerator().Issue("order-1")
	require.NoError(t, err)

	pdf, err := template.NewTicketPDFGenerator(font).Generate(sampleTicket(), cred.PNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestGenerateRejectsBadQRImage(t *testing.T) {
	font := findFont(t)

	_, err := template.NewTicketPDFGenerator(font).Generate(sampleTicket(), []byte("not a png"))
	assert.ErrorContains(t, err, "decode QR code")
}
