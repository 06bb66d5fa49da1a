package template

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"
)

// TicketData is everything printed on a ticket.
type TicketData struct {
	EventTitle string
	EventDate  string
	Location   string
	OrderID    string
	Name       string
	Amount     string
	Lines      []TicketLine
}

type TicketLine struct {
	Tier string
	Qty  int
}

type TicketPDFGenerator struct {
	fontPath string
}

func NewTicketPDFGenerator(fontPath string) *TicketPDFGenerator {
	return &TicketPDFGenerator{fontPath: fontPath}
}

func (g *TicketPDFGenerator) Generate(data TicketData, qrCode []byte) ([]byte, error) {
	if g.fontPath == "" {
		return nil, errors.New("no ticket font configured")
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont("dejavu", g.fontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	if err := pdf.SetFont("dejavu", "", 20); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	addHeader(pdf, data)

	if err := pdf.SetFont("dejavu", "", 13); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	pdf.SetY(120)
	addOrderInfo(pdf, data)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		if err := addQRCode(pdf, qrCode); err != nil {
			return nil, err
		}
	}

	pdf.SetY(pdf.GetY() + 20)
	addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf, data TicketData) {
	pdf.SetX(40)
	pdf.SetY(40)
	pdf.Cell(nil, data.EventTitle)
	pdf.Br(28)
	pdf.SetX(40)
	pdf.Cell(nil, fmt.Sprintf("%s · %s", data.EventDate, data.Location))
}

func addOrderInfo(pdf *gopdf.GoPdf, data TicketData) {
	info := []struct {
		Label string
		Value string
	}{
		{"Order ID", data.OrderID},
		{"Name", data.Name},
		{"Amount", data.Amount},
	}

	for _, item := range info {
		pdf.SetX(40)
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(20)
	}

	pdf.Br(6)
	for _, line := range data.Lines {
		pdf.SetX(40)
		pdf.Cell(nil, fmt.Sprintf("%d x %s", line.Qty, line.Tier))
		pdf.Br(20)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) error {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		return fmt.Errorf("failed to decode QR code: %w", err)
	}

	y := pdf.GetY()
	if err := pdf.ImageFrom(img, 40, y, &gopdf.Rect{W: 180, H: 180}); err != nil {
		return fmt.Errorf("failed to draw QR code: %w", err)
	}
	pdf.SetY(y + 180)
	return nil
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.Cell(nil, "Show this QR code at the venue entrance. One scan admits the whole order.")
}
