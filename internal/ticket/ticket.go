package ticket

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
)

var ErrTicketUnavailable = errors.New("キャンセル済みの予約のチケットは発行できません")

// Ticket は予約1件分のチケット情報
type Ticket struct {
	BookingID    string `json:"booking_id"`
	EventTitle   string `json:"event_title"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Location     string `json:"location"`
	CustomerName string `json:"customer_name"`
	TicketType   string `json:"ticket_type"`
	Quantity     int    `json:"quantity"`
	TotalPrice   int    `json:"total_price"`
	QRCode       string `json:"qr_code"`
}

// FromBooking は予約のスナップショットからチケットを組み立てる
func FromBooking(b *booking.Booking) (*Ticket, error) {
	if b.IsCancelled() {
		return nil, ErrTicketUnavailable
	}
	t := &Ticket{
		BookingID:    b.ID,
		CustomerName: b.CustomerName,
		TicketType:   b.TicketType,
		Quantity:     b.Quantity,
		TotalPrice:   b.TotalPrice,
		QRCode:       b.TicketCode,
	}
	if b.Event != nil {
		t.EventTitle = b.Event.Title
		t.Date = b.Event.Date
		t.Time = b.Event.Time
		t.Location = b.Event.Location
	}
	return t, nil
}

// FileName はPDFのダウンロード名
func (t *Ticket) FileName() string {
	return fmt.Sprintf("ticket-%s.pdf", t.BookingID)
}

// GeneratePDF はQRコード付きのA4一枚のeチケットを生成する
func GeneratePDF(t *Ticket) ([]byte, error) {
	qrPNG, err := qrcode.Encode(t.QRCode, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("QRコードの生成に失敗: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "EVENT eTICKET")
	pdf.Ln(20)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// 予約概要とQRコード
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 55, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING SUMMARY")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("Booking ID: %s", t.BookingID),
		fmt.Sprintf("Name: %s", t.CustomerName),
		fmt.Sprintf("Ticket Type: %s", t.TicketType),
		fmt.Sprintf("Quantity: %d", t.Quantity),
		fmt.Sprintf("Total: $%d", t.TotalPrice),
	} {
		pdf.SetX(20)
		pdf.Cell(0, 8, tr(line))
		pdf.Ln(6)
	}

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 63)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Ticket code: %s", t.QRCode)))
	pdf.Ln(10)

	drawSectionTitle(pdf, "EVENT DETAILS")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Title: %s", t.EventTitle)))
	pdf.Ln(6)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Date & Time: %s %s", t.Date, t.Time)))
	pdf.Ln(6)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Location: %s", t.Location)))
	pdf.Ln(8)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "Present this ticket at the entrance.", "", 0, "C", false, 0, "")

	if pdf.Err() {
		return nil, fmt.Errorf("PDFの生成に失敗: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDFの出力に失敗: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
}
