package certificate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFData carries everything the certificate template renders.
type PDFData struct {
	AttendeeName  string
	EventTitle    string
	EventVenue    string
	EventDate     time.Time
	SerialNo      string
	IssuedAt      time.Time
	IssuerName    string
	SignatoryName string
	SignatoryRole string
}

// GeneratePDF renders the fixed landscape A4 certificate template.
func GeneratePDF(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	// Border
	pdf.SetLineWidth(1.2)
	pdf.SetDrawColor(40, 60, 120)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")
	pdf.SetLineWidth(0.3)
	pdf.Rect(13, 13, pageW-26, pageH-26, "D")

	pdf.SetY(32)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(40, 60, 120)
	pdf.CellFormat(0, 8, data.IssuerName, "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Times", "B", 30)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 14, "Certificate of Attendance", "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Times", "BI", 24)
	pdf.CellFormat(0, 12, data.AttendeeName, "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "attended", "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, data.EventTitle, "", 1, "C", false, 0, "")

	detail := fmt.Sprintf("held on %s", data.EventDate.Format("January 2, 2006"))
	if data.EventVenue != "" {
		detail = fmt.Sprintf("held on %s at %s", data.EventDate.Format("January 2, 2006"), data.EventVenue)
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, detail, "", 1, "C", false, 0, "")

	if data.SignatoryName != "" {
		pdf.SetY(pageH - 58)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 6, data.SignatoryName, "", 1, "C", false, 0, "")
		if data.SignatoryRole != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 5, data.SignatoryRole, "", 1, "C", false, 0, "")
		}
	}

	pdf.SetY(pageH - 28)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(110, 110, 110)
	footer := fmt.Sprintf("Serial %s  |  Issued %s", data.SerialNo, data.IssuedAt.Format("2006-01-02"))
	pdf.CellFormat(0, 5, footer, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
