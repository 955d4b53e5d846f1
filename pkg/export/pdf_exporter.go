package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Slip is the data rendered onto a printable reprimand slip.
type Slip struct {
	ReprimandID string
	StudentName string
	StudentID   string
	LevelName   string
	Reason      string
	IssuerName  string
	IssuedAt    time.Time
	Signed      bool
}

// PDFExporter renders reprimand slips and tabular datasets.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderSlip creates a single-page reprimand slip.
func (e *PDFExporter) RenderSlip(slip Slip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "DISCIPLINARY REPRIMAND", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Folio %s", slip.ReprimandID), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	field := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 8, label, "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 8, value, "", "", false)
	}

	field("Student", fmt.Sprintf("%s (%s)", slip.StudentName, slip.StudentID))
	field("Level", slip.LevelName)
	field("Issued by", slip.IssuerName)
	field("Date", slip.IssuedAt.Format("January 2, 2006"))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, "Reason", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 7, slip.Reason, "1", "", false)
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 10)
	status := "Pending signature"
	if slip.Signed {
		status = "Acknowledged by the student"
	}
	pdf.CellFormat(90, 8, "_________________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 8, "_________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(90, 6, "Student signature", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "Preceptor signature", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, status, "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render slip: %w", err)
	}
	return buf.Bytes(), nil
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
