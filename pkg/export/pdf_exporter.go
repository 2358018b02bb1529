package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Syllabus is the printable outline of one room.
type Syllabus struct {
	Name        string
	Category    string
	Description string
	Enrolled    int
	Modules     []SyllabusModule
}

// SyllabusModule is one numbered module of a syllabus.
type SyllabusModule struct {
	Name    string
	Content string
}

// PDFExporter renders room syllabi as A4 documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a title block followed by one section per module.
func (e *PDFExporter) Render(s Syllabus) ([]byte, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("syllabus requires a room name")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(s.Name, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(s.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, tr(s.Category+" | "+strconv.Itoa(s.Enrolled)+" enrolled"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if s.Description != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, tr(s.Description), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Modules", "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	for i, m := range s.Modules {
		pdf.SetFont("Arial", "B", 11)
		name := m.Name
		if name == "" {
			name = "Untitled"
		}
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%d. %s", i+1, name)), "", 1, "L", false, 0, "")
		if m.Content != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, tr(m.Content), "", "L", false)
		}
		pdf.Ln(2)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
