package export

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"sentiboard/internal/domain"
)

const reportTitle = "Sentiment Analysis Report"

// ReportTable is the tabular form of a batch used by the PDF report.
type ReportTable struct {
	Title string
	Head  []string
	Rows  [][]string
}

func BuildReportTable(results []domain.AnalysisResult) ReportTable {
	t := ReportTable{
		Title: reportTitle,
		Head:  []string{"Sentiment", "Confidence", "Text", "Keywords"},
		Rows:  make([][]string, 0, len(results)),
	}
	for _, r := range results {
		t.Rows = append(t.Rows, []string{
			string(r.Sentiment),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			r.OriginalText,
			strings.Join(r.Keywords, ", "),
		})
	}
	return t
}

type rgb struct{ r, g, b int }

var (
	headFill     = rgb{20, 184, 166}
	headText     = rgb{255, 255, 255}
	alternateRow = rgb{243, 244, 246}
	bodyText     = rgb{17, 24, 39}
	gridLine     = rgb{200, 200, 200}
)

const (
	pageMargin  = 14.0
	tableStartY = 30.0
	cellPadding = 3.0
	fontSize    = 10.0
	lineHeight  = fontSize * 1.15 * 25.4 / 72
)

// fixed widths for Sentiment and Confidence; the rest is shared by Text and
// Keywords.
var fixedColumnWidths = []float64{30, 25}

// PDF renders the report table on A4 portrait pages, repeating the header
// row after each page break. Core fonts are cp1252, so cell text is
// translated before it is measured.
func PDF(results []domain.AnalysisResult) ([]byte, error) {
	table := BuildReportTable(results)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(table.Title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(15, 20, tr(table.Title))

	widths := columnWidths(pdf, len(table.Head))
	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - pageMargin

	pdf.SetDrawColor(gridLine.r, gridLine.g, gridLine.b)
	pdf.SetLineWidth(0.1)
	y := drawRow(pdf, tr, widths, tableStartY, table.Head, true, false)
	for i, row := range table.Rows {
		cells := translateAll(tr, row)
		h := rowHeight(pdf, widths, cells, false)
		if y+h > bottom {
			pdf.AddPage()
			y = drawRow(pdf, tr, widths, pageMargin, table.Head, true, false)
		}
		y = drawRow(pdf, nil, widths, y, cells, false, i%2 == 1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func columnWidths(pdf *fpdf.Fpdf, n int) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	remaining := pageWidth - 2*pageMargin
	widths := make([]float64, n)
	for i, w := range fixedColumnWidths {
		widths[i] = w
		remaining -= w
	}
	// Text gets two thirds of what is left.
	widths[2] = remaining * 2 / 3
	widths[3] = remaining - widths[2]
	return widths
}

func translateAll(tr func(string) string, cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = tr(c)
	}
	return out
}

func setRowFont(pdf *fpdf.Fpdf, head bool) {
	if head {
		pdf.SetFont("Helvetica", "B", fontSize)
		return
	}
	pdf.SetFont("Helvetica", "", fontSize)
}

func rowHeight(pdf *fpdf.Fpdf, widths []float64, cells []string, head bool) float64 {
	setRowFont(pdf, head)
	maxLines := 1
	for i, c := range cells {
		if n := len(pdf.SplitLines([]byte(c), widths[i]-2*cellPadding)); n > maxLines {
			maxLines = n
		}
	}
	return float64(maxLines)*lineHeight + 2*cellPadding
}

// drawRow draws one grid row starting at y and returns the y below it. When
// tr is non-nil the cells are translated first.
func drawRow(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, y float64, cells []string, head, alternate bool) float64 {
	if tr != nil {
		cells = translateAll(tr, cells)
	}
	h := rowHeight(pdf, widths, cells, head)

	style := "D"
	switch {
	case head:
		pdf.SetFillColor(headFill.r, headFill.g, headFill.b)
		pdf.SetTextColor(headText.r, headText.g, headText.b)
		style = "FD"
	case alternate:
		pdf.SetFillColor(alternateRow.r, alternateRow.g, alternateRow.b)
		pdf.SetTextColor(bodyText.r, bodyText.g, bodyText.b)
		style = "FD"
	default:
		pdf.SetTextColor(bodyText.r, bodyText.g, bodyText.b)
	}

	x := pageMargin
	for i, c := range cells {
		w := widths[i]
		pdf.Rect(x, y, w, h, style)
		for j, line := range pdf.SplitLines([]byte(c), w-2*cellPadding) {
			pdf.SetXY(x+cellPadding, y+cellPadding+float64(j)*lineHeight)
			pdf.CellFormat(w-2*cellPadding, lineHeight, string(line), "", 0, "L", false, 0, "")
		}
		x += w
	}
	return y + h
}
