package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
)

// Layout is the page geometry in points, measured from the top-left corner
// of a US Letter page.
type Layout struct {
	Top      float64 // first baseline on a page
	Bottom   float64 // a preview row below this starts a new page
	Margin   float64
	Indent   float64
	FontSize float64
}

// DefaultLayout mirrors a one-inch-ish left margin with a 42pt header band.
func DefaultLayout() Layout {
	return Layout{
		Top:      42,
		Bottom:   742,
		Margin:   100,
		Indent:   120,
		FontSize: 12,
	}
}

type line struct {
	x, y float64
	text string
}

// PDF renders dataset reports.
type PDF struct {
	layout Layout
}

func NewPDF(layout Layout) *PDF {
	return &PDF{layout: layout}
}

func (p *PDF) Render(ds entity.Dataset, preview []entity.EquipmentRecord) ([]byte, error) {
	pages := p.paginate(ds, preview)

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetTitle(fmt.Sprintf("Report for Dataset: %s", ds.Filename), true)
	doc.SetCreator("chemvis", false)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", p.layout.FontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		doc.AddPage()
		for _, ln := range page {
			doc.Text(ln.x, ln.y, tr(ln.text))
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	return buf.Bytes(), nil
}

// paginate places every line of the report, breaking to a new page when a
// preview row would fall below the bottom threshold.
func (p *PDF) paginate(ds entity.Dataset, preview []entity.EquipmentRecord) [][]line {
	l := p.layout
	s := ds.Summary

	page := []line{
		{l.Margin, l.Top, "Report for Dataset: " + ds.Filename},
		{l.Margin, l.Top + 20, "Uploaded: " + ds.UploadedAt.UTC().Format(time.RFC3339)},
	}

	y := l.Top + 50
	page = append(page, line{l.Margin, y, "Summary Statistics:"})
	y += 20
	for _, stat := range []string{
		"Count: " + strconv.Itoa(s.Count),
		"Avg Flowrate: " + number(s.AvgFlowrate),
		"Avg Pressure: " + number(s.AvgPressure),
		"Avg Temp: " + number(s.AvgTemperature),
	} {
		page = append(page, line{l.Indent, y, stat})
		y += 15
	}

	y += 25
	page = append(page, line{l.Margin, y, fmt.Sprintf("Data Preview (First %d rows):", len(preview))})
	y += 20

	var pages [][]line
	for _, rec := range preview {
		if y > l.Bottom {
			pages = append(pages, page)
			page = nil
			y = l.Top
		}
		page = append(page, line{l.Margin, y, fmt.Sprintf("%s | %s | %s", rec.EquipmentName, rec.Type, number(rec.Flowrate))})
		y += 15
	}

	return append(pages, page)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
