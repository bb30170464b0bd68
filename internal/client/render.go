package client

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const barWidth = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4DB6AC"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2A3850"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func RenderHistory(h History) string {
	if len(h.Datasets) == 0 {
		return labelStyle.Render("no datasets uploaded yet")
	}

	t := newTable("ID", "Filename", "Uploaded", "Records", "Avg Flowrate", "Avg Pressure", "Avg Temp")
	for _, ds := range h.Datasets {
		s := ds.SummaryStats
		t.Row(
			strconv.FormatInt(ds.ID, 10),
			ds.Filename,
			ds.UploadTimestamp.Local().Format(time.DateTime),
			strconv.Itoa(ds.RecordCount),
			decimal(s.AvgFlowrate),
			decimal(s.AvgPressure),
			decimal(s.AvgTemperature),
		)
	}

	return t.String() + "\n" + pageFooter(h.Page)
}

func RenderSummary(s Summary) string {
	lines := []string{
		labelStyle.Render("Count:           ") + strconv.Itoa(s.Count),
		labelStyle.Render("Avg Flowrate:    ") + decimal(s.AvgFlowrate),
		labelStyle.Render("Avg Pressure:    ") + decimal(s.AvgPressure),
		labelStyle.Render("Avg Temperature: ") + decimal(s.AvgTemperature),
	}
	return strings.Join(lines, "\n")
}

// RenderDistribution draws one bar per equipment type, largest first, scaled
// so the most common type spans the full width.
func RenderDistribution(dist map[string]int) string {
	if len(dist) == 0 {
		return ""
	}

	types := make([]string, 0, len(dist))
	peak, nameWidth := 0, 0
	for name, n := range dist {
		types = append(types, name)
		peak = max(peak, n)
		nameWidth = max(nameWidth, lipgloss.Width(name))
	}
	sort.Slice(types, func(i, j int) bool {
		if dist[types[i]] != dist[types[j]] {
			return dist[types[i]] > dist[types[j]]
		}
		return types[i] < types[j]
	})

	var b strings.Builder
	for i, name := range types {
		n := dist[name]
		size := 0
		if peak > 0 {
			size = max(1, n*barWidth/peak)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-*s %s %d", nameWidth, name, barStyle.Render(strings.Repeat("█", size)), n)
	}

	return b.String()
}

func RenderRecords(records []Record) string {
	t := newTable("Equipment Name", "Type", "Flowrate", "Pressure", "Temperature")
	for _, r := range records {
		t.Row(r.EquipmentName, r.Type, decimal(r.Flowrate), decimal(r.Pressure), decimal(r.Temperature))
	}
	return t.String()
}

func RenderDashboard(d Dashboard) string {
	title := fmt.Sprintf("Dataset %d", d.Dataset.ID)
	if d.Dataset.Filename != "" {
		title += " · " + d.Dataset.Filename
	}

	sections := []string{titleStyle.Render(title)}
	if !d.Dataset.UploadTimestamp.IsZero() {
		sections = append(sections, labelStyle.Render("Uploaded: ")+d.Dataset.UploadTimestamp.Local().Format(time.DateTime))
	}

	sections = append(sections,
		"",
		titleStyle.Render("Summary"),
		RenderSummary(d.Detail.Summary),
		"",
		titleStyle.Render("Type Distribution"),
		RenderDistribution(d.Detail.Summary.TypeDistribution),
		"",
		titleStyle.Render("Records"),
		RenderRecords(d.Detail.Records),
		pageFooter(d.Detail.Page),
	)

	return strings.Join(sections, "\n")
}

func pageFooter(p Page) string {
	if p.Size == 0 {
		return ""
	}
	pages := (p.Total + p.Size - 1) / p.Size
	return labelStyle.Render(fmt.Sprintf("page %d of %d, %d total", p.Number, max(pages, 1), p.Total))
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
