package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"planmate/internal/analytics"
	"planmate/internal/models"
	"planmate/internal/utils"
)

// PDFService renders progress summaries as PDF documents
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// GenerateProgressReportPDF renders a summary. title appears on the first page.
func (s *PDFService) GenerateProgressReportPDF(summary *analytics.Summary, title string) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("invalid summary data")
	}

	// A4, portrait
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125) // Gray
		pdf.SetX(15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 102, 204) // Blue
	pdf.CellFormat(0, 20, title, "", 0, "C", false, 0, "")

	pdf.Ln(15)
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 10, fmt.Sprintf("Generated: %s", utils.FormatDate(summary.GeneratedAt)), "", 0, "C", false, 0, "")

	s.addHeader(pdf, "Overview")
	s.addOverview(pdf, summary)

	s.addHeader(pdf, fmt.Sprintf("Week of %s", utils.FormatDate(summary.Weekly.WeekStart)))
	s.addWeeklyTable(pdf, summary.Weekly)

	s.addHeader(pdf, "Priorities")
	s.addPriorityTable(pdf, summary.Priorities)

	s.addHeader(pdf, "Insights")
	s.addInsights(pdf, summary.Insights)

	if len(summary.RecentCompleted) > 0 {
		s.addHeader(pdf, "Recently Completed")
		s.addRecentCompleted(pdf, summary.RecentCompleted)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// addHeader adds a section header with a rule under it
func (s *PDFService) addHeader(pdf *gofpdf.Fpdf, title string) {
	if pdf.GetY() > 250 {
		pdf.AddPage()
	}
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41) // Dark gray
	pdf.CellFormat(0, 10, title, "", 0, "L", false, 0, "")

	pdf.Ln(10)
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 102, 204)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)
}

func (s *PDFService) addOverview(pdf *gofpdf.Fpdf, summary *analytics.Summary) {
	counts := summary.Counts
	stats := [][2]string{
		{"Total tasks", fmt.Sprintf("%d", counts.Total)},
		{"Completed", fmt.Sprintf("%d", counts.Completed)},
		{"Pending", fmt.Sprintf("%d", counts.Pending)},
		{"Completion rate", fmt.Sprintf("%d%%", counts.CompletionRate)},
		{"High priority done", fmt.Sprintf("%d of %d", counts.HighPriorityCompleted, counts.HighPriority)},
	}

	pdf.SetFillColor(248, 249, 250) // Light gray
	pdf.SetDrawColor(0, 102, 204)
	startY := pdf.GetY()
	boxHeight := float64(len(stats)*6 + 8)
	pdf.Rect(15, startY, 180, boxHeight, "FD")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(33, 37, 41)
	y := startY + 4
	for _, stat := range stats {
		pdf.SetXY(23, y)
		pdf.CellFormat(80, 6, stat[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, stat[1], "", 0, "R", false, 0, "")
		y += 6
	}
	pdf.SetY(startY + boxHeight)
}

func (s *PDFService) addWeeklyTable(pdf *gofpdf.Fpdf, weekly analytics.WeeklySeries) {
	rows := make([][]string, 0, len(weekly.Days)+1)
	for i, count := range weekly.Days {
		rows = append(rows, []string{weekly.Labels[i], fmt.Sprintf("%d", count)})
	}
	rows = append(rows, []string{"Completion rate", fmt.Sprintf("%d / %d (%d%%)", weekly.Completed, weekly.Total, weekly.CompletionRate)})
	s.addTable(pdf, []string{"Day", "Completed"}, []float64{110, 60}, rows)
}

func (s *PDFService) addPriorityTable(pdf *gofpdf.Fpdf, dist analytics.PriorityDistribution) {
	rows := make([][]string, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		bucket := dist.For(p)
		rows = append(rows, []string{
			strings.ToUpper(string(p[:1])) + string(p[1:]),
			fmt.Sprintf("%d", bucket.Completed),
			fmt.Sprintf("%d", bucket.Total),
		})
	}
	s.addTable(pdf, []string{"Priority", "Completed", "Total"}, []float64{90, 40, 40}, rows)
}

func (s *PDFService) addInsights(pdf *gofpdf.Fpdf, insights analytics.ProductivityInsights) {
	lines := []string{
		fmt.Sprintf("Most productive time: %s (%d tasks)", insights.MostProductiveTime.Period, insights.MostProductiveTime.Count),
		fmt.Sprintf("Best day: %s (%d tasks)", insights.BestDay.Name, insights.BestDay.Count),
		fmt.Sprintf("Average time per task: %s", insights.AvgTimePerTask),
		fmt.Sprintf("Median time per task: %s", utils.FormatDuration(insights.MedianDuration)),
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(33, 37, 41)
	for _, line := range lines {
		pdf.SetX(20)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
}

func (s *PDFService) addRecentCompleted(pdf *gofpdf.Fpdf, tasks []models.Task) {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		completed := "-"
		if task.CompletedAt != nil {
			completed = task.CompletedAt.Format("Mon Jan 2 15:04")
		}
		title := task.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		rows = append(rows, []string{title, string(task.Priority), completed})
	}
	s.addTable(pdf, []string{"Task", "Priority", "Completed"}, []float64{100, 30, 40}, rows)
}

// addTable draws a header row plus alternating-fill body rows
func (s *PDFService) addTable(pdf *gofpdf.Fpdf, headers []string, widths []float64, rows [][]string) {
	tableStartX := 20.0
	rowHeight := 7.0

	pdf.SetFillColor(0, 102, 204)   // Blue background
	pdf.SetTextColor(255, 255, 255) // White text
	pdf.SetFont("Arial", "B", 9)
	pdf.SetX(tableStartX)
	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], rowHeight, header, "1", 0, align, true, 0, "")
	}
	pdf.Ln(rowHeight)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(33, 37, 41)
	for r, row := range rows {
		if r%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(248, 249, 250)
		}
		pdf.SetX(tableStartX)
		for i, cell := range row {
			align := "L"
			if i > 0 {
				align = "R"
			}
			pdf.CellFormat(widths[i], rowHeight, cell, "1", 0, align, true, 0, "")
		}
		pdf.Ln(rowHeight)
	}
}
