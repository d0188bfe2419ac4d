// Package report renders approved proposals into Excel workbooks.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/finance"
	"github.com/straye-as/presales-api/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// ContentType is the media type of rendered workbooks
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetCosts    = "Costs"
	SheetSchedule = "Schedule"
)

// Data is everything a workbook shows
type Data struct {
	Proposal    *domain.Proposal
	Rates       finance.Rates
	GeneratedAt time.Time
}

// Renderer builds workbooks and stores them under storage.FolderReports
type Renderer struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewRenderer creates a new renderer
func NewRenderer(s storage.Storage, logger *zap.Logger) *Renderer {
	return &Renderer{storage: s, logger: logger}
}

// Render builds the workbook and uploads it, returning the storage path
func (r *Renderer) Render(ctx context.Context, data *Data) (string, error) {
	f, err := Build(data)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("proposal-%s.xlsx", data.Proposal.ID)
	path, size, err := r.storage.Upload(ctx, storage.FolderReports, filename, ContentType, buf)
	if err != nil {
		return "", fmt.Errorf("failed to store workbook: %w", err)
	}

	r.logger.Info("proposal report rendered",
		zap.String("proposal_id", data.Proposal.ID.String()),
		zap.String("path", path),
		zap.Int64("size", size),
	)
	return path, nil
}

// Build creates the two sheet workbook in memory. The caller closes the file.
func Build(data *Data) (*excelize.File, error) {
	if data == nil || data.Proposal == nil {
		return nil, fmt.Errorf("report data has no proposal")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetCosts); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetSchedule); err != nil {
		f.Close()
		return nil, err
	}

	s, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f}
	writeCostSheet(w, s, data)
	writeScheduleSheet(w, s, data)
	if w.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build workbook: %w", w.err)
	}
	return f, nil
}

type styles struct {
	title  int
	header int
	money  int
	hours  int
	total  int
}

func newStyles(f *excelize.File) (*styles, error) {
	var s styles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return nil, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	}); err != nil {
		return nil, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return nil, err
	}
	if s.hours, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		return nil, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4}); err != nil {
		return nil, err
	}
	return &s, nil
}

// sheetWriter keeps the first error so cell writes read as a flat sequence
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) set(sheet string, col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, value)
}

func (w *sheetWriter) style(sheet string, col1, row1, col2, row2, style int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, from, to, style)
}

func (w *sheetWriter) width(sheet, startCol, endCol string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(sheet, startCol, endCol, width)
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(finance.CurrencyPlaces).Float64()
	return f
}

func analysisOf(p *domain.Proposal) *domain.CompleteAnalysis {
	if p.CurrentAnalysis != nil {
		return p.CurrentAnalysis
	}
	return p.OriginalAIAnalysis
}

func writeCostSheet(w *sheetWriter, s *styles, data *Data) {
	p := data.Proposal
	sheet := SheetCosts

	w.set(sheet, 1, 1, fmt.Sprintf("%s: %s", p.ClientName, p.ProjectName))
	w.style(sheet, 1, 1, 1, 1, s.title)

	info := [][2]interface{}{
		{"Status", string(p.Status)},
		{"Complexity", string(p.Complexity)},
		{"Duration (months)", p.DurationMonths},
		{"Generated by", strings.TrimSpace(p.Provider + " " + p.Model)},
		{"Approved by", p.ApprovedBy},
		{"Exported at", data.GeneratedAt.UTC().Format("2006-01-02 15:04")},
	}
	row := 3
	for _, kv := range info {
		w.set(sheet, 1, row, kv[0])
		w.set(sheet, 2, row, kv[1])
		row++
	}

	row++
	w.set(sheet, 1, row, "Parameter")
	w.set(sheet, 2, row, "Rate")
	w.style(sheet, 1, row, 2, row, s.header)
	for _, kv := range [][2]interface{}{
		{domain.ParameterTax, data.Rates.Tax},
		{domain.ParameterOverhead, data.Rates.Overhead},
		{domain.ParameterMargin, data.Rates.Margin},
	} {
		row++
		rate, _ := kv[1].(decimal.Decimal).Float64()
		w.set(sheet, 1, row, kv[0])
		w.set(sheet, 2, row, rate)
	}

	row += 2
	headers := []string{"Professional", "Role", "Hourly rate", "Total hours", "Base", "Tax", "Overhead", "Margin", "Price"}
	weeks := p.DurationMonths * 4
	for i, h := range headers {
		w.set(sheet, i+1, row, h)
	}
	for wk := 1; wk <= weeks; wk++ {
		w.set(sheet, len(headers)+wk, row, fmt.Sprintf("W%d", wk))
	}
	w.style(sheet, 1, row, len(headers)+max(weeks, 1), row, s.header)

	var totals finance.Components
	totalHours := 0.0
	firstResourceRow := row + 1
	for _, res := range p.Resources {
		row++
		name := ""
		if res.Professional != nil {
			name = res.Professional.Name
		}
		breakdown, err := finance.FullCascade(decimal.NewFromFloat(res.TotalHours), res.HourlyRate, data.Rates)
		if err != nil {
			w.err = fmt.Errorf("resource %s: %w", res.ID, err)
			return
		}
		c := breakdown.Breakdown
		totals.Base = totals.Base.Add(c.Base)
		totals.Tax = totals.Tax.Add(c.Tax)
		totals.Overhead = totals.Overhead.Add(c.Overhead)
		totals.Margin = totals.Margin.Add(c.Margin)
		totalHours += res.TotalHours

		w.set(sheet, 1, row, name)
		w.set(sheet, 2, row, res.Role)
		w.set(sheet, 3, row, money(res.HourlyRate))
		w.set(sheet, 4, row, res.TotalHours)
		w.set(sheet, 5, row, money(c.Base))
		w.set(sheet, 6, row, money(c.Tax))
		w.set(sheet, 7, row, money(c.Overhead))
		w.set(sheet, 8, row, money(c.Margin))
		w.set(sheet, 9, row, money(breakdown.FinalPrice))
		for i, h := range res.HoursPerWeek {
			w.set(sheet, len(headers)+i+1, row, h)
		}
	}
	if row >= firstResourceRow {
		w.style(sheet, 3, firstResourceRow, 3, row, s.money)
		w.style(sheet, 5, firstResourceRow, 9, row, s.money)
		w.style(sheet, 4, firstResourceRow, 4, row, s.hours)
	}

	row++
	w.set(sheet, 1, row, "Total")
	w.set(sheet, 4, row, totalHours)
	w.set(sheet, 5, row, money(totals.Base))
	w.set(sheet, 6, row, money(totals.Tax))
	w.set(sheet, 7, row, money(totals.Overhead))
	w.set(sheet, 8, row, money(totals.Margin))
	w.set(sheet, 9, row, money(totals.Sum()))
	w.style(sheet, 1, row, 9, row, s.total)

	row += 2
	w.set(sheet, 1, row, "Total cost")
	w.set(sheet, 2, row, money(p.TotalCost))
	w.set(sheet, 1, row+1, "Total price")
	w.set(sheet, 2, row+1, money(p.TotalPrice))
	w.style(sheet, 2, row, 2, row+1, s.total)

	w.width(sheet, "A", "B", 24)
	w.width(sheet, "C", "I", 14)
}

func writeScheduleSheet(w *sheetWriter, s *styles, data *Data) {
	sheet := SheetSchedule
	analysis := analysisOf(data.Proposal)

	w.set(sheet, 1, 1, "Schedule")
	w.style(sheet, 1, 1, 1, 1, s.title)
	if analysis == nil {
		w.set(sheet, 1, 3, "No analysis available")
		return
	}

	row := 3
	section := func(title string, cols ...string) {
		w.set(sheet, 1, row, title)
		w.style(sheet, 1, row, 1, row, s.title)
		row++
		for i, c := range cols {
			w.set(sheet, i+1, row, c)
		}
		w.style(sheet, 1, row, len(cols), row, s.header)
	}

	section("Phases", "Phase", "Effort %")
	for _, ph := range analysis.TeamEstimation.Phases {
		row++
		w.set(sheet, 1, row, ph.Name)
		w.set(sheet, 2, row, ph.EffortPercentage)
	}

	row += 2
	section("Sprints", "Sprint", "Deliverables")
	for _, sp := range analysis.Schedule.Sprints {
		row++
		w.set(sheet, 1, row, sp.Number)
		w.set(sheet, 2, row, strings.Join(sp.Deliverables, "; "))
	}

	row += 2
	section("Milestones", "Milestone", "Date")
	for _, m := range analysis.Schedule.Milestones {
		row++
		w.set(sheet, 1, row, m.Name)
		w.set(sheet, 2, row, m.Date)
	}

	row += 2
	section("Dependencies", "Task", "Depends on")
	for _, d := range analysis.Schedule.Dependencies {
		row++
		w.set(sheet, 1, row, d.Task)
		w.set(sheet, 2, row, strings.Join(d.DependsOn, ", "))
	}

	row += 2
	w.set(sheet, 1, row, "Risk buffer %")
	w.set(sheet, 2, row, analysis.Schedule.RiskBuffer)
	w.style(sheet, 1, row, 1, row, s.header)

	w.width(sheet, "A", "A", 30)
	w.width(sheet, "B", "B", 60)
}
