package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"egov-event-export/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	eventsSheet     = "Events"
	categoriesSheet = "Categories"
)

// workbookColumn one spreadsheet column of the events sheet
type workbookColumn struct {
	header string
	width  float64
	value  func(e *models.Event) interface{}
}

func numberCell(n models.Number) interface{} {
	if n.Fractional {
		return n.Float
	}
	return n.Int
}

var workbookColumns = []workbookColumn{
	{models.ColID, 12, func(e *models.Event) interface{} { return numberCell(e.ID) }},
	{models.ColUUID, 38, func(e *models.Event) interface{} { return e.UUID }},
	{models.ColTitle, 50, func(e *models.Event) interface{} { return e.Title }},
	{models.ColEventCode, 15, func(e *models.Event) interface{} { return e.EventCode }},
	{models.ColStartDate, 20, func(e *models.Event) interface{} { return e.StartDate }},
	{models.ColEndDate, 20, func(e *models.Event) interface{} { return e.EndDate }},
	{models.ColStartTimestamp, 14, func(e *models.Event) interface{} { return numberCell(e.StartTimestamp) }},
	{models.ColEndTimestamp, 14, func(e *models.Event) interface{} { return numberCell(e.EndTimestamp) }},
	{models.ColCreatedDate, 20, func(e *models.Event) interface{} { return e.CreatedDate }},
	{models.ColDescription, 60, func(e *models.Event) interface{} { return e.Description }},
	{models.ColLocation, 25, func(e *models.Event) interface{} { return e.Location }},
	{models.ColOrganizer, 25, func(e *models.Event) interface{} { return e.Organizer }},
	{models.ColURL, 30, func(e *models.Event) interface{} { return e.URL }},
	{models.ColCategoryID, 12, func(e *models.Event) interface{} { return numberCell(e.CategoryID) }},
	{models.ColCategoryLabel, 25, func(e *models.Event) interface{} { return e.CategoryLabel }},
	{models.ColRiskLabel, 18, func(e *models.Event) interface{} { return e.RiskLabel }},
	{models.ColActive, 10, func(e *models.Event) interface{} { return e.Active }},
	{models.ColPublic, 10, func(e *models.Event) interface{} { return e.Public }},
	{models.ColSystemImpact, 10, func(e *models.Event) interface{} { return e.SystemImpact }},
	{models.ColLegalArea, 25, func(e *models.Event) interface{} { return e.LegalArea }},
	{models.ColStatute, 25, func(e *models.Event) interface{} { return e.Statute }},
	{models.ColStatuteType, 20, func(e *models.Event) interface{} { return e.StatuteType }},
	{models.ColStatuteURL, 30, func(e *models.Event) interface{} { return e.StatuteURL }},
	{models.ColOfficeID, 30, func(e *models.Event) interface{} { return e.OfficeID }},
	{models.ColOfficeAbbreviation, 15, func(e *models.Event) interface{} { return e.OfficeAbbreviation }},
	{models.ColSubsystemAbbreviation, 15, func(e *models.Event) interface{} { return e.SubsystemAbbreviation }},
	{models.ColContactPerson, 25, func(e *models.Event) interface{} { return e.ContactPerson }},
	{models.ColContactDepartment, 25, func(e *models.Event) interface{} { return e.ContactDepartment }},
	{models.ColSupplier, 25, func(e *models.Event) interface{} { return e.Supplier }},
	{models.ColEnvironment, 15, func(e *models.Event) interface{} { return e.Environment }},
	{models.ColStatus, 15, func(e *models.Event) interface{} { return e.Status }},
	{models.ColOutageType, 20, func(e *models.Event) interface{} { return e.OutageType }},
	{models.ColCrossSystemImpact, 25, func(e *models.Event) interface{} { return e.CrossSystemImpact }},
	{models.ColServiceDeskID, 15, func(e *models.Event) interface{} { return e.ServiceDeskID }},
}

// WorkbookWriter writes the corpus as an XLSX workbook
type WorkbookWriter struct {
	path   string
	logger *zap.Logger
}

// NewWorkbookWriter creates a new workbook writer for path
func NewWorkbookWriter(path string, logger *zap.Logger) *WorkbookWriter {
	return &WorkbookWriter{
		path:   path,
		logger: logger,
	}
}

// Write replaces the workbook with an events sheet and a categories sheet
func (w *WorkbookWriter) Write(a *Artifacts) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(eventsSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := w.writeEvents(f, headerStyle, a.Events); err != nil {
		return err
	}
	if err := w.writeCategories(f, headerStyle, a.Categories); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create workbook dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".workbook.*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}

	w.logger.Info("Wrote workbook",
		zap.String("path", w.path),
		zap.Int("rows", len(a.Events)),
	)
	return nil
}

func (w *WorkbookWriter) writeEvents(f *excelize.File, headerStyle int, events []models.Event) error {
	header := make([]interface{}, len(workbookColumns))
	for i, c := range workbookColumns {
		header[i] = c.header
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(eventsSheet, col, col, c.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := writeHeader(f, eventsSheet, headerStyle, header); err != nil {
		return err
	}

	for i := range events {
		row := make([]interface{}, len(workbookColumns))
		for j, c := range workbookColumns {
			row[j] = c.value(&events[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(eventsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write event row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(eventsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func (w *WorkbookWriter) writeCategories(f *excelize.File, headerStyle int, categories []models.CategoryCount) error {
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeHeader(f, categoriesSheet, headerStyle, []interface{}{"id", "nazev", "count"}); err != nil {
		return err
	}

	for i, c := range categories {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(categoriesSheet, cell, &[]interface{}{c.ID, c.Label, c.Count}); err != nil {
			return fmt.Errorf("failed to write category row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, header []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	return nil
}
