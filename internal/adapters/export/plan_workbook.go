// Package export renders rehab plans as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"sagra/internal/domain/rehab"
)

// DisplayDateLayout is the dd/mm/yyyy format staff read dates in.
const DisplayDateLayout = "02/01/2006"

const (
	scheduleSheet = "Cronograma"
	summarySheet  = "Resumo"
)

// ScheduleHeader is the first row of the schedule sheet.
var ScheduleHeader = []string{"Fase", "Início", "Fim", "Dias", "Atividades Liberadas", "Testes Específicos", "Tratamentos"}

var scheduleColumnWidths = []float64{12, 12, 12, 10, 50, 30, 40}

// Plan is what the workbook shows for one athlete.
type Plan struct {
	AthleteName       string
	SurgeryDate       time.Time
	DischargeForecast time.Time
	PercentComplete   float64
	CurrentWeek       int
	CurrentPhase      string // empty when today is outside every window
	Schedule          []rehab.ScheduledPhase
}

// PlanWorkbook renders plan as an XLSX file with a summary and a schedule sheet.
// PRE: plan.Schedule comes from rehab.ComputeSchedule
// POST: Returns the encoded workbook; the schedule sheet has one row per phase
func PlanWorkbook(plan Plan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{scheduleSheet, summarySheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	// Indexes shift once Sheet1 is gone.
	index, err := f.GetSheetIndex(scheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to locate sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSchedule(f, plan.Schedule, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSummary(f, plan, headerStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSchedule(f *excelize.File, schedule []rehab.ScheduledPhase, headerStyle int) error {
	for col, header := range ScheduleHeader {
		if err := setCell(f, scheduleSheet, col+1, 1, header); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(scheduleSheet, name, name, scheduleColumnWidths[col]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetCellStyle(scheduleSheet, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, sp := range schedule {
		row := i + 2
		values := []any{
			sp.Phase.Name,
			sp.Start.Format(DisplayDateLayout),
			sp.End.Format(DisplayDateLayout),
			sp.DurationLabel(),
			sp.Phase.AllowedActivities,
			sp.Phase.SpecificTests,
			sp.Phase.Treatments,
		}
		for col, v := range values {
			if err := setCell(f, scheduleSheet, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(scheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, plan Plan, headerStyle int) error {
	current := plan.CurrentPhase
	if current == "" {
		current = "-"
	}
	rows := [][2]any{
		{"Atleta", plan.AthleteName},
		{"Data da Cirurgia", plan.SurgeryDate.Format(DisplayDateLayout)},
		{"Previsão de Alta", plan.DischargeForecast.Format(DisplayDateLayout)},
		{"Progresso (%)", plan.PercentComplete},
		{"Semana Atual", plan.CurrentWeek},
		{"Fase Atual", current},
	}
	for i, kv := range rows {
		if err := setCell(f, summarySheet, 1, i+1, kv[0]); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, i+1, kv[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), headerStyle); err != nil {
		return fmt.Errorf("failed to set label style: %w", err)
	}
	return f.SetColWidth(summarySheet, "A", "B", 20)
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
