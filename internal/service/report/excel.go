package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"ev-assembly/internal/storage"
)

// GenerateOrderExcel renders the order report as a spreadsheet: one row
// per registration grouped by day, with a worker summary block below.
func (s *Service) GenerateOrderExcel(ctx context.Context, orderID int64) ([]byte, error) {
	const op = "service.report.GenerateOrderExcel"

	report, err := s.OrderReport(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Order Report"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Order %s - %s, %d units",
		report.Order.OrderCode, report.Order.VehicleTypeName, report.Order.Quantity))

	headers := []string{"Date", "Worker", "Code", "Process", "Operation",
		"Expected", "Actual", "Deviation", "Minutes", "Bonus", "Penalty", "Status"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, name)
	}

	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 2)
	f.SetCellStyle(sheet, "A2", lastCol, headerStyle)

	// rows grouped by day, days in order
	rowNum := 3
	for _, dateKey := range sortedDays(report.DailyReport) {
		for _, r := range report.DailyReport[dateKey] {
			actual := ""
			if r.ActualQuantity != nil {
				actual = fmt.Sprintf("%d", *r.ActualQuantity)
			}

			f.SetCellValue(sheet, cellName(1, rowNum), dateKey)
			f.SetCellValue(sheet, cellName(2, rowNum), r.UserName)
			f.SetCellValue(sheet, cellName(3, rowNum), r.UserCode)
			f.SetCellValue(sheet, cellName(4, rowNum), r.ProcessName)
			f.SetCellValue(sheet, cellName(5, rowNum), r.OperationName)
			f.SetCellValue(sheet, cellName(6, rowNum), r.EffectiveExpected())
			f.SetCellValue(sheet, cellName(7, rowNum), actual)
			f.SetCellValue(sheet, cellName(8, rowNum), r.Deviation)
			f.SetCellValue(sheet, cellName(9, rowNum), r.WorkingMinutes)
			f.SetCellValue(sheet, cellName(10, rowNum), r.BonusAmount)
			f.SetCellValue(sheet, cellName(11, rowNum), r.PenaltyAmount)
			f.SetCellValue(sheet, cellName(12, rowNum), r.Status)
			rowNum++
		}
	}

	// worker summary below the detail rows
	rowNum++
	f.SetCellValue(sheet, cellName(1, rowNum), "Worker summary")
	rowNum++

	summaryHeaders := []string{"Worker", "Code", "Quantity", "Minutes", "Bonus", "Penalty", "Operations"}
	for i, name := range summaryHeaders {
		f.SetCellValue(sheet, cellName(i+1, rowNum), name)
	}
	summaryLast, _ := excelize.CoordinatesToCellName(len(summaryHeaders), rowNum)
	f.SetCellStyle(sheet, cellName(1, rowNum), summaryLast, headerStyle)
	rowNum++

	for _, w := range report.WorkerSummary {
		f.SetCellValue(sheet, cellName(1, rowNum), w.Name)
		f.SetCellValue(sheet, cellName(2, rowNum), w.Code)
		f.SetCellValue(sheet, cellName(3, rowNum), w.TotalQuantity)
		f.SetCellValue(sheet, cellName(4, rowNum), w.TotalMinutes)
		f.SetCellValue(sheet, cellName(5, rowNum), w.TotalBonus)
		f.SetCellValue(sheet, cellName(6, rowNum), w.TotalPenalty)
		f.SetCellValue(sheet, cellName(7, rowNum), w.Operations)
		rowNum++
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      2,
		TopLeftCell: "A3",
	})

	f.SetColWidth(sheet, "A", "E", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func sortedDays(byDay map[string][]storage.DailyRegistration) []string {
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	// ISO date keys sort lexicographically
	sort.Strings(days)
	return days
}
