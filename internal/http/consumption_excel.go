package httpapi

import (
	"bytes"
	"fmt"

	"hydrosense-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ConsumptionReportHeader 分桶明细表头
var ConsumptionReportHeader = []string{
	"Period Start",
	"Period End",
	"Consumption (L)",
	"Per Day Per Person (L)",
	"Deviation From Baseline (%)",
}

// GenerateConsumptionReport 生成消耗报表 Excel 文件
// 第一张表为汇总（总量 + 类别分项），第二张表为分桶明细
func GenerateConsumptionReport(total *domain.Consumption, buckets []*domain.Consumption) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	summarySheet := "Summary"
	index, err := f.NewSheet(summarySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 汇总区
	_ = f.SetCellValue(summarySheet, "A1", "Period Start")
	_ = f.SetCellValue(summarySheet, "B1", total.StartDate.Format("2006-01-02 15:04"))
	_ = f.SetCellValue(summarySheet, "A2", "Period End")
	_ = f.SetCellValue(summarySheet, "B2", total.EndDate.Format("2006-01-02 15:04"))
	_ = f.SetCellValue(summarySheet, "A3", "Total Consumption (L)")
	_ = f.SetCellValue(summarySheet, "B3", total.ConsumptionInLiters)
	_ = f.SetCellValue(summarySheet, "A4", "Per Day Per Person (L)")
	_ = f.SetCellValue(summarySheet, "B4", total.ConsumptionInLitersPerDayPerPerson)
	_ = f.SetCellValue(summarySheet, "A5", "Deviation From Baseline (%)")
	_ = f.SetCellValue(summarySheet, "B5", total.PercentDeviationFromBaseline)

	// 类别分项
	_ = f.SetCellValue(summarySheet, "A7", "Category")
	_ = f.SetCellValue(summarySheet, "B7", "Consumption (L)")
	_ = f.SetCellStyle(summarySheet, "A7", "B7", headerStyle)
	for i, c := range total.CategoryBreakdown {
		row := 8 + i
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(c.Category))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), c.ConsumptionInLiters)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 20)

	// 分桶明细
	detailSheet := "Buckets"
	if _, err := f.NewSheet(detailSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, name := range ConsumptionReportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(detailSheet, cell, name)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(ConsumptionReportHeader), 1)
	_ = f.SetCellStyle(detailSheet, "A1", endCell, headerStyle)

	for i, b := range buckets {
		row := i + 2
		values := []any{
			b.StartDate.Format("2006-01-02 15:04"),
			b.EndDate.Format("2006-01-02 15:04"),
			b.ConsumptionInLiters,
			b.ConsumptionInLitersPerDayPerPerson,
			b.PercentDeviationFromBaseline,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(detailSheet, cell, v)
		}
	}
	_ = f.SetColWidth(detailSheet, "A", "E", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}
