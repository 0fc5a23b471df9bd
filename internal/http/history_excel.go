package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"disease-detector/internal/models"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	historySheetName = "History"
	patientSheetName = "Patient"
)

var historyHeaders = []string{"Date", "Symptoms", "Predicted Disease", "Confidence"}

// generateHistoryExcel 生成患者诊断历史 Excel 文件
// 第一个工作表为诊断历史（按时间倒序），第二个为患者信息
func generateHistoryExcel(patient models.Patient, history []models.HistoryRecord) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; Close is called explicitly below.

	for _, name := range []string{historySheetName, patientSheetName} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
	}
	// 删除默认的 Sheet1（删除后索引会变化，之后再取）
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(historySheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to locate sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	// 10 is the built-in "0.00%" format.
	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create percent style: %w", err)
	}

	// 写入表头
	for col, header := range historyHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(historySheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(historySheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{
		22, // Date
		60, // Symptoms
		24, // Predicted Disease
		12, // Confidence
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(historySheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 写入数据（第1行是表头）
	for i, rec := range history {
		row := i + 2
		values := []any{
			rec.CreatedAt.UTC().Format(time.DateTime),
			rec.Symptoms,
			rec.PredictedDisease,
			rec.Confidence,
		}
		for col, value := range values {
			if err := setCellValue(f, historySheetName, col+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(historySheetName, cell, cell, percentStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set confidence style: %w", err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(historySheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	info := [][2]any{
		{"Patient ID", patient.PatientID},
		{"Name", patient.Name},
		{"Registered", patient.CreatedAt.UTC().Format(time.DateTime)},
		{"Records", len(history)},
	}
	for i, kv := range info {
		row := i + 1
		if err := setCellValue(f, patientSheetName, 1, row, kv[0]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set patient label: %w", err)
		}
		if err := setCellValue(f, patientSheetName, 2, row, kv[1]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set patient value: %w", err)
		}
	}
	if err := f.SetCellStyle(patientSheetName, "A1", fmt.Sprintf("A%d", len(info)), headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set patient style: %w", err)
	}
	if err := f.SetColWidth(patientSheetName, "A", "B", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// setCellValue 设置单元格值
func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
