package excel

import (
	"fmt"

	"github.com/example/studybot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ExportPlans writes day plans to an Excel file, one sheet per day.
func ExportPlans(plans []models.DayPlan, filePath string) error {
	if len(plans) == 0 {
		return fmt.Errorf("no plans to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, plan := range plans {
		sheet := plan.Date.Format("2006-01-02")
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			f.NewSheet(sheet)
		}

		headers := []string{"#", "Subject", "Question", "Due date", "Repetitions"}
		for col, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return fmt.Errorf("failed to write header: %v", err)
			}
		}

		for row, item := range plan.Items {
			values := []interface{}{
				row + 1,
				item.Subject,
				item.Question,
				item.DueDate.Format("2006-01-02"),
				item.Repetitions,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("failed to write cell: %v", err)
				}
			}
		}

		if plan.Shortfall {
			cell, _ := excelize.CoordinatesToCellName(1, len(plan.Items)+3)
			if err := f.SetCellValue(sheet, cell, "Not enough due material to meet the daily minimum"); err != nil {
				return fmt.Errorf("failed to write shortfall note: %v", err)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save file: %v", err)
	}
	return nil
}
