package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ItemSaver persists imported study items.
type ItemSaver interface {
	SaveItem(ctx context.Context, item *models.Item) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	SubjectColumn  string // Column with the subject name
	QuestionColumn string // Column with the question text
	AnswerColumn   string // Column with the reference answer
	SheetName      string // Name of the sheet to import
	SkipHeader     bool   // Skip the header row
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SubjectColumn:  "A",
		QuestionColumn: "B",
		AnswerColumn:   "C",
		SheetName:      "Sheet1",
		SkipHeader:     true,
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportItems imports study items from an Excel or CSV file.
// New items start without review history and become due immediately.
func ImportItems(ctx context.Context, store ItemSaver, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	if ext == ".csv" {
		return importFromCSV(ctx, store, config)
	}

	return importFromExcel(ctx, store, config)
}

// importFromExcel imports items from an Excel file
func importFromExcel(ctx context.Context, store ItemSaver, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++

		if err := processRow(ctx, store, row, config, result, i+1); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports items from a CSV file
func importFromCSV(ctx context.Context, store ItemSaver, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	rowNum := 0
	currentSubject := ""

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++

		// Skip header rows
		if rowNum < config.StartRow {
			continue
		}

		// Строка вида "Операционные системы,," задаёт предмет для
		// последующих вопросов.
		if len(row) >= 2 && strings.TrimSpace(row[0]) != "" && strings.TrimSpace(row[1]) == "" {
			potentialSubject := strings.Trim(strings.TrimSpace(row[0]), "\"")
			if potentialSubject != "" {
				currentSubject = potentialSubject
				continue
			}
		}

		result.TotalProcessed++

		if err := processCSVRow(ctx, store, row, result, rowNum, currentSubject); err != nil {
			if err.Error() != "skipping row" {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			} else {
				result.Skipped++
			}
		}
	}

	return result, nil
}

// processRow processes a single row from Excel
func processRow(ctx context.Context, store ItemSaver, row []string, config ImportConfig, result *ImportResult, rowNum int) error {
	var subject, question, answer string

	if colIdx := columnToIndex(config.SubjectColumn); colIdx < len(row) {
		subject = row[colIdx]
	}
	if colIdx := columnToIndex(config.QuestionColumn); colIdx < len(row) {
		question = row[colIdx]
	}
	if colIdx := columnToIndex(config.AnswerColumn); colIdx < len(row) {
		answer = row[colIdx]
	}

	return saveItemData(ctx, store, subject, question, answer, result)
}

// processCSVRow processes a single row from CSV
func processCSVRow(ctx context.Context, store ItemSaver, row []string, result *ImportResult, rowNum int, currentSubject string) error {
	if len(row) < 2 || row[0] == "" {
		return fmt.Errorf("skipping row")
	}

	// Формат: вопрос,ответ — предмет берётся из последнего заголовка.
	question := strings.TrimSpace(row[0])
	answer := ""
	if len(row) > 1 {
		answer = strings.TrimSpace(row[1])
	}

	return saveItemData(ctx, store, currentSubject, question, answer, result)
}

// saveItemData handles the common logic for persisting imported item data
func saveItemData(ctx context.Context, store ItemSaver, subject, question, answer string, result *ImportResult) error {
	subject = strings.TrimSpace(subject)
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	if subject == "" {
		return fmt.Errorf("subject cannot be empty")
	}
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	now := time.Now()
	// Срок на начало дня, чтобы новый элемент попал уже в сегодняшний план.
	due := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	item := &models.Item{
		Subject:      subject,
		Question:     question,
		Answer:       answer,
		Repetitions:  0,
		EaseFactor:   2.5,
		IntervalDays: 0,
		DueDate:      due,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := store.SaveItem(ctx, item); err != nil {
		return fmt.Errorf("failed to save item: %v", err)
	}
	result.Created++
	return nil
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
