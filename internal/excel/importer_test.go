package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/studybot/pkg/models"
)

type captureSaver struct {
	items []models.Item
}

func (c *captureSaver) SaveItem(ctx context.Context, item *models.Item) error {
	c.items = append(c.items, *item)
	return nil
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestImportCSVGroupsBySubjectHeader(t *testing.T) {
	csv := `Question,Answer
Operating systems,,
What is a mutex?,A mutual exclusion lock
What is a context switch?,Saving and restoring CPU state
Networks,,
What is TCP?,A reliable transport protocol
`
	saver := &captureSaver{}
	cfg := DefaultImportConfig()
	cfg.FilePath = writeTempCSV(t, csv)

	result, err := ImportItems(context.Background(), saver, cfg)
	if err != nil {
		t.Fatalf("ImportItems: %v", err)
	}
	if result.Created != 3 {
		t.Fatalf("Created = %d, want 3", result.Created)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	subjects := make(map[string]int)
	for _, it := range saver.items {
		subjects[it.Subject]++
	}
	if subjects["Operating systems"] != 2 || subjects["Networks"] != 1 {
		t.Fatalf("subject grouping = %v", subjects)
	}
}

func TestImportCSVRowBeforeAnySubjectFails(t *testing.T) {
	csv := `Question,Answer
What is a mutex?,A lock
`
	saver := &captureSaver{}
	cfg := DefaultImportConfig()
	cfg.FilePath = writeTempCSV(t, csv)

	result, err := ImportItems(context.Background(), saver, cfg)
	if err != nil {
		t.Fatalf("ImportItems: %v", err)
	}
	if result.Created != 0 {
		t.Fatalf("Created = %d, want 0", result.Created)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one subject error", result.Errors)
	}
}

func TestImportedItemsStartDueImmediately(t *testing.T) {
	csv := `Question,Answer
Algorithms,,
Explain quicksort,Divide and conquer partition sort
`
	saver := &captureSaver{}
	cfg := DefaultImportConfig()
	cfg.FilePath = writeTempCSV(t, csv)

	if _, err := ImportItems(context.Background(), saver, cfg); err != nil {
		t.Fatalf("ImportItems: %v", err)
	}
	if len(saver.items) != 1 {
		t.Fatalf("items = %d, want 1", len(saver.items))
	}
	it := saver.items[0]
	if it.Repetitions != 0 || it.IntervalDays != 0 {
		t.Fatalf("fresh item has repetitions=%d interval=%d", it.Repetitions, it.IntervalDays)
	}
	if it.EaseFactor != 2.5 {
		t.Fatalf("EaseFactor = %v", it.EaseFactor)
	}
	if it.DueDate.IsZero() {
		t.Fatal("fresh item must have a due date")
	}
	// Срок выставлен на начало сегодняшнего дня, без времени суток.
	if it.DueDate.Hour() != 0 || it.DueDate.Minute() != 0 || it.DueDate.Second() != 0 {
		t.Fatalf("due date carries a time of day: %v", it.DueDate)
	}
	now := time.Now()
	y, m, d := it.DueDate.Date()
	if y != now.Year() || m != now.Month() || d != now.Day() {
		t.Fatalf("due date %v is not today", it.DueDate)
	}
}

func TestColumnToIndex(t *testing.T) {
	cases := []struct {
		col  string
		want int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AB", 27},
	}
	for _, tc := range cases {
		if got := columnToIndex(tc.col); got != tc.want {
			t.Errorf("columnToIndex(%q) = %d, want %d", tc.col, got, tc.want)
		}
	}
}
