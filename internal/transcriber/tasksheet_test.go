package transcriber

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, status string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks_setting.xlsx")
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	if err := book.SetCellValue(sheet, urlCell, "https://example.com/old"); err != nil {
		t.Fatalf("seed url cell: %v", err)
	}
	if status != "" {
		if err := book.SetCellValue(sheet, statusCell, status); err != nil {
			t.Fatalf("seed status cell: %v", err)
		}
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestPrimeWritesURLAndClearsStatus(t *testing.T) {
	path := newWorkbook(t, "Done")
	sheet := NewTaskSheet(path)

	if err := sheet.Prime("https://example.com/watch?v=abc"); err != nil {
		t.Fatalf("Prime failed: %v", err)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer book.Close()
	name := book.GetSheetName(0)

	url, err := book.GetCellValue(name, urlCell)
	if err != nil {
		t.Fatalf("read url cell: %v", err)
	}
	if url != "https://example.com/watch?v=abc" {
		t.Fatalf("unexpected url cell: %q", url)
	}

	status, err := book.GetCellValue(name, statusCell)
	if err != nil {
		t.Fatalf("read status cell: %v", err)
	}
	if status != "" {
		t.Fatalf("expected cleared status cell, got %q", status)
	}
}

func TestStatusReadsCell(t *testing.T) {
	path := newWorkbook(t, "Done")
	sheet := NewTaskSheet(path)

	status, err := sheet.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.State != StateDone {
		t.Fatalf("expected done, got %s", status.State)
	}
}

func TestStatusMissingWorkbook(t *testing.T) {
	sheet := NewTaskSheet(filepath.Join(t.TempDir(), "missing.xlsx"))
	if _, err := sheet.Status(context.Background()); err == nil {
		t.Fatal("expected error for missing workbook")
	}
}
