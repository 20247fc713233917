package bridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

const SheetName = "回答データ"

// NoFile fills the link column when a submission carried no document.
const NoFile = "なし"

var Header = []string{
	"日時", "氏名", "年齢", "性別", "身長(cm)", "体重(kg)", "BMI",
	"気になっていること", "部位まとめ", "既往歴", "既往歴その他",
	"服薬内容", "一般健診", "特定健診", "転倒歴あり", "転倒回数", "転倒けが",
	"不安定感", "転倒恐怖", "転倒リスク判定",
	"収縮期血圧", "拡張期血圧", "血圧コメント", "PDFリンク",
}

// Ledger appends one row per submission to an xlsx workbook.
type Ledger struct {
	path string
	mu   sync.Mutex
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(l.path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open ledger %s: %w", l.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return excelize.NewFile(), nil
}

// sheet makes sure the answer sheet exists and returns its row count.
func sheet(f *excelize.File) (int, error) {
	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return 0, err
	}
	if idx == -1 {
		idx, err = f.NewSheet(SheetName)
		if err != nil {
			return 0, fmt.Errorf("failed to create sheet: %w", err)
		}
		f.SetActiveSheet(idx)
		if i, _ := f.GetSheetIndex("Sheet1"); i != -1 {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return 0, err
			}
		}
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func writeHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, "A1", last, style)
}

// Append writes the header on first use, then a row of at, the 22 record
// columns and fileURL. It returns the 1-based row number written.
func (l *Ledger) Append(at time.Time, columns []string, fileURL string) (int, error) {
	if len(columns) != len(Header)-2 {
		return 0, fmt.Errorf("ledger row needs %d columns, got %d", len(Header)-2, len(columns))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := sheet(f)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		if err := writeHeader(f); err != nil {
			return 0, err
		}
		n = 1
	}

	row := make([]any, 0, len(Header))
	row = append(row, at.Format("2006/01/02 15:04:05"))
	for _, c := range columns {
		row = append(row, c)
	}
	row = append(row, fileURL)

	next := n + 1
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return 0, fmt.Errorf("write ledger row %d: %w", next, err)
	}
	if err := f.SaveAs(l.path); err != nil {
		return 0, fmt.Errorf("save ledger %s: %w", l.path, err)
	}
	return next, nil
}

// Rows returns every row of the answer sheet, header included.
func (l *Ledger) Rows() ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := excelize.OpenFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", l.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(SheetName)
	if err != nil || idx == -1 {
		return nil, err
	}
	return f.GetRows(SheetName)
}

// Path is where the workbook is kept.
func (l *Ledger) Path() string { return l.path }
