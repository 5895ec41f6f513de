// Package importer converts spreadsheets into band files.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/wordlist"
)

// Config selects the sheet, columns and first data row of a source file.
// Columns are spreadsheet letters. An empty traditional column means the
// source has none.
type Config struct {
	Path              string
	Sheet             string
	StartRow          int
	SimplifiedColumn  string
	TraditionalColumn string
	PinyinColumn      string
	EnglishColumn     string
}

// DefaultConfig returns the layout simplified, traditional, pinyin, english
// with one header row.
func DefaultConfig() Config {
	return Config{
		StartRow:          2,
		SimplifiedColumn:  "A",
		TraditionalColumn: "B",
		PinyinColumn:      "C",
		EnglishColumn:     "D",
	}
}

// Result summarizes an import.
type Result struct {
	Processed int
	Skipped   int
	Errors    []string
}

type columns struct {
	simplified  int
	traditional int
	pinyin      int
	english     int
}

// Import reads words from an .xlsx or .csv file.
func Import(cfg Config) ([]model.Word, Result, error) {
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, Result{}, err
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	var rows [][]string
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".csv":
		rows, err = readCSV(cfg.Path)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(cfg.Path, cfg.Sheet)
	default:
		return nil, Result{}, fmt.Errorf("unsupported file type %q (use .xlsx or .csv)", filepath.Ext(cfg.Path))
	}
	if err != nil {
		return nil, Result{}, err
	}

	var (
		words  []model.Word
		result Result
	)
	seen := map[string]int{}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow || blank(row) {
			continue
		}
		result.Processed++
		word := model.Word{
			ID:          cell(row, cols.simplified),
			Traditional: cell(row, cols.traditional),
			Pinyin:      cell(row, cols.pinyin),
			English:     cell(row, cols.english),
		}
		if word.Traditional == word.ID {
			word.Traditional = ""
		}
		if err := validate(word); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if prev, ok := seen[word.ID]; ok {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate of row %d", rowNum, prev))
			continue
		}
		seen[word.ID] = rowNum
		words = append(words, word)
	}
	if len(words) == 0 {
		return nil, result, errors.New("no words imported")
	}
	log.Info().Str("path", cfg.Path).Int("words", len(words)).Int("skipped", result.Skipped).Msg("imported band source")
	return words, result, nil
}

// WriteBand writes words to the band file for name under dir. The file is
// replaced atomically.
func WriteBand(dir, name string, words []model.Word) (string, error) {
	if err := wordlist.ValidateName(name); err != nil {
		return "", err
	}
	path := wordlist.Path(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create band dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "band-*.tsv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp band: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := fmt.Fprintf(tmpFile, "# %s\n", name); err != nil {
		return "", fmt.Errorf("failed to write band: %w", err)
	}
	if err := wordlist.Format(tmpFile, words); err != nil {
		return "", fmt.Errorf("failed to write band: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close band: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write band: %w", err)
	}
	return path, nil
}

func resolveColumns(cfg Config) (columns, error) {
	var cols columns
	var err error
	if cols.simplified, err = columnIndex(cfg.SimplifiedColumn, true); err != nil {
		return cols, err
	}
	if cols.traditional, err = columnIndex(cfg.TraditionalColumn, false); err != nil {
		return cols, err
	}
	if cols.pinyin, err = columnIndex(cfg.PinyinColumn, false); err != nil {
		return cols, err
	}
	if cols.english, err = columnIndex(cfg.EnglishColumn, false); err != nil {
		return cols, err
	}
	if cols.pinyin < 0 && cols.english < 0 {
		return cols, errors.New("at least one of the pinyin and english columns is required")
	}
	return cols, nil
}

// columnIndex converts a column letter to a 0-based index, -1 when unset.
func columnIndex(name string, required bool) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if required {
			return -1, errors.New("simplified column is required")
		}
		return -1, nil
	}
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return -1, fmt.Errorf("invalid column %q: %w", name, err)
	}
	return n - 1, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only CSV.
			_ = cerr
		}
	}()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func validate(word model.Word) error {
	if word.ID == "" {
		return errors.New("simplified form cannot be empty")
	}
	if !wordlist.FilterPlayable(word) {
		return fmt.Errorf("%q is not a playable word", word.ID)
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.Join(strings.Fields(row[idx]), " ")
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
