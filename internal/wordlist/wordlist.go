// Package wordlist loads vocabulary bands from TSV files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/tuici/internal/model"
)

// Columns of a band file, in order.
const (
	colSimplified = iota
	colTraditional
	colPinyin
	colEnglish
	columnCount
)

// LoadFile reads a band from the provided TSV file path.
func LoadFile(path string) ([]model.Word, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	words, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// Parse reads tab-separated rows of simplified, traditional, pinyin and
// english. Lines starting with # and blank lines are skipped. The
// traditional column may be empty.
func Parse(r io.Reader) ([]model.Word, error) {
	var words []model.Word
	seen := map[string]int{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != columnCount {
			return nil, fmt.Errorf("line %d: expected %d tab-separated columns, got %d", lineNo, columnCount, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		word := model.Word{
			ID:          fields[colSimplified],
			Traditional: fields[colTraditional],
			Pinyin:      fields[colPinyin],
			English:     fields[colEnglish],
		}
		if word.ID == "" {
			return nil, fmt.Errorf("line %d: missing simplified form", lineNo)
		}
		if word.Traditional == word.ID {
			word.Traditional = ""
		}
		if prev, ok := seen[word.ID]; ok {
			return nil, fmt.Errorf("line %d: duplicate word %q (first on line %d)", lineNo, word.ID, prev)
		}
		seen[word.ID] = lineNo
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// Format writes words in the band file format.
func Format(w io.Writer, words []model.Word) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		trad := word.Traditional
		if trad == "" {
			trad = word.ID
		}
		row := []string{word.ID, trad, word.Pinyin, word.English}
		for i := range row {
			row[i] = strings.ReplaceAll(row[i], "\t", " ")
		}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Index maps words by id.
func Index(words []model.Word) map[string]model.Word {
	out := make(map[string]model.Word, len(words))
	for _, w := range words {
		out[w.ID] = w
	}
	return out
}
