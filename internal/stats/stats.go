// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/tuici/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes answers per minute and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (apm, accuracy float64) {
	total := correct + incorrect
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	apm = float64(total) / minutes
	return apm, accuracy
}

// WordAccuracy returns correct / attempts, or 1 for an unseen word.
func WordAccuracy(agg model.WordAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Shrink averages values into at most width buckets.
func Shrink(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Summary holds totals across sessions.
type Summary struct {
	Sessions    int
	Stars       int
	Words       int
	AvgAccuracy float64
	AvgAPM      float64
	BestStreak  int
	Played      time.Duration
}

// Summarize totals the sessions.
func Summarize(sessions []model.SessionAggregate) Summary {
	var sum Summary
	if len(sessions) == 0 {
		return sum
	}
	var totalAcc, totalAPM float64
	for _, s := range sessions {
		apm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalAcc += acc
		totalAPM += apm
		sum.Stars += s.Stars
		sum.Words += s.Words
		sum.Played += time.Duration(s.DurationMs) * time.Millisecond
		if s.BestStreak > sum.BestStreak {
			sum.BestStreak = s.BestStreak
		}
	}
	sum.Sessions = len(sessions)
	sum.AvgAccuracy = totalAcc / float64(len(sessions))
	sum.AvgAPM = totalAPM / float64(len(sessions))
	return sum
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Stars: %d", sum.Stars),
		fmt.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy*100),
		fmt.Sprintf("Avg Answers/min: %.1f", sum.AvgAPM),
		fmt.Sprintf("Best Streak: %d", sum.BestStreak),
		fmt.Sprintf("Time Played: %s", sum.Played.Round(time.Second)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrends prints accuracy and star sparklines over sessions.
func RenderTrends(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	stars := make([]float64, len(sessions))
	for i, s := range sessions {
		_, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		accs[i] = acc * 100
		stars[i] = float64(s.Stars)
	}
	accs = MovingAverage(accs, window)
	stars = MovingAverage(stars, window)
	if _, err := fmt.Fprintf(w, "Trends (window %d)\n", window); err != nil {
		return err
	}
	lines := formatTable(nil, [][]string{
		trendRow("Accuracy", accs, width, "%.1f%%"),
		trendRow("Stars", stars, width, "%.1f"),
	}, nil)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func trendRow(name string, values []float64, width int, format string) []string {
	return []string{name, Sparkline(Shrink(values, sparkWidth(width))), fmt.Sprintf(format, values[len(values)-1])}
}

func sparkWidth(total int) int {
	if total <= 0 {
		return 0
	}
	w := total - 24
	if w < 10 {
		w = 10
	}
	return w
}

// RenderWordTable prints per-word aggregates, weakest first. Known words
// get their pinyin and meaning from info.
func RenderWordTable(w io.Writer, aggs []model.WordAggregate, info map[string]model.Word, useColor bool) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No word stats found.")
		return err
	}
	rows := SortWeakestFirst(aggs)
	if _, err := fmt.Fprintln(w, "Per-Word (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Word", "Pinyin", "Meaning", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, agg := range rows {
		word := info[agg.Word]
		acc := fmt.Sprintf("%.2f%%", WordAccuracy(agg)*100)
		tableRows = append(tableRows, []string{
			agg.Word,
			word.Pinyin,
			truncate(word.English, 24),
			acc,
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true}
	lines := formatTable(headers, tableRows, rightAlign)
	for i, line := range lines {
		if useColor && i > 0 && WordAccuracy(rows[i-1]) < weakAccuracy {
			line = colorize(line, colorWeak)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderWordTrends prints an accuracy sparkline per selected word.
func RenderWordTrends(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.WordAggregate, words []string, window, width int) error {
	if len(words) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Word Trends"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(words))
	for _, word := range words {
		series := WordSeries(sessions, perSession, word)
		series = MovingAverage(series, window)
		rows = append(rows, trendRow(word, series, width, "%.1f%%"))
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// WordSeries is a word's accuracy per session, carrying the last value over
// sessions where the word did not appear.
func WordSeries(sessions []model.SessionAggregate, perSession map[int64]map[string]model.WordAggregate, word string) []float64 {
	out := make([]float64, len(sessions))
	last := 0.0
	for i, s := range sessions {
		if agg, ok := perSession[s.ID][word]; ok && agg.Correct+agg.Incorrect > 0 {
			last = WordAccuracy(agg) * 100
		}
		out[i] = last
	}
	return out
}

// SortWeakestFirst orders aggregates by ascending accuracy. Ties go to the
// word with more misses, then by word.
func SortWeakestFirst(aggs []model.WordAggregate) []model.WordAggregate {
	rows := append([]model.WordAggregate(nil), aggs...)
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := WordAccuracy(rows[i]), WordAccuracy(rows[j])
		if ai != aj {
			return ai < aj
		}
		if rows[i].Incorrect != rows[j].Incorrect {
			return rows[i].Incorrect > rows[j].Incorrect
		}
		return rows[i].Word < rows[j].Word
	})
	return rows
}
