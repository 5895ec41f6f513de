package stats

import "testing"

func TestFormatTableAlignsWideGlyphs(t *testing.T) {
	headers := []string{"Word", "Accuracy", "Correct"}
	rows := [][]string{
		{"你好", "97.50%", "12"},
		{"谢谢你", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Word   Accuracy Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "你好     97.50%      12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "谢谢你    8.00%       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTruncateKeepsCellWidth(t *testing.T) {
	if got := displayWidth(truncate("to be able to; can; may", 10)); got > 10 {
		t.Fatalf("expected width <= 10, got %d", got)
	}
}
