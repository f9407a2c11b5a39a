package linesort

import (
	"strings"
	"unicode/utf8"
)

// Position is a cursor location: zero-based line and rune column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Result is the outcome of Sort.
type Result struct {
	Text    string
	Cursor  Position
	Changed bool
}

// Partition splits lines into the four category blocks, keeping input order
// within each block.
func Partition(lines []string) [len(Categories)][]string {
	var blocks [len(Categories)][]string
	for _, line := range lines {
		c := Classify(line)
		blocks[c] = append(blocks[c], line)
	}
	return blocks
}

// Lines regroups lines into block order.
func Lines(lines []string) []string {
	blocks := Partition(lines)
	out := make([]string, 0, len(lines))
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// Sort regroups the lines of text and relocates cursor.
//
// The cursor follows the first line in the output whose text equals the line
// it was on, with the column clamped to that line. If that line was empty or
// cannot be found the cursor goes to the start of the text. When the output
// equals the input, Changed is false and cursor is returned untouched.
func Sort(text string, cursor Position) Result {
	lines := strings.Split(text, "\n")

	var anchor string
	if cursor.Line >= 0 && cursor.Line < len(lines) {
		anchor = lines[cursor.Line]
	}

	sorted := Lines(lines)
	out := strings.Join(sorted, "\n")
	if out == text {
		return Result{Text: text, Cursor: cursor}
	}
	return Result{
		Text:    out,
		Cursor:  relocate(sorted, anchor, cursor.Column),
		Changed: true,
	}
}

// Text regroups text without tracking a cursor.
func Text(text string) string {
	return Sort(text, Position{}).Text
}

func relocate(lines []string, anchor string, column int) Position {
	if anchor == "" {
		return Position{}
	}
	for i, line := range lines {
		if line != anchor {
			continue
		}
		n := utf8.RuneCountInString(line)
		if column > n {
			column = n
		}
		if column < 0 {
			column = 0
		}
		return Position{Line: i, Column: column}
	}
	return Position{}
}
