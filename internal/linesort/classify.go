// Package linesort groups the lines of a text into blocks keyed on each
// line's trailing punctuation.
//
// Lines ending in '-' float to the top, then lines ending in '!', then
// unmarked lines, and lines ending in '+' sink to the bottom. Order within a
// block is preserved.
package linesort

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is the block a line belongs to. The numeric order is the block order.
type Category int

const (
	Minus Category = iota
	Exclamation
	Normal
	Plus
)

// Categories lists every category in block order.
var Categories = [...]Category{Minus, Exclamation, Normal, Plus}

func (c Category) String() string {
	switch c {
	case Minus:
		return "minus"
	case Exclamation:
		return "exclamation"
	case Normal:
		return "normal"
	case Plus:
		return "plus"
	}
	return "unknown"
}

// Classify returns the category of line, decided only by its last
// non-whitespace character.
func Classify(line string) Category {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if trimmed == "" {
		return Normal
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	switch last {
	case '-':
		return Minus
	case '!':
		return Exclamation
	case '+':
		return Plus
	}
	return Normal
}
