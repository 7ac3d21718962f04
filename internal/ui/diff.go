package ui

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultDiffContext is the number of unchanged lines kept around a change.
const DefaultDiffContext = 3

// DiffLine is one line of a line diff.
type DiffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

// DiffLines compares two texts line by line.
func DiffLines(oldText, newText string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []DiffLine
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" && d.Text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			out = append(out, DiffLine{Op: d.Type, Text: line})
		}
	}
	return out
}

// HasChanges reports whether lines contain an insertion or deletion.
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}

// RenderDiff renders lines with +/- markers. Unchanged lines further than
// context from any change collapse into a single "…" line.
func RenderDiff(lines []DiffLine, context int) string {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == diffmatchpatch.DiffEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var b strings.Builder
	skipped := false
	for i, l := range lines {
		if !keep[i] {
			if !skipped {
				b.WriteString(DiffEqualStyle.Render("  …"))
				b.WriteString("\n")
				skipped = true
			}
			continue
		}
		skipped = false

		switch l.Op {
		case diffmatchpatch.DiffInsert:
			b.WriteString(DiffAddStyle.Render("+ " + l.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(DiffDeleteStyle.Render("- " + l.Text))
		default:
			b.WriteString(DiffEqualStyle.Render("  " + l.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}
