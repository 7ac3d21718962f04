package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestDiffLines(t *testing.T) {
	oldText := "items:\n  - entity: light.kitchen\n  - entity: light.hall\n"
	newText := "items:\n  - entity: light.kitchen\n  - entity: light.desk\n"

	lines := DiffLines(oldText, newText)
	if !HasChanges(lines) {
		t.Fatal("HasChanges() = false")
	}

	var ops []diffmatchpatch.Operation
	for _, l := range lines {
		ops = append(ops, l.Op)
	}
	want := []diffmatchpatch.Operation{
		diffmatchpatch.DiffEqual,
		diffmatchpatch.DiffEqual,
		diffmatchpatch.DiffDelete,
		diffmatchpatch.DiffInsert,
	}
	if len(ops) != len(want) {
		t.Fatalf("got %d lines %+v, want %d", len(ops), lines, len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("line %d op = %v, want %v", i, ops[i], want[i])
		}
	}
	if lines[3].Text != "  - entity: light.desk" {
		t.Errorf("inserted line = %q", lines[3].Text)
	}
}

func TestDiffLines_Identical(t *testing.T) {
	if HasChanges(DiffLines("a\nb\n", "a\nb\n")) {
		t.Error("identical texts should have no changes")
	}
}

func TestRenderDiff_CollapsesContext(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 20; i++ {
		line := strings.Repeat("x", i+1)
		oldLines = append(oldLines, line)
		if i == 10 {
			line = "changed"
		}
		newLines = append(newLines, line)
	}

	out := RenderDiff(DiffLines(strings.Join(oldLines, "\n")+"\n", strings.Join(newLines, "\n")+"\n"), 2)

	if !strings.Contains(out, "+ changed") || !strings.Contains(out, "- "+strings.Repeat("x", 11)) {
		t.Errorf("diff is missing the change:\n%s", out)
	}
	if strings.Count(out, "…") != 2 {
		t.Errorf("want unchanged runs collapsed before and after:\n%s", out)
	}
	if strings.Contains(out, "  x\n") {
		t.Errorf("first line is far from the change and should be hidden:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"#", "ENTITY", "NAME"},
		[][]string{
			{"0", "light.kitchen", "Kitchen"},
			{"1", "light.hall", ""},
		},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	// NAME column starts at the same offset on every line
	idx := strings.Index(lines[0], "NAME")
	if strings.Index(lines[1], "Kitchen") != idx {
		t.Errorf("columns not aligned:\n%s", out)
	}
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success keeps detail order",
			result: NewSuccessResult("Row added", Detail{"Entity", "light.kitchen"}, Detail{"Rows", "3"}),
			want:   []string{"SUCCESS", "Row added", "light.kitchen"},
		},
		{
			name:   "failure shows error and tips",
			result: NewFailureResult("Invalid card", errors.New("items: at least one row"), []string{"Run lightstack validate"}),
			want:   []string{"FAILED", "items: at least one row", "Troubleshooting", "Run lightstack validate"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No instances found"),
			want:   []string{"WARNING", "No instances found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}

	out := NewSuccessResult("x", Detail{"First", "1"}, Detail{"Second", "2"}).SetWidth(80).Render()
	if strings.Index(out, "First") > strings.Index(out, "Second") {
		t.Error("details rendered out of order")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if got := Confirm(strings.NewReader(tt.input), &out, "Remove row?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Remove row?") {
			t.Errorf("prompt not written: %q", out.String())
		}
	}
}

func TestReadLine(t *testing.T) {
	got, err := readLine(strings.NewReader("  abc.def  \n"))
	if err != nil || got != "abc.def" {
		t.Errorf("readLine() = %q, %v", got, err)
	}
	if _, err := readLine(strings.NewReader("")); !errors.Is(err, ErrNoInput) {
		t.Errorf("empty input err = %v, want ErrNoInput", err)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(70)

	p.PrintHeader("Card rows", "lightstack rows", Detail{"Card", "/tmp/card.yaml"})
	if p.PrintDiff("a\n", "a\n") {
		t.Error("PrintDiff() = true for identical input")
	}
	if !p.PrintDiff("a\n", "b\n") {
		t.Error("PrintDiff() = false for different input")
	}

	out := buf.String()
	for _, want := range []string{"CARD ROWS", "lightstack rows", "/tmp/card.yaml", "- a", "+ b"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
