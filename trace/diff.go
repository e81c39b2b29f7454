package trace

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line diff from want to got, with removed lines prefixed by "-" and added lines
// by "+". It returns "" when the operations are identical. Names are not compared.
func Diff(want, got *Trace) string {
	left := (&Trace{Ops: want.Ops}).String()
	right := (&Trace{Ops: got.Ops}).String()
	if left == right {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", text)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", text)
		case diffmatchpatch.DiffEqual:
		}
	}
	return sb.String()
}

func writeLines(sb *strings.Builder, prefix, text string) {
	for _, l := range strings.Split(text, "\n") {
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}
