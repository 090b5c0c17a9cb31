package tool

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// buildDiff calculates a line-based diff between two note versions and
// returns the patch text plus added and deleted line counts. Used for
// confirmation previews and result metadata.
func buildDiff(path, before, after string) (string, int, int) {
	if before == after {
		return "", 0, 0
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	additions, deletions := 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			additions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += countLines(d.Text)
		}
	}

	patches := dmp.PatchMake(before, diffs)
	diffText := dmp.PatchToText(patches)
	if diffText == "" {
		return "", additions, deletions
	}

	var builder strings.Builder
	if path != "" {
		builder.WriteString("--- " + path + "\n")
		builder.WriteString("+++ " + path + "\n")
	}
	builder.WriteString(diffText)
	return builder.String(), additions, deletions
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
