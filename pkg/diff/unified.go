package diff

import (
	"bytes"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Hunks groups an edit script into unified-diff hunks with the given
// number of context lines on each side of a change.
func Hunks(edits []Edit, context int) []*godiff.Hunk {
	if context < 0 {
		context = 0
	}

	type span struct{ start, end int }
	var spans []span
	for i, e := range edits {
		if e.Kind == Equal {
			continue
		}
		lo := max(0, i-context)
		hi := min(len(edits), i+context+1)
		if n := len(spans); n > 0 && lo <= spans[n-1].end {
			spans[n-1].end = max(spans[n-1].end, hi)
			continue
		}
		spans = append(spans, span{lo, hi})
	}

	var hunks []*godiff.Hunk
	origLine, newLine := 0, 0
	pos := 0
	for _, sp := range spans {
		for ; pos < sp.start; pos++ {
			origLine, newLine = advance(edits[pos].Kind, origLine, newLine)
		}
		h := &godiff.Hunk{}
		var body bytes.Buffer
		origStart, newStart := origLine, newLine
		for ; pos < sp.end; pos++ {
			e := edits[pos]
			switch e.Kind {
			case Equal:
				body.WriteByte(' ')
				h.OrigLines++
				h.NewLines++
			case Delete:
				body.WriteByte('-')
				h.OrigLines++
			case Insert:
				body.WriteByte('+')
				h.NewLines++
			}
			body.WriteString(e.Line)
			body.WriteByte('\n')
			origLine, newLine = advance(e.Kind, origLine, newLine)
		}
		// An empty side is addressed by the line before it.
		h.OrigStartLine = int32(origStart)
		if h.OrigLines > 0 {
			h.OrigStartLine++
		}
		h.NewStartLine = int32(newStart)
		if h.NewLines > 0 {
			h.NewStartLine++
		}
		h.Body = body.Bytes()
		hunks = append(hunks, h)
	}
	return hunks
}

func advance(k Kind, origLine, newLine int) (int, int) {
	switch k {
	case Equal:
		return origLine + 1, newLine + 1
	case Delete:
		return origLine + 1, newLine
	default:
		return origLine, newLine + 1
	}
}

// Unified renders a unified diff between two file revisions. It returns nil
// when the contents are identical.
func Unified(oldName, newName string, before, after []byte, context int) ([]byte, error) {
	if bytes.Equal(before, after) {
		return nil, nil
	}
	hunks := Hunks(Lines(before, after), context)
	if len(hunks) == 0 {
		return nil, nil
	}
	return godiff.PrintFileDiff(&godiff.FileDiff{
		OrigName: oldName,
		NewName:  newName,
		Hunks:    hunks,
	})
}
