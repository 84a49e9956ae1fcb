package diff

import "strings"

// Kind classifies a line in an edit script.
type Kind int

const (
	Equal  Kind = iota // Line is unchanged between a and b.
	Insert             // Line was inserted (present in b only).
	Delete             // Line was deleted (present in a only).
)

// Edit is a single operation in an edit script.
type Edit struct {
	Kind Kind
	Line string
}

// SplitLines splits data into lines. A trailing newline does not produce
// an extra empty element.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Lines computes a line-level edit script turning a into b.
func Lines(a, b []byte) []Edit {
	return Myers(SplitLines(a), SplitLines(b))
}

// Myers computes the shortest edit script to transform a into b using the
// Myers O((N+M)D) algorithm over whole lines. The script is a longest
// common subsequence walk: Equal lines are the LCS, everything else is an
// Insert or Delete.
func Myers(a, b []string) []Edit {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}

	offset := n + m
	v := make([]int, 2*offset+2)
	// trace[d] is v as it was before step d.
	var trace [][]int

	for d := 0; d <= offset; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				return walkBack(trace, a, b, offset)
			}
		}
	}
	return nil
}

// walkBack reconstructs the forward edit script from the recorded trace.
func walkBack(trace [][]int, a, b []string, offset int) []Edit {
	x, y := len(a), len(b)
	var rev []Edit

	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, Edit{Kind: Equal, Line: a[x]})
		}
		if d == 0 {
			break
		}
		if x == prevX {
			y--
			rev = append(rev, Edit{Kind: Insert, Line: b[y]})
		} else {
			x--
			rev = append(rev, Edit{Kind: Delete, Line: a[x]})
		}
	}

	out := make([]Edit, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}
