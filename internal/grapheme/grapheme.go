// Package grapheme measures and cuts marker text in grapheme clusters, the
// unit post offsets are counted in.
package grapheme

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// SplitAt cuts text before cluster n. n is clamped into [0, Count(text)].
func SplitAt(text string, n int) (string, string) {
	if n <= 0 || text == "" {
		return "", text
	}
	g := uniseg.NewGraphemes(text)
	idx := 0
	for g.Next() {
		if idx == n {
			from, _ := g.Positions()
			return text[:from], text[from:]
		}
		idx++
	}
	return text, ""
}

// Insert places s before cluster n of text.
func Insert(text string, n int, s string) string {
	left, right := SplitAt(text, n)
	var sb strings.Builder
	sb.Grow(len(text) + len(s))
	sb.WriteString(left)
	sb.WriteString(s)
	sb.WriteString(right)
	return sb.String()
}
