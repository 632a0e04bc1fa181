package post

import (
	"maps"
	"slices"
	"strings"

	"github.com/iw2rmb/postkit/internal/grapheme"
)

// MarkupID indexes the markup table of a Post.
type MarkupID int

// Markup is an inline formatting annotation such as b, em or a[href].
type Markup struct {
	Tag   string
	Attrs map[string]string
}

func (m Markup) key() string {
	if len(m.Attrs) == 0 {
		return m.Tag
	}
	var sb strings.Builder
	sb.WriteString(m.Tag)
	for _, k := range slices.Sorted(maps.Keys(m.Attrs)) {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(m.Attrs[k])
	}
	return sb.String()
}

func (m Markup) clone() Markup {
	return Markup{Tag: m.Tag, Attrs: maps.Clone(m.Attrs)}
}

// Inline is an item of leaf section content: *Marker or *Atom.
type Inline interface {
	// Len is the item's length in offset units.
	Len() int
	// MarkupStack returns the markups applied to the item, outermost first.
	MarkupStack() []MarkupID

	cloneInline() Inline
}

// Marker is a text run with the markups applied to it.
type Marker struct {
	Text    string
	Markups []MarkupID
}

func (m *Marker) Len() int                { return grapheme.Count(m.Text) }
func (m *Marker) MarkupStack() []MarkupID { return m.Markups }

func (m *Marker) IsEmpty() bool { return m.Text == "" }

func (m *Marker) cloneInline() Inline {
	return &Marker{Text: m.Text, Markups: slices.Clone(m.Markups)}
}

// SplitAt cuts the marker into [0, offset) and [offset, Len). Both halves
// carry the full markup stack; an offset at either end leaves one half empty.
func (m *Marker) SplitAt(offset int) (*Marker, *Marker) {
	left, right := grapheme.SplitAt(m.Text, offset)
	return &Marker{Text: left, Markups: slices.Clone(m.Markups)},
		&Marker{Text: right, Markups: slices.Clone(m.Markups)}
}

// Atom is an opaque inline embed. It displays as Value and is never split.
type Atom struct {
	Name    string
	Value   string
	Payload map[string]any
	Markups []MarkupID
}

func (a *Atom) Len() int                { return 1 }
func (a *Atom) MarkupStack() []MarkupID { return a.Markups }

func (a *Atom) cloneInline() Inline {
	return &Atom{
		Name:    a.Name,
		Value:   a.Value,
		Payload: maps.Clone(a.Payload),
		Markups: slices.Clone(a.Markups),
	}
}

func cloneInlines(items []Inline) []Inline {
	if len(items) == 0 {
		return nil
	}
	out := make([]Inline, 0, len(items))
	for _, it := range items {
		out = append(out, it.cloneInline())
	}
	return out
}

func inlineLen(items []Inline) int {
	n := 0
	for _, it := range items {
		n += it.Len()
	}
	return n
}

// splitInline cuts items at offset. A marker straddling the offset is split;
// atoms always sit on a boundary because they have length 1.
func splitInline(items []Inline, offset int) (left, right []Inline) {
	pos := 0
	for i, it := range items {
		n := it.Len()
		switch {
		case offset <= pos:
			return items[:i:i], items[i:]
		case offset < pos+n:
			mk := it.(*Marker)
			l, r := mk.SplitAt(offset - pos)
			left = append(slices.Clone(items[:i]), l)
			right = append([]Inline{r}, items[i+1:]...)
			return left, right
		}
		pos += n
	}
	return items, nil
}

// cutInline removes [from, to) from items.
func cutInline(items []Inline, from, to int) []Inline {
	left, rest := splitInline(items, from)
	_, right := splitInline(rest, to-from)
	out := make([]Inline, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// normalizeInline drops empty markers and joins neighbours that share a
// markup stack.
func normalizeInline(items []Inline) []Inline {
	out := make([]Inline, 0, len(items))
	for _, it := range items {
		mk, ok := it.(*Marker)
		if !ok {
			out = append(out, it)
			continue
		}
		if mk.IsEmpty() {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Marker); ok && slices.Equal(prev.Markups, mk.Markups) {
				out[len(out)-1] = &Marker{Text: prev.Text + mk.Text, Markups: prev.Markups}
				continue
			}
		}
		out = append(out, mk)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
