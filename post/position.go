package post

import "github.com/iw2rmb/postkit/internal/grapheme"

// Position is a cursor location: a leaf section and an offset in
// [0, Len(section)].
type Position struct {
	Section SectionID
	Offset  int
}

// Range is an ordered selection: Head <= Tail in document order.
type Range struct {
	Head Position
	Tail Position
}

func (r Range) IsCollapsed() bool { return r.Head == r.Tail }

// GapBias picks a side when an offset falls inside an atom at equal
// distance from both edges.
type GapBias uint8

const (
	GapBiasLeft GapBias = iota
	GapBiasRight
)

func (p *Post) checkPosition(op string, pos Position) error {
	if !p.Contains(pos.Section) {
		return violation(op, "section %d is not in this post", pos.Section)
	}
	if !p.n(pos.Section).kind.IsLeaf() {
		return violation(op, "section %d is not a leaf section", pos.Section)
	}
	if n := p.Len(pos.Section); pos.Offset < 0 || pos.Offset > n {
		return violation(op, "offset %d outside [0, %d] in section %d", pos.Offset, n, pos.Section)
	}
	return nil
}

func (p *Post) NewPosition(id SectionID, offset int) (Position, error) {
	pos := Position{Section: id, Offset: offset}
	if err := p.checkPosition("position", pos); err != nil {
		return Position{}, err
	}
	return pos, nil
}

// HeadPosition is offset 0 of the first leaf.
func (p *Post) HeadPosition() Position {
	return Position{Section: p.firstLeafOf(p.head)}
}

// TailPosition is the end of the last leaf.
func (p *Post) TailPosition() Position {
	id := p.tail
	if p.n(id).kind == ListSection {
		id = p.n(id).tail
	}
	return Position{Section: id, Offset: p.Len(id)}
}

// ComparePositions orders a and b by leaf order, then by offset.
func (p *Post) ComparePositions(a, b Position) (int, error) {
	if err := p.checkPosition("compare", a); err != nil {
		return 0, err
	}
	if err := p.checkPosition("compare", b); err != nil {
		return 0, err
	}
	return p.compare(a, b), nil
}

func (p *Post) compare(a, b Position) int {
	if a.Section != b.Section {
		ia, ib := p.leafIndex(a.Section), p.leafIndex(b.Section)
		if ia < ib {
			return -1
		}
		return 1
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

// NewRange validates both ends and puts them in document order.
func (p *Post) NewRange(a, b Position) (Range, error) {
	cmp, err := p.ComparePositions(a, b)
	if err != nil {
		return Range{}, err
	}
	if cmp > 0 {
		a, b = b, a
	}
	return Range{Head: a, Tail: b}, nil
}

func (p *Post) CollapsedRange(id SectionID, offset int) (Range, error) {
	pos, err := p.NewPosition(id, offset)
	if err != nil {
		return Range{}, err
	}
	return Range{Head: pos, Tail: pos}, nil
}

// PositionFromTextOffset converts an offset into the section's display text
// (atoms display their Value) into a Position. An offset inside an atom
// snaps to its nearer edge; bias decides a tie.
func (p *Post) PositionFromTextOffset(id SectionID, textOffset int, bias GapBias) (Position, error) {
	const op = "text offset"
	if !p.Contains(id) || !p.n(id).kind.IsLeaf() {
		return Position{}, violation(op, "section %d is not a leaf of this post", id)
	}
	if textOffset < 0 {
		return Position{}, violation(op, "negative offset %d", textOffset)
	}

	n := p.n(id)
	if n.kind == CardSection {
		if textOffset > 1 {
			return Position{}, violation(op, "offset %d inside card %d", textOffset, id)
		}
		return Position{Section: id, Offset: textOffset}, nil
	}

	unit, text := 0, 0
	for _, it := range n.inline {
		switch v := it.(type) {
		case *Marker:
			w := grapheme.Count(v.Text)
			if textOffset <= text+w {
				return Position{Section: id, Offset: unit + textOffset - text}, nil
			}
			text += w
			unit += w
		case *Atom:
			w := grapheme.Count(v.Value)
			if textOffset <= text+w {
				return Position{Section: id, Offset: unit + snapIntoAtom(textOffset-text, w, bias)}, nil
			}
			text += w
			unit++
		}
	}
	if textOffset == text {
		return Position{Section: id, Offset: unit}, nil
	}
	return Position{}, violation(op, "offset %d past end of section %d", textOffset, id)
}

// snapIntoAtom maps an offset within an atom's display width to 0 or 1.
func snapIntoAtom(inner, width int, bias GapBias) int {
	switch {
	case inner <= 0:
		return 0
	case inner >= width:
		return 1
	case inner*2 < width:
		return 0
	case inner*2 > width:
		return 1
	case bias == GapBiasRight:
		return 1
	}
	return 0
}

// RangeFromTextOffsets builds a range from display-text offsets. Each end
// inside an atom snaps to the nearer edge; on a tie the earlier end snaps
// left and the later one right. Equal anchor and focus form a caret, which
// resolves once and stays collapsed.
func (p *Post) RangeFromTextOffsets(anchorID SectionID, anchorOff int, focusID SectionID, focusOff int) (Range, error) {
	if anchorID == focusID && anchorOff == focusOff {
		pos, err := p.PositionFromTextOffset(anchorID, anchorOff, GapBiasLeft)
		if err != nil {
			return Range{}, err
		}
		return Range{Head: pos, Tail: pos}, nil
	}

	anchorBias, focusBias := GapBiasLeft, GapBiasRight
	backward := anchorOff > focusOff
	if anchorID != focusID {
		if !p.Contains(anchorID) || !p.Contains(focusID) {
			return Range{}, violation("text offset", "sections %d and %d are not both in this post", anchorID, focusID)
		}
		backward = p.leafIndex(anchorID) > p.leafIndex(focusID)
	}
	if backward {
		anchorBias, focusBias = GapBiasRight, GapBiasLeft
	}

	a, err := p.PositionFromTextOffset(anchorID, anchorOff, anchorBias)
	if err != nil {
		return Range{}, err
	}
	b, err := p.PositionFromTextOffset(focusID, focusOff, focusBias)
	if err != nil {
		return Range{}, err
	}
	return p.NewRange(a, b)
}
