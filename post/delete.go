package post

import "slices"

// DeleteRange removes the content selected by r and returns where the
// cursor belongs afterwards.
//
// Leaves strictly inside the range are removed whole, emptied lists with
// them. The head leaf loses everything after r.Head and the tail leaf
// everything before r.Tail; when both are text leaves, the tail's remainder
// moves onto the head and the tail is removed. The head keeps its kind.
//
// Cards never take part in a splice. A card is removed only when the range
// covers it from edge to edge; a range covering exactly one card leaves a
// blank section in its place.
func (e *Editor) DeleteRange(r Range) (Position, error) {
	const op = "delete range"
	if err := e.requireTx(op); err != nil {
		return Position{}, err
	}
	p := e.post
	if err := p.checkPosition(op, r.Head); err != nil {
		return Position{}, err
	}
	if err := p.checkPosition(op, r.Tail); err != nil {
		return Position{}, err
	}
	if p.compare(r.Head, r.Tail) > 0 {
		r.Head, r.Tail = r.Tail, r.Head
	}

	var pos Position
	switch {
	case r.IsCollapsed():
		pos = r.Head
	case r.Head.Section == r.Tail.Section:
		pos = e.deleteWithinSection(r)
	default:
		pos = e.deleteAcrossSections(r)
	}

	e.tx.setCursor(pos)
	return pos, nil
}

func (e *Editor) deleteWithinSection(r Range) Position {
	id := r.Head.Section
	if e.post.n(id).kind == CardSection {
		// The only non-collapsed range inside a card is 0..1.
		blank := e.insertBlank(id)
		e.removeSection(id)
		e.log.Debug("delete_range", "head", r.Head, "tail", r.Tail, "card_replaced", id)
		return Position{Section: blank}
	}

	e.setInline(id, cutInline(e.post.n(id).inline, r.Head.Offset, r.Tail.Offset))
	e.log.Debug("delete_range", "head", r.Head, "tail", r.Tail)
	return r.Head
}

func (e *Editor) deleteAcrossSections(r Range) Position {
	p := e.post
	head, tail := r.Head, r.Tail

	var between []SectionID
	for id := p.nextLeaf(head.Section); id != tail.Section && id != NoSection; id = p.nextLeaf(id) {
		between = append(between, id)
	}
	for _, id := range between {
		e.removeSection(id)
	}

	headCard := p.n(head.Section).kind == CardSection
	tailCard := p.n(tail.Section).kind == CardSection
	headAlive, tailAlive := true, true

	// Only a head card can disappear, and cards sit at the top level, so
	// its predecessor marks the spot for a replacement.
	anchor := p.n(head.Section).prev

	switch {
	case headCard && head.Offset == 0:
		e.removeSection(head.Section)
		headAlive = false
	case !headCard && head.Offset < p.Len(head.Section):
		left, _ := splitInline(p.n(head.Section).inline, head.Offset)
		e.setInline(head.Section, left)
	}

	switch {
	case tailCard && tail.Offset == 1:
		e.removeSection(tail.Section)
		tailAlive = false
	case !tailCard && tail.Offset > 0:
		_, right := splitInline(p.n(tail.Section).inline, tail.Offset)
		e.setInline(tail.Section, right)
	}

	merged := headAlive && tailAlive && !headCard && !tailCard
	if merged {
		items := slices.Concat(p.n(head.Section).inline, p.n(tail.Section).inline)
		e.setInline(head.Section, items)
		e.removeSection(tail.Section)
	}

	e.log.Debug("delete_range",
		"head", head,
		"tail", tail,
		"removed", len(between),
		"merged", merged,
	)

	switch {
	case headAlive && headCard:
		return Position{Section: head.Section, Offset: 1}
	case headAlive:
		return head
	case tailAlive:
		return Position{Section: tail.Section}
	}
	return Position{Section: e.insertBlank(anchor)}
}
