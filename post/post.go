package post

import (
	"maps"
	"strings"
	"sync/atomic"
)

// SectionID addresses a section in the post arena. IDs are stable for the
// lifetime of the post and are never reused after a section is removed.
// The high bits carry the owning post's serial, so an ID from another post
// never passes Contains.
type SectionID int64

// NoSection is the nil SectionID.
const NoSection SectionID = -1

type SectionKind uint8

const (
	MarkupSection SectionKind = iota
	ListSection
	ListItem
	CardSection
)

func (k SectionKind) String() string {
	switch k {
	case MarkupSection:
		return "markup-section"
	case ListSection:
		return "list-section"
	case ListItem:
		return "list-item"
	case CardSection:
		return "card"
	}
	return "unknown"
}

// IsLeaf reports whether sections of this kind can hold a Position.
func (k SectionKind) IsLeaf() bool { return k != ListSection }

// Card is the opaque payload of a card section.
type Card struct {
	Name    string
	Payload map[string]any
}

type node struct {
	kind   SectionKind
	tag    string
	attrs  map[string]string
	inline []Inline
	card   Card

	// Links are lookup-only IDs into the arena.
	parent     SectionID
	prev, next SectionID
	head, tail SectionID
	children   int

	live bool
}

// Post is the root of a document. It is never empty.
type Post struct {
	serial     uint32
	nodes      []node
	head, tail SectionID
	count      int

	markups []Markup
	version uint64
}

var postSerial atomic.Uint32

func newPost() *Post {
	return &Post{serial: postSerial.Add(1), head: NoSection, tail: NoSection}
}

func (p *Post) id(index int) SectionID {
	return SectionID(p.serial)<<32 | SectionID(index)
}

func (p *Post) index(id SectionID) (int, bool) {
	if id < 0 || uint32(id>>32) != p.serial {
		return 0, false
	}
	i := int(id & 0xffffffff)
	return i, i < len(p.nodes)
}

// n returns the arena slot of id. The pointer is invalidated by alloc.
func (p *Post) n(id SectionID) *node {
	i, ok := p.index(id)
	if !ok {
		panic(violation("lookup", "section %d is not in this post", id))
	}
	return &p.nodes[i]
}

func (p *Post) Version() uint64 { return p.version }

// NumSections is the number of top-level sections.
func (p *Post) NumSections() int { return p.count }

// Contains reports whether id is a live section of this post.
func (p *Post) Contains(id SectionID) bool {
	i, ok := p.index(id)
	return ok && p.nodes[i].live
}

func (p *Post) Kind(id SectionID) SectionKind { return p.n(id).kind }
func (p *Post) Tag(id SectionID) string       { return p.n(id).tag }

func (p *Post) Attrs(id SectionID) map[string]string { return maps.Clone(p.n(id).attrs) }

// Parent returns the list owning a list item, or NoSection for top-level
// sections.
func (p *Post) Parent(id SectionID) SectionID { return p.n(id).parent }

// Card returns the payload of a card section.
func (p *Post) Card(id SectionID) (Card, bool) {
	n := p.n(id)
	if n.kind != CardSection {
		return Card{}, false
	}
	return Card{Name: n.card.Name, Payload: maps.Clone(n.card.Payload)}, true
}

// Inline returns a copy of a leaf section's content.
func (p *Post) Inline(id SectionID) []Inline { return cloneInlines(p.n(id).inline) }

// Len is the content length of a leaf section. Cards have length 1.
func (p *Post) Len(id SectionID) int {
	n := p.n(id)
	switch n.kind {
	case CardSection:
		return 1
	case ListSection:
		return 0
	}
	return inlineLen(n.inline)
}

// IsBlank reports whether a markup section or list item has no content.
func (p *Post) IsBlank(id SectionID) bool {
	n := p.n(id)
	return (n.kind == MarkupSection || n.kind == ListItem) && len(n.inline) == 0
}

// Text is the display text of a leaf section; atoms contribute their Value.
func (p *Post) Text(id SectionID) string {
	var sb strings.Builder
	for _, it := range p.n(id).inline {
		switch v := it.(type) {
		case *Marker:
			sb.WriteString(v.Text)
		case *Atom:
			sb.WriteString(v.Value)
		}
	}
	return sb.String()
}

// Markup looks up an entry of the markup table.
func (p *Post) Markup(id MarkupID) (Markup, bool) {
	if id < 0 || int(id) >= len(p.markups) {
		return Markup{}, false
	}
	return p.markups[id].clone(), true
}

// Sections returns the top-level sections in order.
func (p *Post) Sections() []SectionID {
	return p.siblings(p.head)
}

// Children returns the items of a list section in order.
func (p *Post) Children(id SectionID) []SectionID {
	return p.siblings(p.n(id).head)
}

func (p *Post) siblings(from SectionID) []SectionID {
	var out []SectionID
	for id := from; id != NoSection; id = p.n(id).next {
		out = append(out, id)
	}
	return out
}

// Leaves returns every section that can hold a Position, in document order,
// with lists flattened into their items.
func (p *Post) Leaves() []SectionID {
	var out []SectionID
	p.walkLeaves(func(id SectionID) bool {
		out = append(out, id)
		return true
	})
	return out
}

func (p *Post) walkLeaves(fn func(SectionID) bool) {
	for id := p.head; id != NoSection; id = p.n(id).next {
		if p.n(id).kind != ListSection {
			if !fn(id) {
				return
			}
			continue
		}
		for c := p.n(id).head; c != NoSection; c = p.n(c).next {
			if !fn(c) {
				return
			}
		}
	}
}

// nextLeaf returns the leaf following id in document order.
func (p *Post) nextLeaf(id SectionID) SectionID {
	n := p.n(id)
	if n.next != NoSection {
		return p.firstLeafOf(n.next)
	}
	if n.parent != NoSection {
		if up := p.n(n.parent).next; up != NoSection {
			return p.firstLeafOf(up)
		}
	}
	return NoSection
}

func (p *Post) firstLeafOf(id SectionID) SectionID {
	if p.n(id).kind == ListSection {
		return p.n(id).head
	}
	return id
}

func (p *Post) leafIndex(id SectionID) int {
	idx, found := 0, -1
	p.walkLeaves(func(leaf SectionID) bool {
		if leaf == id {
			found = idx
			return false
		}
		idx++
		return true
	})
	return found
}

// arena primitives

func (p *Post) alloc(n node) SectionID {
	n.parent, n.prev, n.next = NoSection, NoSection, NoSection
	n.head, n.tail = NoSection, NoSection
	n.live = true
	p.nodes = append(p.nodes, n)
	return p.id(len(p.nodes) - 1)
}

// link inserts id into parent's child list (parent == NoSection means the
// post itself) right after `after`, or first when after is NoSection.
func (p *Post) link(parent, after, id SectionID) {
	head, tail, count := &p.head, &p.tail, &p.count
	if parent != NoSection {
		pn := p.n(parent)
		head, tail, count = &pn.head, &pn.tail, &pn.children
	}

	n := p.n(id)
	n.parent = parent
	n.prev = after
	if after == NoSection {
		n.next = *head
		*head = id
	} else {
		n.next = p.n(after).next
		p.n(after).next = id
	}
	if n.next == NoSection {
		*tail = id
	} else {
		p.n(n.next).prev = id
	}
	*count++
	n.live = true
}

// unlink detaches id from its container and marks it dead. Children of a
// list stay attached to the dead node.
func (p *Post) unlink(id SectionID) {
	n := p.n(id)
	head, tail, count := &p.head, &p.tail, &p.count
	if n.parent != NoSection {
		pn := p.n(n.parent)
		head, tail, count = &pn.head, &pn.tail, &pn.children
	}

	if n.prev == NoSection {
		*head = n.next
	} else {
		p.n(n.prev).next = n.next
	}
	if n.next == NoSection {
		*tail = n.prev
	} else {
		p.n(n.next).prev = n.prev
	}
	*count--
	n.prev, n.next = NoSection, NoSection
	n.live = false
	for c := n.head; c != NoSection; c = p.n(c).next {
		p.n(c).live = false
	}
}
