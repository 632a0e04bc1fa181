package post

import "maps"

// Tree is the interchange form of a Post: section tuples of (kind, tag,
// attributes, content) over a shared markup table.
type Tree struct {
	Markups  []Markup
	Sections []SectionTree
}

// SectionTree describes one section. Inline is used by markup sections and
// list items, Items by list sections, and Card by card sections.
type SectionTree struct {
	Kind   SectionKind
	Tag    string
	Attrs  map[string]string
	Inline []Inline
	Items  []SectionTree
	Card   *Card
}

// FromTree validates t and materializes it as a Post. An empty tree yields
// a post holding one blank paragraph.
func FromTree(t Tree) (*Post, error) {
	p := newPost()
	for _, m := range t.Markups {
		p.markups = append(p.markups, m.clone())
	}

	for _, s := range t.Sections {
		if _, err := p.materialize(s, NoSection, p.tail); err != nil {
			return nil, err
		}
	}
	if p.count == 0 {
		p.link(NoSection, NoSection, p.alloc(blankNode("p")))
	}
	return p, nil
}

func blankNode(tag string) node {
	return node{kind: MarkupSection, tag: tag}
}

func (p *Post) checkTree(s SectionTree, inList bool) error {
	const op = "build"
	switch s.Kind {
	case MarkupSection, CardSection, ListSection:
		if inList {
			return violation(op, "%s inside a list section", s.Kind)
		}
	case ListItem:
		if !inList {
			return violation(op, "list item outside a list section")
		}
	default:
		return violation(op, "unknown section kind %d", s.Kind)
	}

	if s.Kind == ListSection && len(s.Items) == 0 {
		return violation(op, "empty list section")
	}
	if s.Kind != ListSection && len(s.Items) > 0 {
		return violation(op, "%s with child sections", s.Kind)
	}
	if s.Kind == CardSection {
		if s.Card == nil {
			return violation(op, "card section without a card")
		}
		if len(s.Inline) > 0 {
			return violation(op, "card section with inline content")
		}
	}
	for _, it := range s.Inline {
		if it == nil {
			return violation(op, "nil inline item")
		}
		for _, id := range it.MarkupStack() {
			if id < 0 || int(id) >= len(p.markups) {
				return violation(op, "markup %d not in table", id)
			}
		}
	}
	for _, item := range s.Items {
		if err := p.checkTree(item, true); err != nil {
			return err
		}
	}
	return nil
}

// materialize validates s, then links a copy of it into parent after
// `after` and returns its id.
func (p *Post) materialize(s SectionTree, parent, after SectionID) (SectionID, error) {
	if err := p.checkTree(s, parent != NoSection); err != nil {
		return NoSection, err
	}
	return p.place(s, parent, after), nil
}

func (p *Post) place(s SectionTree, parent, after SectionID) SectionID {
	n := node{
		kind:   s.Kind,
		tag:    s.Tag,
		attrs:  maps.Clone(s.Attrs),
		inline: normalizeInline(cloneInlines(s.Inline)),
	}
	if s.Card != nil {
		n.card = Card{Name: s.Card.Name, Payload: maps.Clone(s.Card.Payload)}
	}
	id := p.alloc(n)
	p.link(parent, after, id)

	prev := NoSection
	for _, item := range s.Items {
		prev = p.place(item, id, prev)
	}
	return id
}

// Tree returns a deep copy of the post in interchange form.
func (p *Post) Tree() Tree {
	t := Tree{}
	for _, m := range p.markups {
		t.Markups = append(t.Markups, m.clone())
	}
	for _, id := range p.Sections() {
		t.Sections = append(t.Sections, p.sectionTree(id))
	}
	return t
}

func (p *Post) sectionTree(id SectionID) SectionTree {
	n := p.n(id)
	s := SectionTree{
		Kind:   n.kind,
		Tag:    n.tag,
		Attrs:  maps.Clone(n.attrs),
		Inline: cloneInlines(n.inline),
	}
	if n.kind == CardSection {
		c := Card{Name: n.card.Name, Payload: maps.Clone(n.card.Payload)}
		s.Card = &c
	}
	for c := n.head; c != NoSection; c = p.n(c).next {
		s.Items = append(s.Items, p.sectionTree(c))
	}
	return s
}
