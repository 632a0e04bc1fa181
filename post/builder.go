package post

import (
	"maps"
	"slices"
)

// Builder constructs posts with one typed constructor per node kind.
// Markups are interned: equal tag and attributes share a MarkupID.
type Builder struct {
	markups []Markup
	index   map[string]MarkupID
}

func NewBuilder() *Builder {
	return &Builder{index: map[string]MarkupID{}}
}

func (b *Builder) Markup(tag string, attrs map[string]string) MarkupID {
	m := Markup{Tag: tag, Attrs: maps.Clone(attrs)}
	k := m.key()
	if id, ok := b.index[k]; ok {
		return id
	}
	id := MarkupID(len(b.markups))
	b.markups = append(b.markups, m)
	b.index[k] = id
	return id
}

func (b *Builder) Marker(text string, markups ...MarkupID) Inline {
	return &Marker{Text: text, Markups: slices.Clone(markups)}
}

func (b *Builder) Atom(name, value string, payload map[string]any, markups ...MarkupID) Inline {
	return &Atom{Name: name, Value: value, Payload: maps.Clone(payload), Markups: slices.Clone(markups)}
}

func (b *Builder) MarkupSection(tag string, inline ...Inline) SectionTree {
	return SectionTree{Kind: MarkupSection, Tag: tag, Inline: inline}
}

// ListSection builds a list; tag is "ul" or "ol".
func (b *Builder) ListSection(tag string, items ...SectionTree) SectionTree {
	return SectionTree{Kind: ListSection, Tag: tag, Items: items}
}

func (b *Builder) ListItem(inline ...Inline) SectionTree {
	return SectionTree{Kind: ListItem, Tag: "li", Inline: inline}
}

func (b *Builder) Card(name string, payload map[string]any) SectionTree {
	return SectionTree{Kind: CardSection, Card: &Card{Name: name, Payload: maps.Clone(payload)}}
}

// Tree assembles sections over the builder's markup table.
func (b *Builder) Tree(sections ...SectionTree) Tree {
	t := Tree{Sections: sections}
	for _, m := range b.markups {
		t.Markups = append(t.Markups, m.clone())
	}
	return t
}

func (b *Builder) Post(sections ...SectionTree) (*Post, error) {
	return FromTree(b.Tree(sections...))
}
