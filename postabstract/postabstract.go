// Package postabstract builds posts from a compact text notation and renders
// them back, which keeps editing tests readable.
//
// Each argument is one leaf section:
//
//	"abc"          paragraph
//	"* item"       item of an unordered list ("1. item" for ordered)
//	"[some-card]"  card section
//	"ab*cd*_ef_"   markers; *…* applies markup b, _…_ applies em
//	"a@b"          @ is an atom
//	"ab<c", ">de"  range head and tail; "|" marks a collapsed range
//
// Consecutive list lines of the same kind share one list section.
package postabstract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iw2rmb/postkit/internal/grapheme"
	"github.com/iw2rmb/postkit/post"
)

const (
	BoldTag = "b"
	EmTag   = "em"

	AtomName  = "mention"
	AtomValue = "@"
)

// Result is a built post plus the range marked in its text, if any.
type Result struct {
	Post     *post.Post
	Range    post.Range
	HasRange bool
}

var orderedPrefix = regexp.MustCompile(`^\d+\. `)

type mark struct {
	leaf   int
	offset int
}

type builder struct {
	b        *post.Builder
	bold, em post.MarkupID
	hasBold  bool
	hasEm    bool

	head, tail, cursor []mark
}

func (bd *builder) markup(tag string) post.MarkupID {
	switch tag {
	case BoldTag:
		if !bd.hasBold {
			bd.bold, bd.hasBold = bd.b.Markup(BoldTag, nil), true
		}
		return bd.bold
	default:
		if !bd.hasEm {
			bd.em, bd.hasEm = bd.b.Markup(EmTag, nil), true
		}
		return bd.em
	}
}

func (bd *builder) addMark(kind string, m mark) {
	switch kind {
	case "<":
		bd.head = append(bd.head, m)
	case ">":
		bd.tail = append(bd.tail, m)
	default:
		bd.cursor = append(bd.cursor, m)
	}
}

// Build parses lines into a post.
func Build(lines ...string) (Result, error) {
	bd := &builder{b: post.NewBuilder()}

	var sections []post.SectionTree
	var list *post.SectionTree
	flush := func() {
		if list != nil {
			sections = append(sections, *list)
			list = nil
		}
	}

	for i, raw := range lines {
		listTag, body := cutListPrefix(raw)
		s, err := bd.section(i, body)
		if err != nil {
			return Result{}, fmt.Errorf("line %d %q: %w", i+1, raw, err)
		}

		if listTag == "" {
			flush()
			sections = append(sections, s)
			continue
		}
		if s.Kind == post.CardSection {
			return Result{}, fmt.Errorf("line %d %q: card inside a list", i+1, raw)
		}
		if list != nil && list.Tag != listTag {
			flush()
		}
		if list == nil {
			ls := bd.b.ListSection(listTag)
			list = &ls
		}
		list.Items = append(list.Items, bd.b.ListItem(s.Inline...))
	}
	flush()

	p, err := bd.b.Post(sections...)
	if err != nil {
		return Result{}, err
	}
	res := Result{Post: p}
	if err := bd.resolveRange(&res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// MustBuild is Build for tests and examples; it panics on error.
func MustBuild(lines ...string) Result {
	res, err := Build(lines...)
	if err != nil {
		panic(err)
	}
	return res
}

func cutListPrefix(line string) (string, string) {
	if rest, ok := strings.CutPrefix(line, "* "); ok {
		return "ul", rest
	}
	if loc := orderedPrefix.FindStringIndex(line); loc != nil {
		return "ol", line[loc[1]:]
	}
	return "", line
}

func (bd *builder) section(leaf int, body string) (post.SectionTree, error) {
	parsed, err := abstractParser.ParseString("", body)
	if err != nil {
		return post.SectionTree{}, err
	}

	for i, it := range parsed.Items {
		if it.Card == nil {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(*it.Card, "["), "]")
		for j, other := range parsed.Items {
			switch {
			case j == i:
			case other.Mark == nil:
				return post.SectionTree{}, fmt.Errorf("card %q shares its line with content", name)
			case j < i:
				bd.addMark(*other.Mark, mark{leaf: leaf, offset: 0})
			default:
				bd.addMark(*other.Mark, mark{leaf: leaf, offset: 1})
			}
		}
		return bd.b.Card(name, nil), nil
	}

	var inline []post.Inline
	offset := 0
	addText := func(text string, markups ...post.MarkupID) {
		inline = append(inline, bd.b.Marker(text, markups...))
		offset += grapheme.Count(text)
	}
	addAtom := func(markups ...post.MarkupID) {
		inline = append(inline, bd.b.Atom(AtomName, AtomValue, nil, markups...))
		offset++
	}

	for _, it := range parsed.Items {
		switch {
		case it.Mark != nil:
			bd.addMark(*it.Mark, mark{leaf: leaf, offset: offset})
		case it.Atom:
			addAtom()
		case it.Text != nil:
			addText(*it.Text)
		case it.Bold != nil, it.Em != nil:
			span, id := it.Bold, post.MarkupID(0)
			if span != nil {
				id = bd.markup(BoldTag)
			} else {
				span, id = it.Em, bd.markup(EmTag)
			}
			for _, si := range span.Items {
				switch {
				case si.Mark != nil:
					bd.addMark(*si.Mark, mark{leaf: leaf, offset: offset})
				case si.Atom:
					addAtom(id)
				case si.Text != nil:
					addText(*si.Text, id)
				}
			}
		}
	}
	return bd.b.MarkupSection("p", inline...), nil
}

func (bd *builder) resolveRange(res *Result) error {
	switch {
	case len(bd.head) > 1 || len(bd.tail) > 1 || len(bd.cursor) > 1:
		return fmt.Errorf("more than one range mark of a kind")
	case len(bd.cursor) == 1 && len(bd.head)+len(bd.tail) > 0:
		return fmt.Errorf("cursor mark mixed with range marks")
	case len(bd.head) != len(bd.tail):
		return fmt.Errorf("range head and tail must both be marked")
	}

	leaves := res.Post.Leaves()
	at := func(m mark) (post.Position, error) {
		return res.Post.NewPosition(leaves[m.leaf], m.offset)
	}

	var from, to mark
	switch {
	case len(bd.cursor) == 1:
		from, to = bd.cursor[0], bd.cursor[0]
	case len(bd.head) == 1:
		from, to = bd.head[0], bd.tail[0]
	default:
		return nil
	}

	head, err := at(from)
	if err != nil {
		return err
	}
	tail, err := at(to)
	if err != nil {
		return err
	}
	r, err := res.Post.NewRange(head, tail)
	if err != nil {
		return err
	}
	res.Range, res.HasRange = r, true
	return nil
}
