package postabstract

import (
	"strconv"
	"strings"

	"github.com/iw2rmb/postkit/internal/grapheme"
	"github.com/iw2rmb/postkit/post"
)

// Render writes every leaf of p back in the notation Build accepts, without
// range marks. Markups other than b and em are not shown.
func Render(p *post.Post) []string {
	return render(p, post.Position{Section: post.NoSection})
}

// RenderCursor is Render with "|" placed at pos.
func RenderCursor(p *post.Post, pos post.Position) []string {
	return render(p, pos)
}

func render(p *post.Post, cursor post.Position) []string {
	var out []string
	number, list := 0, post.NoSection
	for _, id := range p.Leaves() {
		var sb strings.Builder

		parent := p.Parent(id)
		if parent != list {
			number, list = 0, parent
		}
		switch {
		case parent == post.NoSection:
		case p.Tag(parent) == "ol":
			number++
			sb.WriteString(strconv.Itoa(number))
			sb.WriteString(". ")
		default:
			sb.WriteString("* ")
		}

		offset := -1
		if cursor.Section == id {
			offset = cursor.Offset
		}
		writeSection(&sb, p, id, offset)
		out = append(out, sb.String())
	}
	return out
}

// writeSection renders one leaf; cursor < 0 means no cursor.
func writeSection(sb *strings.Builder, p *post.Post, id post.SectionID, cursor int) {
	if card, ok := p.Card(id); ok {
		if cursor == 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("[" + card.Name + "]")
		if cursor == 1 {
			sb.WriteByte('|')
		}
		return
	}

	var bold, em bool
	setWrappers := func(wantBold, wantEm bool, opening bool) {
		// em is the inner wrapper: close it first, open it last.
		if !opening {
			if em && !wantEm {
				sb.WriteByte('_')
				em = false
			}
			if bold && !wantBold {
				if em {
					sb.WriteByte('_')
					em = false
				}
				sb.WriteByte('*')
				bold = false
			}
			return
		}
		if wantBold && !bold {
			sb.WriteByte('*')
			bold = true
		}
		if wantEm && !em {
			sb.WriteByte('_')
			em = true
		}
	}

	offset := 0
	for _, it := range p.Inline(id) {
		wantBold, wantEm := false, false
		for _, mid := range it.MarkupStack() {
			m, _ := p.Markup(mid)
			switch m.Tag {
			case BoldTag:
				wantBold = true
			case EmTag:
				wantEm = true
			}
		}
		setWrappers(wantBold, wantEm, false)
		if cursor == offset {
			sb.WriteByte('|')
		}
		setWrappers(wantBold, wantEm, true)

		n := it.Len()
		switch v := it.(type) {
		case *post.Marker:
			text := v.Text
			if cursor > offset && cursor < offset+n {
				text = grapheme.Insert(text, cursor-offset, "|")
			}
			sb.WriteString(text)
		case *post.Atom:
			sb.WriteString(AtomValue)
		}
		offset += n
	}
	setWrappers(bold, em, false)
	if cursor == offset {
		sb.WriteByte('|')
	}
	setWrappers(false, false, false)
}
