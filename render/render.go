package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/iw2rmb/postkit/post"
)

// Renderer turns a post into terminal lines, one per leaf section. It
// caches each section's rendered body and, fed the Change of a
// transaction, redraws only the sections that transaction touched.
type Renderer struct {
	style Style

	cache   map[post.SectionID]string
	renders int
}

func New(style Style) *Renderer {
	if style.Markups == nil {
		style.Markups = map[string]lipgloss.Style{}
	}
	return &Renderer{style: style, cache: map[post.SectionID]string{}}
}

// Renders is the number of section bodies drawn so far.
func (r *Renderer) Renders() int { return r.renders }

// Render drops the cache and draws every section of p.
func (r *Renderer) Render(p *post.Post) []string {
	clear(r.cache)
	return r.assemble(p)
}

// Apply brings the cache up to date with ch and returns the full output.
// Removed sections are evicted, added and changed leaves are redrawn and
// everything else comes from the cache.
func (r *Renderer) Apply(p *post.Post, ch post.Change) []string {
	for _, d := range ch.Dirty {
		switch {
		case d.State == post.SectionRemoved:
			delete(r.cache, d.ID)
		case d.Kind.IsLeaf() && p.Contains(d.ID):
			r.cache[d.ID] = r.section(p, d.ID)
		}
	}
	return r.assemble(p)
}

func (r *Renderer) assemble(p *post.Post) []string {
	leaves := p.Leaves()
	out := make([]string, 0, len(leaves))

	number, list := 0, post.NoSection
	for _, id := range leaves {
		body, ok := r.cache[id]
		if !ok {
			body = r.section(p, id)
			r.cache[id] = body
		}

		// List numbering depends on siblings, so prefixes are never cached.
		parent := p.Parent(id)
		if parent != list {
			number, list = 0, parent
		}
		switch {
		case parent == post.NoSection:
			out = append(out, body)
		case p.Tag(parent) == "ol":
			number++
			out = append(out, r.style.Bullet.Render(strconv.Itoa(number)+".")+" "+body)
		default:
			out = append(out, r.style.Bullet.Render("•")+" "+body)
		}
	}
	return out
}

func (r *Renderer) section(p *post.Post, id post.SectionID) string {
	r.renders++

	if card, ok := p.Card(id); ok {
		name := card.Name
		if r.style.MaxCardWidth > 0 {
			name = runewidth.Truncate(name, r.style.MaxCardWidth, "…")
		}
		return r.style.Card.Render("[" + name + "]")
	}

	var sb strings.Builder
	for _, it := range p.Inline(id) {
		st, text := r.style.Text, ""
		switch v := it.(type) {
		case *post.Marker:
			text = v.Text
		case *post.Atom:
			st, text = r.style.Atom.Inherit(st), v.Value
		}
		for _, mid := range it.MarkupStack() {
			m, ok := p.Markup(mid)
			if !ok {
				continue
			}
			if ms, ok := r.style.Markups[m.Tag]; ok {
				st = ms.Inherit(st)
			}
		}
		sb.WriteString(st.Render(text))
	}
	return sb.String()
}
