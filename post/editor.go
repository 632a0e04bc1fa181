package post

import (
	"log/slog"

	"github.com/iw2rmb/postkit/internal/logging"
)

type Options struct {
	// BlankSectionTag is the tag of sections created to keep a cursor
	// target. Default: "p".
	BlankSectionTag string

	// OnChange receives exactly one Change per completed transaction.
	OnChange func(Change)

	Logger *slog.Logger
}

// Editor is the only way to mutate a Post. Mutations run inside a
// Begin/Complete bracket; brackets do not nest and are not rolled back.
type Editor struct {
	post *Post
	opt  Options
	log  *slog.Logger

	tx *changeBuilder
}

func NewEditor(p *Post, opt Options) *Editor {
	if opt.BlankSectionTag == "" {
		opt.BlankSectionTag = "p"
	}
	log := opt.Logger
	if log == nil {
		log = logging.GetLogger()
	}
	return &Editor{post: p, opt: opt, log: log}
}

func (e *Editor) Post() *Post { return e.post }

// InTransaction reports whether Begin has been called without Complete.
func (e *Editor) InTransaction() bool { return e.tx != nil }

func (e *Editor) Begin() error {
	if e.tx != nil {
		return violation("begin", "transaction %s already open", e.tx.txID)
	}
	e.tx = newChangeBuilder(e.post)
	e.log.Debug("transaction_begin", "tx", e.tx.txID, "version", e.post.version)
	return nil
}

// Complete closes the transaction and notifies OnChange once, whether or
// not anything changed.
func (e *Editor) Complete() (Change, error) {
	if e.tx == nil {
		return Change{}, violation("complete", "no open transaction")
	}
	ch := e.tx.commit(e.post)
	e.tx = nil

	e.log.Debug("transaction_complete",
		"tx", ch.TxID,
		"dirty", len(ch.Dirty),
		"version", ch.VersionAfter,
	)
	if e.opt.OnChange != nil {
		e.opt.OnChange(ch)
	}
	return ch, nil
}

// Run brackets fn in Begin/Complete. The bracket is closed even when fn
// fails; fn's error wins over Complete's.
func (e *Editor) Run(fn func(*Editor) error) (Change, error) {
	if err := e.Begin(); err != nil {
		return Change{}, err
	}
	fnErr := fn(e)
	ch, err := e.Complete()
	if fnErr != nil {
		return ch, fnErr
	}
	return ch, err
}

func (e *Editor) requireTx(op string) error {
	if e.tx == nil {
		return violation(op, "called outside a transaction")
	}
	return nil
}

// RemoveSection removes a section and everything it owns. A list left
// without items is removed too, and an emptied post gets a blank section.
func (e *Editor) RemoveSection(id SectionID) error {
	const op = "remove section"
	if err := e.requireTx(op); err != nil {
		return err
	}
	if !e.post.Contains(id) {
		return violation(op, "section %d is not in this post", id)
	}
	e.removeSection(id)
	e.ensureNotEmpty()
	return nil
}

// InsertSectionAfter links a new section after `after` in the same
// container. NoSection prepends to the post. List items may only follow
// list items; other kinds only follow top-level sections.
func (e *Editor) InsertSectionAfter(after SectionID, s SectionTree) (SectionID, error) {
	const op = "insert section"
	if err := e.requireTx(op); err != nil {
		return NoSection, err
	}
	parent := NoSection
	if after != NoSection {
		if !e.post.Contains(after) {
			return NoSection, violation(op, "section %d is not in this post", after)
		}
		parent = e.post.n(after).parent
	}
	id, err := e.post.materialize(s, parent, after)
	if err != nil {
		return NoSection, err
	}
	e.markAdded(id)
	return id, nil
}

func (e *Editor) markAdded(id SectionID) {
	e.tx.mark(e.post, id, SectionAdded)
	for _, c := range e.post.Children(id) {
		e.tx.mark(e.post, c, SectionAdded)
	}
}

func (e *Editor) markRemoved(id SectionID) {
	for _, c := range e.post.Children(id) {
		e.tx.mark(e.post, c, SectionRemoved)
	}
	e.tx.mark(e.post, id, SectionRemoved)
}

// removeSection unlinks id and prunes its list if that was the last item.
func (e *Editor) removeSection(id SectionID) {
	parent := e.post.n(id).parent
	e.markRemoved(id)
	e.post.unlink(id)
	if parent != NoSection && e.post.n(parent).children == 0 {
		e.markRemoved(parent)
		e.post.unlink(parent)
	}
}

func (e *Editor) setInline(id SectionID, items []Inline) {
	e.post.n(id).inline = normalizeInline(items)
	e.tx.mark(e.post, id, SectionChanged)
}

// insertBlank adds a blank top-level section after `after` (NoSection:
// first) and returns it.
func (e *Editor) insertBlank(after SectionID) SectionID {
	id := e.post.alloc(blankNode(e.opt.BlankSectionTag))
	e.post.link(NoSection, after, id)
	e.markAdded(id)
	return id
}

// ensureNotEmpty keeps at least one section in the post. It returns the
// blank section it created, or NoSection.
func (e *Editor) ensureNotEmpty() SectionID {
	if e.post.count > 0 {
		return NoSection
	}
	return e.insertBlank(NoSection)
}
