package post

import (
	"slices"

	"github.com/google/uuid"
)

// DirtyState classifies how a section changed inside one transaction.
type DirtyState uint8

const (
	SectionChanged DirtyState = iota
	SectionAdded
	SectionRemoved
)

func (s DirtyState) String() string {
	switch s {
	case SectionAdded:
		return "added"
	case SectionRemoved:
		return "removed"
	}
	return "changed"
}

// DirtySection is one entry of the dirty set. Parent is the owning list for
// list items, or NoSection.
type DirtySection struct {
	ID     SectionID
	Kind   SectionKind
	Parent SectionID
	State  DirtyState
}

// Change is the single notification a transaction emits on Complete.
type Change struct {
	TxID          uuid.UUID
	VersionBefore uint64
	VersionAfter  uint64

	// Dirty is ordered by the first time each section was touched.
	Dirty []DirtySection

	// Cursor is the Position returned by the last range operation.
	Cursor    Position
	HasCursor bool
}

// Changed reports whether the transaction touched any section.
func (c Change) Changed() bool { return len(c.Dirty) > 0 }

type changeBuilder struct {
	txID          uuid.UUID
	versionBefore uint64

	dirty []DirtySection
	index map[SectionID]int

	cursor    Position
	hasCursor bool
}

func newChangeBuilder(p *Post) *changeBuilder {
	return &changeBuilder{
		txID:          uuid.New(),
		versionBefore: p.version,
		index:         map[SectionID]int{},
	}
}

func (cb *changeBuilder) mark(p *Post, id SectionID, state DirtyState) {
	i, seen := cb.index[id]
	if !seen {
		cb.index[id] = len(cb.dirty)
		cb.dirty = append(cb.dirty, DirtySection{
			ID:     id,
			Kind:   p.n(id).kind,
			Parent: p.n(id).parent,
			State:  state,
		})
		return
	}

	prev := cb.dirty[i].State
	switch {
	case prev == SectionAdded && state == SectionRemoved:
		// Never existed outside this transaction.
		cb.drop(i)
	case prev == SectionAdded:
	default:
		cb.dirty[i].State = state
	}
}

func (cb *changeBuilder) drop(i int) {
	delete(cb.index, cb.dirty[i].ID)
	cb.dirty = slices.Delete(cb.dirty, i, i+1)
	for j := i; j < len(cb.dirty); j++ {
		cb.index[cb.dirty[j].ID] = j
	}
}

func (cb *changeBuilder) setCursor(pos Position) {
	cb.cursor = pos
	cb.hasCursor = true
}

func (cb *changeBuilder) commit(p *Post) Change {
	if len(cb.dirty) > 0 {
		p.version++
	}
	return Change{
		TxID:          cb.txID,
		VersionBefore: cb.versionBefore,
		VersionAfter:  p.version,
		Dirty:         slices.Clone(cb.dirty),
		Cursor:        cb.cursor,
		HasCursor:     cb.hasCursor,
	}
}
