package post_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/postkit/post"
	"github.com/iw2rmb/postkit/postabstract"
)

type deleteCase struct {
	before []string
	after  []string
	msg    string
}

// runDelete deletes the range marked in lines and returns the post, the
// resulting cursor and the transaction's change.
func runDelete(t *testing.T, lines ...string) (*post.Post, post.Position, post.Change) {
	t.Helper()
	res := postabstract.MustBuild(lines...)
	require.True(t, res.HasRange, "no range marked in %q", lines)

	notified := 0
	ed := post.NewEditor(res.Post, post.Options{OnChange: func(post.Change) { notified++ }})

	var pos post.Position
	ch, err := ed.Run(func(e *post.Editor) error {
		var err error
		pos, err = e.DeleteRange(res.Range)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, notified, "exactly one notification per transaction")
	require.True(t, ch.HasCursor)
	require.Equal(t, pos, ch.Cursor)
	return res.Post, pos, ch
}

// checkDelete compares structure and cursor against the expected notation,
// where the cursor is given as "|".
func checkDelete(t *testing.T, tc deleteCase) {
	t.Helper()
	got, pos, _ := runDelete(t, tc.before...)
	want := postabstract.MustBuild(tc.after...)

	require.Equal(t, postabstract.Render(want.Post), postabstract.Render(got), "post (%s)", tc.msg)

	wantLeaf := slices.Index(want.Post.Leaves(), want.Range.Head.Section)
	gotLeaf := slices.Index(got.Leaves(), pos.Section)
	require.Equal(t, wantLeaf, gotLeaf, "cursor section (%s)", tc.msg)
	require.Equal(t, want.Range.Head.Offset, pos.Offset, "cursor offset (%s)", tc.msg)
	require.True(t, got.Contains(pos.Section), "cursor section is live (%s)", tc.msg)
	require.GreaterOrEqual(t, got.NumSections(), 1)
}

func runCases(t *testing.T, cases []deleteCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			checkDelete(t, tc)
		})
	}
}

func lines(s ...string) []string { return s }

func TestDeleteRange_WithinSection(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("ab<c>"), after: lines("ab|"), msg: "at tail"},
		{before: lines("<a>bc"), after: lines("|bc"), msg: "at head"},
		{before: lines("a<b>c"), after: lines("a|c"), msg: "middle"},
	})
}

func TestDeleteRange_WithinSectionWithMarkup(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("abc <*def*> ghi"), after: lines("abc | ghi"), msg: "entire markup in middle"},
		{before: lines("abc *de<f* ghi>"), after: lines("abc *de|*"), msg: "partial markup at end"},
		{before: lines("abc *de<f* g>hi"), after: lines("abc *de|*hi"), msg: "partial markup in middle (right)"},
		{before: lines("ab<c *de>f* ghi"), after: lines("ab*|f* ghi"), msg: "partial markup in middle (left)"},
		{before: lines("<abc *de>f* ghi"), after: lines("*|f* ghi"), msg: "partial markup at start"},
	})
}

func TestDeleteRange_EntireMarkupLeavesNoEmptyMarker(t *testing.T) {
	p, _, _ := runDelete(t, "abc <*def*> ghi")

	items := p.Inline(p.Leaves()[0])
	require.Len(t, items, 1)
	mk, ok := items[0].(*post.Marker)
	require.True(t, ok)
	require.Equal(t, "abc  ghi", mk.Text)
	require.Empty(t, mk.Markups)
}

func TestDeleteRange_EntireSection(t *testing.T) {
	for _, before := range [][]string{
		{"<abc>"},
		{"<abc", "def", "ghi>"},
	} {
		p, pos, _ := runDelete(t, before...)
		require.Equal(t, 1, p.NumSections(), "%q", before)
		head := p.Sections()[0]
		require.True(t, p.IsBlank(head), "%q", before)
		require.Equal(t, post.Position{Section: head}, pos, "%q", before)
	}
}

func TestDeleteRange_AcrossSections(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("abc<", ">def"), after: lines("abc|def"), msg: "at boundary"},
		{before: lines("abc<", "d>ef"), after: lines("abc|ef"), msg: "boundary into next section"},
		{before: lines("ab<c", ">def"), after: lines("ab|def"), msg: "section into boundary"},
		{before: lines("ab<c", "d>ef"), after: lines("ab|ef"), msg: "containing boundary"},

		{before: lines("abc<", "def", ">ghi"), after: lines("abc|ghi"), msg: "across section at boundary"},
		{before: lines("abc<", "def", "g>hi"), after: lines("abc|hi"), msg: "across section containing next"},
		{before: lines("ab<c", "def", ">ghi"), after: lines("ab|ghi"), msg: "across section containing before"},
		{before: lines("ab<c", "def", "g>hi"), after: lines("ab|hi"), msg: "across section containing both"},
	})
}

func TestDeleteRange_AcrossSectionsWithMarkups(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("*abc*<", ">def"), after: lines("*abc*|def"), msg: "at boundary (left markup)"},
		{before: lines("*abc*<", "d>ef"), after: lines("*abc*|ef"), msg: "into next (left markup)"},
		{before: lines("*ab<c*", ">def"), after: lines("*ab*|def"), msg: "section into boundary (left markup)"},
		{before: lines("*ab<c*", "d>ef"), after: lines("*ab*|ef"), msg: "containing boundary (left markup)"},

		{before: lines("abc<", "*>def*"), after: lines("abc|*def*"), msg: "at boundary (right markup)"},
		{before: lines("abc<", "*d>ef*"), after: lines("abc|*ef*"), msg: "into next (right markup)"},
		{before: lines("ab<c", "*>def*"), after: lines("ab|*def*"), msg: "section into boundary (right markup)"},
		{before: lines("ab<c", "*d>ef*"), after: lines("ab|*ef*"), msg: "containing boundary (right markup)"},

		{before: lines("abc<", "*def*", ">ghi"), after: lines("abc|ghi"), msg: "across markup section at boundary"},
		{before: lines("abc<", "*def*", "g>hi"), after: lines("abc|hi"), msg: "across markup section into next"},
		{before: lines("ab<c", "*def*", ">ghi"), after: lines("ab|ghi"), msg: "across markup section from before"},
		{before: lines("ab<c", "*def*", "g>hi"), after: lines("ab|hi"), msg: "across markup section both sides"},

		{before: lines("abc<", "*def*", ">*g*hi"), after: lines("abc|*g*hi"), msg: "up to markup"},
		{before: lines("abc<", "*def*", "*g*>hi"), after: lines("abc|hi"), msg: "through markup"},
		{before: lines("ab<c", "*def*", ">*g*hi"), after: lines("ab|*g*hi"), msg: "from before up to markup"},
		{before: lines("ab<c", "*def*", "*g*>hi"), after: lines("ab|hi"), msg: "from before through markup"},
	})
}

func TestDeleteRange_CardBoundaries(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("[some-card]<", ">abc"), after: lines("[some-card]|", "abc"), msg: "card->markup"},
		{before: lines("abc<", ">[some-card]"), after: lines("abc|", "[some-card]"), msg: "markup->card"},
		{before: lines("abc<", "[some-card]", ">def"), after: lines("abc|def"), msg: "containing card"},
	})
}

func TestDeleteRange_SurroundingCardLeavesBlankSection(t *testing.T) {
	p, pos, ch := runDelete(t, "abc", "<[some-card]>", "def")

	require.Equal(t, []string{"abc", "", "def"}, postabstract.Render(p))
	blank := p.Sections()[1]
	require.True(t, p.IsBlank(blank))
	require.Equal(t, post.MarkupSection, p.Kind(blank))
	require.Equal(t, "p", p.Tag(blank))
	require.Equal(t, post.Position{Section: blank}, pos)

	states := map[post.DirtyState]int{}
	for _, d := range ch.Dirty {
		states[d.State]++
	}
	require.Equal(t, map[post.DirtyState]int{post.SectionAdded: 1, post.SectionRemoved: 1}, states)
}

func TestDeleteRange_CardEdgeTieBreaks(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("<[some-card]", "ab>c"), after: lines("|c"), msg: "head card enclosed"},
		{before: lines("a<bc", "[some-card]>"), after: lines("a|"), msg: "tail card enclosed"},
		{before: lines("[some-card]<", "ab>c"), after: lines("[some-card]|", "c"), msg: "head card kept"},
		{before: lines("a<bc", ">[some-card]"), after: lines("a|", "[some-card]"), msg: "tail card kept"},
		{before: lines("x", "<[one]", "[two]>", "y"), after: lines("x", "|", "y"), msg: "two cards enclosed"},
		{before: lines("<[one]", "[two]>"), after: lines("|"), msg: "whole post of cards"},
	})
}

func TestDeleteRange_ListItems(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("* item 1<", "* >item 2"), after: lines("* item 1|item 2"), msg: "at boundary"},
		{before: lines("* item <1", "* i>tem 2"), after: lines("* item |tem 2"), msg: "surrounding boundary"},
		{before: lines("* item 1<", "* i>tem 2"), after: lines("* item 1|tem 2"), msg: "boundary to next"},
		{before: lines("* item <1", "* >item 2"), after: lines("* item |item 2"), msg: "prev to boundary"},

		{before: lines("* item 1<", "* middle", "* >item 2"), after: lines("* item 1|item 2"), msg: "across item at boundary"},
		{before: lines("* item <1", "* middle", "* i>tem 2"), after: lines("* item |tem 2"), msg: "across item surrounding boundary"},
		{before: lines("* item <1", "* middle", "* >item 2"), after: lines("* item |item 2"), msg: "across item prev to boundary"},
		{before: lines("* item 1<", "* middle", "* i>tem 2"), after: lines("* item 1|tem 2"), msg: "across item boundary to next"},

		{before: lines("* item 1<", "middle", "* >item 2"), after: lines("* item 1|item 2"), msg: "across markup at boundary"},
		{before: lines("* item <1", "middle", "* i>tem 2"), after: lines("* item |tem 2"), msg: "across markup surrounding boundary"},

		{before: lines("* item 1", "<middle", "* i>tem 2"), after: lines("* item 1", "|tem 2"), msg: "across markup into next"},

		{before: lines("* item 1<", ">middle"), after: lines("* item 1|middle"), msg: "item tail to markup head"},
		{before: lines("start<", "* >middle"), after: lines("start|middle"), msg: "markup tail to item head"},
	})
}

func TestDeleteRange_EmptiedListIsPruned(t *testing.T) {
	p, _, ch := runDelete(t, "start<", "* >middle")

	require.Len(t, p.Sections(), 1)
	require.Equal(t, post.MarkupSection, p.Kind(p.Sections()[0]))

	var removedLists int
	for _, d := range ch.Dirty {
		if d.Kind == post.ListSection && d.State == post.SectionRemoved {
			removedLists++
		}
	}
	require.Equal(t, 1, removedLists)
}

func TestDeleteRange_Atoms(t *testing.T) {
	runCases(t, []deleteCase{
		{before: lines("abc<@>def"), after: lines("abc|def"), msg: "surrounding"},
		{before: lines("abc<@d>ef"), after: lines("abc|ef"), msg: "into atom into next marker"},
		{before: lines("ab<c@>def"), after: lines("ab|def"), msg: "into marker into atom"},
		{before: lines("ab<c>@def"), after: lines("ab|@def"), msg: "prev boundary"},
		{before: lines("abc@<d>ef"), after: lines("abc@|ef"), msg: "next boundary"},
	})
}

func TestDeleteRange_AtomFromDisplayOffsets(t *testing.T) {
	b := post.NewBuilder()
	p, err := b.Post(b.MarkupSection("p",
		b.Marker("abc"),
		b.Atom("mention", "@mention", nil),
		b.Marker("def"),
	))
	require.NoError(t, err)
	id := p.Leaves()[0]

	// Display text is "abc@mentiondef"; offsets 5 and 13 sit inside the
	// atom and inside "def".
	r, err := p.RangeFromTextOffsets(id, 5, id, 13)
	require.NoError(t, err)
	require.Equal(t, post.Position{Section: id, Offset: 3}, r.Head)
	require.Equal(t, post.Position{Section: id, Offset: 6}, r.Tail)

	ed := post.NewEditor(p, post.Options{})
	require.NoError(t, ed.Begin())
	pos, err := ed.DeleteRange(r)
	require.NoError(t, err)
	_, err = ed.Complete()
	require.NoError(t, err)

	require.Equal(t, "abcf", p.Text(id))
	require.Equal(t, 3, pos.Offset)
	for _, it := range p.Inline(id) {
		_, isAtom := it.(*post.Atom)
		require.False(t, isAtom, "atom removed as a unit")
	}
}

func TestDeleteRange_CollapsedIsNoOp(t *testing.T) {
	res := postabstract.MustBuild("ab|c", "*def*")
	before := res.Post.Tree()

	ed := post.NewEditor(res.Post, post.Options{})
	var pos post.Position
	ch, err := ed.Run(func(e *post.Editor) error {
		var err error
		pos, err = e.DeleteRange(res.Range)
		return err
	})
	require.NoError(t, err)

	require.Equal(t, res.Range.Head, pos)
	require.Equal(t, before, res.Post.Tree())
	require.False(t, ch.Changed())
	require.Equal(t, ch.VersionBefore, ch.VersionAfter)
}

func TestDeleteRange_ReversedRangeIsNormalized(t *testing.T) {
	res := postabstract.MustBuild("abc<", "d>ef")
	reversed := post.Range{Head: res.Range.Tail, Tail: res.Range.Head}

	ed := post.NewEditor(res.Post, post.Options{})
	require.NoError(t, ed.Begin())
	pos, err := ed.DeleteRange(reversed)
	require.NoError(t, err)
	_, err = ed.Complete()
	require.NoError(t, err)

	require.Equal(t, []string{"abcef"}, postabstract.Render(res.Post))
	require.Equal(t, 3, pos.Offset)
}

func TestDeleteRange_ContractViolations(t *testing.T) {
	res := postabstract.MustBuild("ab<c", "d>ef")
	other := postabstract.MustBuild("x<y>z")
	ed := post.NewEditor(res.Post, post.Options{})

	_, err := ed.DeleteRange(res.Range)
	require.ErrorIs(t, err, post.ErrContractViolation, "outside a transaction")

	require.NoError(t, ed.Begin())
	defer func() {
		_, err := ed.Complete()
		require.NoError(t, err)
	}()

	_, err = ed.DeleteRange(other.Range)
	require.ErrorIs(t, err, post.ErrContractViolation, "foreign sections")

	bad := res.Range
	bad.Tail.Offset = 99
	_, err = ed.DeleteRange(bad)
	require.ErrorIs(t, err, post.ErrContractViolation, "offset out of bounds")

	var cv *post.ContractViolation
	require.ErrorAs(t, err, &cv)
	require.Equal(t, "delete range", cv.Op)

	require.Equal(t, []string{"abc", "def"}, postabstract.Render(res.Post), "post untouched by rejected ranges")
}

func TestDeleteRange_LastOperationSetsCursor(t *testing.T) {
	res := postabstract.MustBuild("abc", "def", "ghi")
	p := res.Post
	leaves := p.Leaves()

	ed := post.NewEditor(p, post.Options{})
	ch, err := ed.Run(func(e *post.Editor) error {
		r1, err := p.NewRange(post.Position{Section: leaves[2], Offset: 1}, post.Position{Section: leaves[2], Offset: 2})
		if err != nil {
			return err
		}
		if _, err := e.DeleteRange(r1); err != nil {
			return err
		}
		r2, err := p.NewRange(post.Position{Section: leaves[0], Offset: 3}, post.Position{Section: leaves[1], Offset: 0})
		if err != nil {
			return err
		}
		_, err = e.DeleteRange(r2)
		return err
	})
	require.NoError(t, err)

	require.Equal(t, []string{"abcdef", "gi"}, postabstract.Render(p))
	require.Equal(t, post.Position{Section: leaves[0], Offset: 3}, ch.Cursor)
	require.Equal(t, ch.VersionBefore+1, ch.VersionAfter)
}

func TestDeleteRange_CaretInsideAtomKeepsAtom(t *testing.T) {
	b := post.NewBuilder()
	p, err := b.Post(b.MarkupSection("p",
		b.Marker("abc"),
		b.Atom("mention", "@men", nil),
		b.Marker("def"),
	))
	require.NoError(t, err)
	id := p.Leaves()[0]
	before := p.Tree()

	// Display offset 5 is the midpoint of "@men".
	r, err := p.RangeFromTextOffsets(id, 5, id, 5)
	require.NoError(t, err)
	require.True(t, r.IsCollapsed())

	ed := post.NewEditor(p, post.Options{})
	var pos post.Position
	ch, err := ed.Run(func(e *post.Editor) error {
		var err error
		pos, err = e.DeleteRange(r)
		return err
	})
	require.NoError(t, err)

	require.Equal(t, r.Head, pos)
	require.Equal(t, "abc@mendef", p.Text(id))
	require.Equal(t, before, p.Tree())
	require.False(t, ch.Changed())
}
