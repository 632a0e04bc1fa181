package postabstract

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// abstractLine is the inline part of one section line, after any list
// prefix has been cut off.
type abstractLine struct {
	Items []*abstractItem `parser:"@@*"`
}

type abstractItem struct {
	Card *string       `parser:"  @Card"`
	Mark *string       `parser:"| @Mark"`
	Atom bool          `parser:"| @At"`
	Bold *abstractSpan `parser:"| Star @@ Star"`
	Em   *abstractSpan `parser:"| Under @@ Under"`
	Text *string       `parser:"| @Text"`
}

// abstractSpan is the body of a *bold* or _em_ run. Spans do not nest.
type abstractSpan struct {
	Items []*abstractSpanItem `parser:"@@*"`
}

type abstractSpanItem struct {
	Mark *string `parser:"  @Mark"`
	Atom bool    `parser:"| @At"`
	Text *string `parser:"| @Text"`
}

var abstractLexer = lexer.MustSimple([]lexer.SimpleRule{
	// [card-name]
	{Name: "Card", Pattern: `\[[^\[\]]*\]`},
	// range head, range tail, collapsed cursor
	{Name: "Mark", Pattern: `[<>|]`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Under", Pattern: `_`},
	{Name: "At", Pattern: `@`},
	{Name: "Text", Pattern: `[^<>|*_@\[\]]+`},
})

var abstractParser = participle.MustBuild[abstractLine](
	participle.Lexer(abstractLexer),
)
