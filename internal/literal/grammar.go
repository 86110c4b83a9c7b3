// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package literal parses and formats typed variant literals such as
//
//	VariantMap { speed: Float "2.5", tags: StringVector ["a", "b"] }
//
// Every literal starts with a type name. Scalars carry their text form as
// a quoted string, VariantVector and StringVector carry a bracketed list,
// and VariantMap carries a braced set of key/value pairs. Keys are bare
// identifiers, quoted strings or "#" followed by an eight digit hex hash.
package literal

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var literalLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Hash", Pattern: `#[0-9a-fA-F]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][\w.]*`},
	{Name: "Punct", Pattern: `[\[\]{},:]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Value is one typed literal.
//
// Grammar: type [ string | list | map ]
type Value struct {
	Pos  lexer.Position `parser:""`
	Type string         `parser:"@Ident"`
	Text *string        `parser:"( @String"`
	List *List          `parser:"| @@"`
	Map  *MapBody       `parser:"| @@ )?"`
}

// List is a bracketed, comma-separated sequence of elements.
type List struct {
	Pos      lexer.Position `parser:""`
	Elements []*Element     `parser:"'[' ( @@ ( ',' @@ )* )? ']'"`
}

// Element is a list member: a bare string inside StringVector or a typed
// value inside VariantVector.
type Element struct {
	Pos   lexer.Position `parser:""`
	Str   *string        `parser:"  @String"`
	Value *Value         `parser:"| @@"`
}

// MapBody is a braced, comma-separated set of entries.
type MapBody struct {
	Pos     lexer.Position `parser:""`
	Entries []*Entry       `parser:"'{' ( @@ ( ',' @@ )* )? '}'"`
}

// Entry is one key/value pair of a VariantMap literal.
type Entry struct {
	Pos   lexer.Position `parser:""`
	Key   string         `parser:"( @Ident | @String | @Hash ) ':'"`
	Value *Value         `parser:"@@"`
}

// NewParser constructs a participle parser for the literal grammar.
func NewParser() (*participle.Parser[Value], error) {
	return participle.Build[Value](
		participle.Lexer(literalLexer),
		participle.Unquote("String"),
	)
}
