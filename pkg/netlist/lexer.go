package netlist

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// NetlistLexer tokenizes network declarations of the form
//
//	%name -> a, b, c
//
// Newlines are significant; everything after # is a comment.
var NetlistLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Prefix", Pattern: `[%&]`},
	{Name: "Ident", Pattern: `[a-zA-Z0-9_]+`},
})
