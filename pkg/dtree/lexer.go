package dtree

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TreeLexer defines the tokens of the decision tree artifact format.
var TreeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Punct", Pattern: `[{}\[\];,]`},
})
