package dtree

import "github.com/alecthomas/participle/v2/lexer"

// File is the parsed form of a tree artifact.
type File struct {
	Pos lexer.Position

	Name     string `"tree" @String "{"`
	Features []int  `"features" "[" @Int ( "," @Int )* "]" ";"`
	Root     *Node  `@@ "}"`
}

// Node is either a leaf label or a split on one feature bit.
type Node struct {
	Pos lexer.Position

	Label *string `  "label" @String`
	When  *When   `| @@`
}

// When splits on the bit at Offset: Set is taken when the bit is 1.
type When struct {
	Pos lexer.Position

	Offset int   `"when" @Int "{"`
	Set    *Node `@@ "}"`
	Clear  *Node `"else" "{" @@ "}"`
}
