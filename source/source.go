// Package source defines source positions carried by AST nodes and
// diagnostics.
package source

import "fmt"

// Pos is a position within a Seam source file, 1-based.
type Pos struct {
	Line uint32
	Col  uint32
}

// String returns the position in "line:col" format.
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// NoPos is the zero position, used for synthesized nodes.
var NoPos = Pos{}
