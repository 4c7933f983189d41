// Package srcloc holds the source-location value anchoring every effect,
// block, and declaration the scanner emits.
package srcloc

import (
	"fmt"
	"go/ast"
	"go/token"
)

// SrcLoc anchors an emitted item to a line/column range in a source file. It is
// produced from an AST node via the parser bridge (FromNode) and never
// synthesized by the policy engine.
type SrcLoc struct {
	File       string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// FromNode derives a SrcLoc from any AST node's position range.
func FromNode(fset *token.FileSet, file string, n ast.Node) SrcLoc {
	start := fset.Position(n.Pos())
	end := fset.Position(n.End())
	return SrcLoc{
		File:      file,
		StartLine: start.Line,
		StartCol:  start.Column,
		EndLine:   end.Line,
		EndCol:    end.Column,
	}
}

// String renders a SrcLoc as "file:startLine:startCol-endLine:endCol".
func (l SrcLoc) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.StartLine, l.StartCol, l.EndLine, l.EndCol)
}

// Lines returns the inclusive count of source lines spanned, used by the
// LoC tracker for coverage reporting.
func (l SrcLoc) Lines() int {
	if l.EndLine < l.StartLine {
		return 0
	}
	return l.EndLine - l.StartLine + 1
}
