package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/LinkerScript/SeamLang/ast"
)

// lowerStmt lowers the Seam statement to LLVM IR, emitting to f. Each
// statement leaves the insertion point at a single successor block that
// dominates all following statements, and every block holds exactly one
// terminator before the insertion point moves away from it.
func (fgen *funcGen) lowerStmt(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.Block:
		return fgen.lowerBlock(stmt)
	case *ast.ExprStmt:
		_, err := fgen.lowerExpr(stmt.X)
		return err
	case *ast.Assign:
		return fgen.lowerAssign(stmt)
	case *ast.If:
		return fgen.lowerIf(stmt)
	case *ast.While:
		return fgen.lowerWhile(stmt)
	case *ast.Return:
		return fgen.lowerReturn(stmt)
	default:
		panic(fmt.Errorf("support for statement %T not yet implemented", stmt))
	}
}

// lowerBlock lowers the Seam block statement to LLVM IR. Blocks are
// structural wrappers; the traversal continues into their children.
func (fgen *funcGen) lowerBlock(block *ast.Block) error {
	for _, stmt := range block.List {
		if err := fgen.lowerStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// lowerAssign lowers the Seam assignment to LLVM IR, emitting to f. The
// destination lowers to a storage slot; the source is loaded through first if
// it denotes a storage slot itself.
func (fgen *funcGen) lowerAssign(stmt *ast.Assign) error {
	dst, err := fgen.lowerExpr(stmt.Target)
	if err != nil {
		return err
	}
	src, err := fgen.lowerExpr(stmt.Value)
	if err != nil {
		return err
	}
	fgen.cur.NewStore(fgen.rvalue(src), dst)
	return nil
}

// lowerIf lowers the Seam if statement to LLVM IR, emitting to f. Each arm
// branches to the end block only if the block it finishes in lacks a
// terminator, so early returns inside an arm append no dead branch. An end
// block no branch reaches is removed from the function again.
func (fgen *funcGen) lowerIf(stmt *ast.If) error {
	cond, err := fgen.lowerExpr(stmt.Cond)
	if err != nil {
		return err
	}
	cond = fgen.rvalue(cond)
	origin := fgen.cur
	thenBlk := fgen.newBlock("if.then")
	var elseBlk *ir.Block
	if stmt.Else != nil {
		elseBlk = fgen.newBlock("if.else")
	}
	endBlk := fgen.newBlock("if.end")
	onFalse := endBlk
	if elseBlk != nil {
		onFalse = elseBlk
	}
	endReached := false
	if origin.Term == nil {
		origin.NewCondBr(cond, thenBlk, onFalse)
		endReached = onFalse == endBlk
	}
	fgen.cur = thenBlk
	if err := fgen.lowerBlock(stmt.Then); err != nil {
		return err
	}
	if fgen.cur.Term == nil {
		fgen.cur.NewBr(endBlk)
		endReached = true
	}
	if elseBlk != nil {
		fgen.cur = elseBlk
		if err := fgen.lowerBlock(stmt.Else); err != nil {
			return err
		}
		if fgen.cur.Term == nil {
			fgen.cur.NewBr(endBlk)
			endReached = true
		}
	}
	// Both arms exited the function; the end block has no predecessors and
	// would be left without a terminator.
	if !endReached {
		fgen.removeBlock(endBlk)
	}
	fgen.cur = endBlk
	return nil
}

// lowerWhile lowers the Seam while loop to LLVM IR, emitting to f. The loop
// is header-tested: the condition is re-evaluated in the head block before
// every iteration, and the body branches back to the head unless it already
// exited.
func (fgen *funcGen) lowerWhile(stmt *ast.While) error {
	headBlk := fgen.newBlock("while.head")
	bodyBlk := fgen.newBlock("while.body")
	endBlk := fgen.newBlock("while.end")
	// A while loop may follow an unconditional branch; enter the head only
	// from a live block.
	if fgen.cur.Term == nil {
		fgen.cur.NewBr(headBlk)
	}
	fgen.cur = headBlk
	cond, err := fgen.lowerExpr(stmt.Cond)
	if err != nil {
		return err
	}
	fgen.cur.NewCondBr(fgen.rvalue(cond), bodyBlk, endBlk)
	fgen.cur = bodyBlk
	if err := fgen.lowerBlock(stmt.Body); err != nil {
		return err
	}
	if fgen.cur.Term == nil {
		fgen.cur.NewBr(headBlk)
	}
	fgen.cur = endBlk
	return nil
}

// lowerReturn lowers the Seam return statement to LLVM IR, emitting to f.
func (fgen *funcGen) lowerReturn(stmt *ast.Return) error {
	if stmt.Value == nil {
		fgen.cur.NewRet(nil)
		return nil
	}
	v, err := fgen.lowerExpr(stmt.Value)
	if err != nil {
		return err
	}
	fgen.cur.NewRet(fgen.rvalue(v))
	return nil
}
