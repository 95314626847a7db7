package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/LinkerScript/SeamLang/ast"
)

// funcGen is an LLVM IR generator for a given function. It owns the
// per-function variable storage map and the current basic block, which acts
// as the builder insertion point for statement and expression lowering.
type funcGen struct {
	// Module generator.
	gen *Generator
	// LLVM IR function being generated.
	f *ir.Func
	// Current basic block being generated.
	cur *ir.Block
	// locals maps from resolved variable symbol to its storage slot in the
	// entry block. Created empty at function entry, discarded when the
	// function's lowering finishes.
	locals map[*ast.VarSymbol]*ir.InstAlloca
	// Number of control-flow blocks created so far, used for block naming.
	blockID int
}

// newFuncGen returns a new LLVM IR function generator for the given module
// generator and function.
func (gen *Generator) newFuncGen(f *ir.Func) *funcGen {
	return &funcGen{
		gen:    gen,
		f:      f,
		locals: make(map[*ast.VarSymbol]*ir.InstAlloca),
	}
}

// newBlock appends a new basic block with a unique name derived from the
// given prefix.
func (fgen *funcGen) newBlock(prefix string) *ir.Block {
	fgen.blockID++
	return fgen.f.NewBlock(fmt.Sprintf("%s%d", prefix, fgen.blockID))
}

// hoistLocals pre-allocates entry-block storage for every variable referenced
// by the function body, in first-reference order, so that loops and branches
// never allocate storage conditionally. Parameters additionally have their
// incoming value stored to their slot.
func (fgen *funcGen) hoistLocals(body *ast.Block) error {
	for _, ref := range collectVarRefs(body) {
		sym := ref.Symbol
		if _, ok := fgen.locals[sym]; ok {
			continue
		}
		t, err := fgen.gen.irType(ref.Pos(), sym.Type)
		if err != nil {
			return err
		}
		slot := fgen.cur.NewAlloca(t)
		fgen.locals[sym] = slot
		if sym.ParamIndex >= 0 && sym.ParamIndex < len(fgen.f.Params) {
			fgen.cur.NewStore(fgen.f.Params[sym.ParamIndex], slot)
		}
	}
	return nil
}

// collectVarRefs returns the variable references of the statement subtree in
// depth-first source order.
func collectVarRefs(stmt ast.Stmt) []*ast.VarRef {
	var refs []*ast.VarRef
	walkStmt(stmt, func(expr ast.Expr) {
		if ref, ok := expr.(*ast.VarRef); ok {
			refs = append(refs, ref)
		}
	})
	return refs
}

// walkStmt calls visit for every expression of the statement subtree in
// depth-first source order.
func walkStmt(stmt ast.Stmt, visit func(ast.Expr)) {
	switch stmt := stmt.(type) {
	case *ast.Block:
		for _, s := range stmt.List {
			walkStmt(s, visit)
		}
	case *ast.ExprStmt:
		walkExpr(stmt.X, visit)
	case *ast.Assign:
		walkExpr(stmt.Target, visit)
		walkExpr(stmt.Value, visit)
	case *ast.If:
		walkExpr(stmt.Cond, visit)
		walkStmt(stmt.Then, visit)
		if stmt.Else != nil {
			walkStmt(stmt.Else, visit)
		}
	case *ast.While:
		walkExpr(stmt.Cond, visit)
		walkStmt(stmt.Body, visit)
	case *ast.Return:
		if stmt.Value != nil {
			walkExpr(stmt.Value, visit)
		}
	}
}

// walkExpr calls visit for every expression of the expression subtree in
// depth-first source order.
func walkExpr(expr ast.Expr, visit func(ast.Expr)) {
	visit(expr)
	switch expr := expr.(type) {
	case *ast.Call:
		walkExpr(expr.Callee, visit)
		for _, arg := range expr.Args {
			walkExpr(arg, visit)
		}
	case *ast.Binary:
		walkExpr(expr.Left, visit)
		walkExpr(expr.Right, visit)
	}
}

// removeBlock detaches the given basic block from the function's block list.
func (fgen *funcGen) removeBlock(block *ir.Block) {
	for i, b := range fgen.f.Blocks {
		if b == block {
			fgen.f.Blocks = append(fgen.f.Blocks[:i], fgen.f.Blocks[i+1:]...)
			return
		}
	}
}

// rvalue loads through v if it denotes a storage slot rather than a plain
// value.
func (fgen *funcGen) rvalue(v value.Value) value.Value {
	if slot, ok := v.(*ir.InstAlloca); ok {
		return fgen.cur.NewLoad(slot.ElemType, slot)
	}
	return v
}
