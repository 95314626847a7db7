package lower

import (
	"testing"

	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/LinkerScript/SeamLang/ast"
	"github.com/LinkerScript/SeamLang/types"
)

func boolLit(v bool) *ast.BoolLit {
	return &ast.BoolLit{Value: v, Evaluated: types.BoolType}
}

// assignStmt returns an assignment of the integer literal text to the
// variable symbol.
func assignStmt(sym *ast.VarSymbol, text string) *ast.Assign {
	return &ast.Assign{
		Target: &ast.VarRef{Symbol: sym, Evaluated: sym.Type},
		Value:  intLit(text, sym.Type),
	}
}

func block(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{List: stmts}
}

func TestLowerAssign(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	x := &ast.VarSymbol{Name: "x", Type: types.I32Type, ParamIndex: -1}
	if err := fgen.lowerStmt(assignStmt(x, "42")); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	insts := fgen.cur.Insts
	if len(insts) == 0 {
		t.Fatal("assignment emitted no instructions")
	}
	store, ok := insts[len(insts)-1].(*ir.InstStore)
	if !ok {
		t.Fatalf("final instruction is %T, want store", insts[len(insts)-1])
	}
	if _, ok := store.Dst.(*ir.InstAlloca); !ok {
		t.Errorf("store destination is %T, want storage slot", store.Dst)
	}
}

func TestLowerAssignLoadsThroughSourceSlot(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	x := &ast.VarSymbol{Name: "x", Type: types.I32Type, ParamIndex: -1}
	y := &ast.VarSymbol{Name: "y", Type: types.I32Type, ParamIndex: -1}
	stmt := &ast.Assign{
		Target: &ast.VarRef{Symbol: x, Evaluated: types.I32Type},
		Value:  &ast.VarRef{Symbol: y, Evaluated: types.I32Type},
	}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	insts := fgen.cur.Insts
	store := insts[len(insts)-1].(*ir.InstStore)
	if _, ok := store.Src.(*ir.InstLoad); !ok {
		t.Errorf("store source is %T, want value loaded through the source slot", store.Src)
	}
}

func TestLowerIfWithoutElse(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	x := &ast.VarSymbol{Name: "x", Type: types.I32Type, ParamIndex: -1}
	stmt := &ast.If{
		Cond: boolLit(true),
		Then: block(assignStmt(x, "1")),
	}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	blocks := fgen.f.Blocks
	if len(blocks) != 3 {
		t.Fatalf("function has %d blocks, want entry, then, end", len(blocks))
	}
	entry, then, end := blocks[0], blocks[1], blocks[2]
	br, ok := entry.Term.(*ir.TermCondBr)
	if !ok {
		t.Fatalf("origin block ends in %T, want conditional branch", entry.Term)
	}
	if br.TargetTrue != then || br.TargetFalse != end {
		t.Error("conditional branch does not wire then/end from the origin block")
	}
	thenBr, ok := then.Term.(*ir.TermBr)
	if !ok {
		t.Fatalf("then block ends in %T, want unconditional branch", then.Term)
	}
	if thenBr.Target != end {
		t.Error("then arm does not branch to the end block")
	}
	if fgen.cur != end {
		t.Error("insertion point is not at the end block")
	}
}

func TestLowerIfElseLowersElseBody(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	x := &ast.VarSymbol{Name: "x", Type: types.I32Type, ParamIndex: -1}
	stmt := &ast.If{
		Cond: boolLit(true),
		Then: block(),
		Else: block(assignStmt(x, "2")),
	}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	blocks := fgen.f.Blocks
	if len(blocks) != 4 {
		t.Fatalf("function has %d blocks, want entry, then, else, end", len(blocks))
	}
	then, elseBlk, end := blocks[1], blocks[2], blocks[3]
	if len(then.Insts) != 0 {
		t.Errorf("empty then arm emitted %d instructions", len(then.Insts))
	}
	var stores int
	for _, inst := range elseBlk.Insts {
		if _, ok := inst.(*ir.InstStore); ok {
			stores++
		}
	}
	if stores != 1 {
		t.Errorf("else arm emitted %d stores, want the else body's single store", stores)
	}
	br := blocks[0].Term.(*ir.TermCondBr)
	if br.TargetTrue != then || br.TargetFalse != elseBlk {
		t.Error("conditional branch does not wire then/else from the origin block")
	}
	if elseBlk.Term.(*ir.TermBr).Target != end {
		t.Error("else arm does not branch to the end block")
	}
}

func TestLowerIfArmWithReturnAppendsNoBranch(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	stmt := &ast.If{
		Cond: boolLit(true),
		Then: block(&ast.Return{}),
	}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	then := fgen.f.Blocks[1]
	if _, ok := then.Term.(*ir.TermRet); !ok {
		t.Fatalf("then arm ends in %T, want its return, not a patched branch", then.Term)
	}
}

func TestLowerWhile(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	x := &ast.VarSymbol{Name: "x", Type: types.I32Type, ParamIndex: -1}
	stmt := &ast.While{
		Cond: &ast.Binary{
			Op:        ast.OpLt,
			Left:      &ast.VarRef{Symbol: x, Evaluated: types.I32Type},
			Right:     intLit("10", types.I32Type),
			Evaluated: types.BoolType,
		},
		Body: block(assignStmt(x, "0")),
	}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	blocks := fgen.f.Blocks
	if len(blocks) != 4 {
		t.Fatalf("function has %d blocks, want entry, head, body, end", len(blocks))
	}
	entry, head, body, end := blocks[0], blocks[1], blocks[2], blocks[3]
	if entry.Term.(*ir.TermBr).Target != head {
		t.Error("pre-loop block does not branch into the loop head")
	}
	// Header-tested: the condition is evaluated in the head before any
	// iteration of the body.
	if len(head.Insts) == 0 {
		t.Error("loop head holds no condition evaluation")
	}
	br, ok := head.Term.(*ir.TermCondBr)
	if !ok {
		t.Fatalf("loop head ends in %T, want conditional branch", head.Term)
	}
	if br.TargetTrue != body || br.TargetFalse != end {
		t.Error("loop head does not branch to body/end")
	}
	if body.Term.(*ir.TermBr).Target != head {
		t.Error("loop body does not branch back to the head")
	}
	if fgen.cur != end {
		t.Error("insertion point is not at the end block")
	}
}

func TestLowerWhileBodyReturnSkipsBackBranch(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	stmt := &ast.While{
		Cond: boolLit(true),
		Body: block(&ast.Return{}),
	}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	body := fgen.f.Blocks[2]
	if _, ok := body.Term.(*ir.TermRet); !ok {
		t.Errorf("loop body ends in %T, want its return, not a back branch", body.Term)
	}
}

func TestLowerReturnLoadsThroughSlot(t *testing.T) {
	gen := newTestGen(t)
	f := gen.m.NewFunc("ret32", irtypes.I32)
	fgen := gen.newFuncGen(f)
	fgen.cur = f.NewBlock("entry")
	x := &ast.VarSymbol{Name: "x", Type: types.I32Type, ParamIndex: -1}
	stmt := &ast.Return{Value: &ast.VarRef{Symbol: x, Evaluated: types.I32Type}}
	if err := fgen.lowerStmt(stmt); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	ret, ok := fgen.cur.Term.(*ir.TermRet)
	if !ok {
		t.Fatalf("block ends in %T, want return", fgen.cur.Term)
	}
	if _, ok := ret.X.(*ir.InstLoad); !ok {
		t.Errorf("return value is %T, want value loaded through the slot", ret.X)
	}
}

func TestLowerReturnVoid(t *testing.T) {
	gen := newTestGen(t)
	fgen := newTestFuncGen(t, gen)
	if err := fgen.lowerStmt(&ast.Return{}); err != nil {
		t.Fatalf("lowerStmt: %v", err)
	}
	ret, ok := fgen.cur.Term.(*ir.TermRet)
	if !ok {
		t.Fatalf("block ends in %T, want return", fgen.cur.Term)
	}
	if ret.X != nil {
		t.Errorf("void return carries value %v", ret.X)
	}
}
