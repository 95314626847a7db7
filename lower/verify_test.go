package lower

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
)

func TestVerifyFuncMissingTerminator(t *testing.T) {
	f := ir.NewFunc("f", irtypes.Void)
	f.NewBlock("entry")
	err := verifyFunc(f)
	if err == nil {
		t.Fatal("expected verification error for block without terminator")
	}
	if kind := KindOf(err); kind != VerificationFailed {
		t.Fatalf("error kind mismatch; expected %v, got %v", VerificationFailed, kind)
	}
}

func TestVerifyFuncDeclarationIsValid(t *testing.T) {
	f := ir.NewFunc("puts", irtypes.I32, ir.NewParam("s", irtypes.NewPointer(irtypes.I8)))
	if err := verifyFunc(f); err != nil {
		t.Fatalf("declaration failed verification; %v", err)
	}
}

func TestVerifyFuncReturnTypeMismatch(t *testing.T) {
	f := ir.NewFunc("f", irtypes.I32)
	entry := f.NewBlock("entry")
	entry.NewRet(nil)
	err := verifyFunc(f)
	if err == nil {
		t.Fatal("expected verification error for void return in i32 function")
	}
	if kind := KindOf(err); kind != VerificationFailed {
		t.Fatalf("error kind mismatch; expected %v, got %v", VerificationFailed, kind)
	}

	g := ir.NewFunc("g", irtypes.Void)
	entry = g.NewBlock("entry")
	entry.NewRet(constant.NewInt(irtypes.I32, 7))
	if err := verifyFunc(g); KindOf(err) != VerificationFailed {
		t.Fatalf("expected verification failure for value return in void function, got %v", err)
	}
}

func TestVerifyFuncForeignBranchTarget(t *testing.T) {
	other := ir.NewFunc("other", irtypes.Void)
	foreign := other.NewBlock("entry")
	foreign.NewRet(nil)

	f := ir.NewFunc("f", irtypes.Void)
	entry := f.NewBlock("entry")
	entry.NewBr(foreign)
	err := verifyFunc(f)
	if err == nil {
		t.Fatal("expected verification error for branch into another function")
	}
	if kind := KindOf(err); kind != VerificationFailed {
		t.Fatalf("error kind mismatch; expected %v, got %v", VerificationFailed, kind)
	}
}

func TestVerifyFuncNonBooleanCondition(t *testing.T) {
	f := ir.NewFunc("f", irtypes.Void)
	entry := f.NewBlock("entry")
	exitTrue := f.NewBlock("t")
	exitTrue.NewRet(nil)
	exitFalse := f.NewBlock("e")
	exitFalse.NewRet(nil)
	entry.NewCondBr(constant.NewInt(irtypes.I32, 1), exitTrue, exitFalse)
	err := verifyFunc(f)
	if err == nil {
		t.Fatal("expected verification error for i32 branch condition")
	}
	if kind := KindOf(err); kind != VerificationFailed {
		t.Fatalf("error kind mismatch; expected %v, got %v", VerificationFailed, kind)
	}
}

func TestVerifyModuleReportsFirstViolation(t *testing.T) {
	m := ir.NewModule()
	ok := m.NewFunc("ok", irtypes.Void)
	ok.NewBlock("entry").NewRet(nil)
	bad := m.NewFunc("bad", irtypes.Void)
	bad.NewBlock("entry")
	err := verifyModule(m)
	if kind := KindOf(err); kind != VerificationFailed {
		t.Fatalf("expected verification failure, got %v", err)
	}
}
