package lower

import (
	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/LinkerScript/SeamLang/source"
)

// verifyModule runs structural verification over every function of the
// module. The first violation is reported as a VerificationFailed error.
func verifyModule(m *ir.Module) error {
	for _, f := range m.Funcs {
		if err := verifyFunc(f); err != nil {
			return err
		}
	}
	return nil
}

// verifyFunc checks the structural invariants of the given function: every
// basic block ends in exactly one terminator, branch targets belong to the
// function, and return instructions agree with the declared return type.
// Declarations, which carry no blocks, are vacuously valid.
func verifyFunc(f *ir.Func) error {
	blocks := make(map[*ir.Block]bool, len(f.Blocks))
	for _, block := range f.Blocks {
		blocks[block] = true
	}
	for i, block := range f.Blocks {
		if block.Term == nil {
			return icef(VerificationFailed, source.NoPos, "block %d of function %q lacks a terminator", i, f.Name())
		}
		switch term := block.Term.(type) {
		case *ir.TermBr:
			if !isLocalBlock(blocks, term.Target) {
				return icef(VerificationFailed, source.NoPos, "block %d of function %q branches to a foreign block", i, f.Name())
			}
		case *ir.TermCondBr:
			if !irtypes.Equal(term.Cond.Type(), irtypes.I1) {
				return icef(VerificationFailed, source.NoPos, "block %d of function %q has a non-boolean branch condition of type %v", i, f.Name(), term.Cond.Type())
			}
			if !isLocalBlock(blocks, term.TargetTrue) || !isLocalBlock(blocks, term.TargetFalse) {
				return icef(VerificationFailed, source.NoPos, "block %d of function %q branches to a foreign block", i, f.Name())
			}
		case *ir.TermRet:
			if term.X == nil {
				if !irtypes.Equal(f.Sig.RetType, irtypes.Void) {
					return icef(VerificationFailed, source.NoPos, "void return in non-void function %q", f.Name())
				}
			} else if !irtypes.Equal(term.X.Type(), f.Sig.RetType) {
				return icef(VerificationFailed, source.NoPos, "return of type %v in function %q returning %v", term.X.Type(), f.Name(), f.Sig.RetType)
			}
		default:
			return icef(VerificationFailed, source.NoPos, "block %d of function %q ends in unsupported terminator %T", i, f.Name(), term)
		}
	}
	return nil
}

// isLocalBlock reports whether the branch target is a basic block of the
// enclosing function.
func isLocalBlock(blocks map[*ir.Block]bool, target value.Value) bool {
	block, ok := target.(*ir.Block)
	return ok && blocks[block]
}
