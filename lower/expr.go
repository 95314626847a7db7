package lower

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/LinkerScript/SeamLang/ast"
	"github.com/LinkerScript/SeamLang/types"
)

// lowerExpr lowers the Seam expression to LLVM IR, emitting to f.
func (fgen *funcGen) lowerExpr(expr ast.Expr) (value.Value, error) {
	switch expr := expr.(type) {
	case *ast.SymbolRef:
		return fgen.lowerSymbolRef(expr)
	case *ast.Call:
		return fgen.lowerCall(expr)
	case *ast.BoolLit:
		return constant.NewBool(expr.Value), nil
	case *ast.NumberLit:
		return fgen.lowerNumberLit(expr)
	case *ast.StringLit:
		return fgen.lowerStringLit(expr)
	case *ast.VarRef:
		return fgen.lowerVarRef(expr)
	case *ast.Binary:
		return fgen.lowerBinary(expr)
	default:
		panic(fmt.Errorf("support for expression %T not yet implemented", expr))
	}
}

// lowerSymbolRef lowers the Seam symbol reference to LLVM IR. The upstream
// resolution pass binds symbol references to function signatures only.
func (fgen *funcGen) lowerSymbolRef(expr *ast.SymbolRef) (value.Value, error) {
	return fgen.gen.getOrDeclareFunction(expr.Pos(), expr.Signature)
}

// lowerCall lowers the Seam call expression to LLVM IR, emitting to f.
// Arguments are lowered left to right and passed in order, with no coercion
// toward the parameter types.
func (fgen *funcGen) lowerCall(expr *ast.Call) (value.Value, error) {
	callee, err := fgen.lowerExpr(expr.Callee)
	if err != nil {
		return nil, err
	}
	f, ok := callee.(*ir.Func)
	if !ok {
		return nil, icef(ExpectedCallableValue, expr.Pos(), "expected function for call, got %T", callee)
	}
	args := make([]value.Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		v, err := fgen.lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, fgen.rvalue(v))
	}
	return fgen.cur.NewCall(f, args...), nil
}

// lowerNumberLit lowers the Seam numeric literal to LLVM IR. Integral
// literals materialize at the width of the literal's evaluated type; floating
// literals as float or double for f32 and f64.
func (fgen *funcGen) lowerNumberLit(expr *ast.NumberLit) (value.Value, error) {
	t, ok := expr.Type().(*types.Builtin)
	if !ok {
		return nil, icef(UnknownNumericType, expr.Pos(), "unknown numeric type %v for literal %q", expr.Type(), expr.Value)
	}
	switch {
	case !expr.IsFloat && t.K.Integer():
		x, err := constant.NewIntFromString(irtypes.NewInt(t.K.BitSize()), expr.Value)
		if err != nil {
			return nil, icef(UnknownNumericType, expr.Pos(), "unable to parse integer literal %q: %v", expr.Value, err)
		}
		return x, nil
	case expr.IsFloat && t.K == types.F32:
		return fgen.floatLit(irtypes.Float, expr)
	case expr.IsFloat && t.K == types.F64:
		return fgen.floatLit(irtypes.Double, expr)
	default:
		return nil, icef(UnknownNumericType, expr.Pos(), "unknown numeric type %s for literal %q", t, expr.Value)
	}
}

// floatLit materializes the floating literal as a constant of the given
// floating-point type.
func (fgen *funcGen) floatLit(t *irtypes.FloatType, expr *ast.NumberLit) (value.Value, error) {
	x, err := constant.NewFloatFromString(t, expr.Value)
	if err != nil {
		return nil, icef(UnknownNumericType, expr.Pos(), "unable to parse floating-point literal %q: %v", expr.Value, err)
	}
	return x, nil
}

// lowerStringLit lowers the Seam string literal to LLVM IR: a private global
// character array and a {size, data pointer} aggregate constant referencing
// it.
func (fgen *funcGen) lowerStringLit(expr *ast.StringLit) (value.Value, error) {
	gen := fgen.gen
	strType := gen.stringType()
	data := constant.NewCharArrayFromString(expr.Value)
	gen.strCount++
	g := gen.m.NewGlobalDef(fmt.Sprintf(".str.%d", gen.strCount), data)
	g.Linkage = enum.LinkagePrivate
	g.Immutable = true
	length, err := safecast.Conv[int64](len(expr.Value))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var (
		zero    = constant.NewInt(irtypes.I32, 0)
		dataPtr = constant.NewGetElementPtr(data.Typ, g, zero, zero)
		size    = constant.NewInt(irtypes.NewInt(gen.wordSize), length)
	)
	return constant.NewStruct(strType, size, dataPtr), nil
}

// lowerVarRef lowers the Seam variable reference to LLVM IR, yielding the
// variable's storage slot. Callers decide whether they need the slot itself,
// for storing into, or its loaded value.
func (fgen *funcGen) lowerVarRef(expr *ast.VarRef) (value.Value, error) {
	if slot, ok := fgen.locals[expr.Symbol]; ok {
		return slot, nil
	}
	// Storage is hoisted to the entry block before body lowering; this path
	// covers symbols the hoisting prepass did not see.
	t, err := fgen.gen.irType(expr.Pos(), expr.Symbol.Type)
	if err != nil {
		return nil, err
	}
	slot := fgen.allocaInEntry(t)
	fgen.locals[expr.Symbol] = slot
	return slot, nil
}

// allocaInEntry allocates a storage slot of the given type at the start of
// the function's entry block.
func (fgen *funcGen) allocaInEntry(t irtypes.Type) *ir.InstAlloca {
	entry := fgen.f.Blocks[0]
	slot := ir.NewAlloca(t)
	entry.Insts = append([]ir.Instruction{slot}, entry.Insts...)
	return slot
}

// lowerBinary lowers the Seam binary expression to LLVM IR, emitting to f.
// The integer-vs-floating choice derives from the lowered operand type and
// the signed-vs-unsigned choice from the operand's evaluated Seam type.
func (fgen *funcGen) lowerBinary(expr *ast.Binary) (value.Value, error) {
	x, err := fgen.lowerExpr(expr.Left)
	if err != nil {
		return nil, err
	}
	x = fgen.rvalue(x)
	y, err := fgen.lowerExpr(expr.Right)
	if err != nil {
		return nil, err
	}
	y = fgen.rvalue(y)
	var (
		float    = isFloatType(x.Type())
		unsigned = isUnsignedOperand(expr.Left)
	)
	switch expr.Op {
	case ast.OpAdd:
		if float {
			return fgen.cur.NewFAdd(x, y), nil
		}
		return fgen.cur.NewAdd(x, y), nil
	case ast.OpSub:
		if float {
			return fgen.cur.NewFSub(x, y), nil
		}
		return fgen.cur.NewSub(x, y), nil
	case ast.OpMul:
		if float {
			return fgen.cur.NewFMul(x, y), nil
		}
		return fgen.cur.NewMul(x, y), nil
	case ast.OpDiv:
		switch {
		case float:
			return fgen.cur.NewFDiv(x, y), nil
		case unsigned:
			return fgen.cur.NewUDiv(x, y), nil
		default:
			return fgen.cur.NewSDiv(x, y), nil
		}
	case ast.OpEq:
		if float {
			return fgen.cur.NewFCmp(enum.FPredOEQ, x, y), nil
		}
		return fgen.cur.NewICmp(enum.IPredEQ, x, y), nil
	case ast.OpNe:
		if float {
			return fgen.cur.NewFCmp(enum.FPredONE, x, y), nil
		}
		return fgen.cur.NewICmp(enum.IPredNE, x, y), nil
	case ast.OpLt:
		return fgen.cmp(enum.FPredOLT, enum.IPredULT, enum.IPredSLT, float, unsigned, x, y), nil
	case ast.OpLe:
		return fgen.cmp(enum.FPredOLE, enum.IPredULE, enum.IPredSLE, float, unsigned, x, y), nil
	case ast.OpGt:
		return fgen.cmp(enum.FPredOGT, enum.IPredUGT, enum.IPredSGT, float, unsigned, x, y), nil
	case ast.OpGe:
		return fgen.cmp(enum.FPredOGE, enum.IPredUGE, enum.IPredSGE, float, unsigned, x, y), nil
	default:
		return nil, icef(InvalidBinaryOperation, expr.Pos(), "invalid binary operation %s", expr.Op)
	}
}

// cmp emits a relational comparison, selecting the predicate by operand
// class.
func (fgen *funcGen) cmp(fpred enum.FPred, upred, spred enum.IPred, float, unsigned bool, x, y value.Value) value.Value {
	switch {
	case float:
		return fgen.cur.NewFCmp(fpred, x, y)
	case unsigned:
		return fgen.cur.NewICmp(upred, x, y)
	default:
		return fgen.cur.NewICmp(spred, x, y)
	}
}

// ### [ Helper functions ] ####################################################

// isFloatType reports whether the given type is a floating-point scalar type.
func isFloatType(t irtypes.Type) bool {
	_, ok := t.(*irtypes.FloatType)
	return ok
}

// isUnsignedOperand reports whether the operand's evaluated Seam type is an
// unsigned integer type.
func isUnsignedOperand(expr ast.Expr) bool {
	if t, ok := expr.Type().(*types.Builtin); ok {
		return t.K.Unsigned()
	}
	return false
}
