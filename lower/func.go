package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/LinkerScript/SeamLang/ast"
	"github.com/LinkerScript/SeamLang/source"
)

// === [ Function signature cache ] ============================================

// irFuncType returns the LLVM IR function type of the given Seam function
// signature, memoized by mangled name. On a cache hit the cached type is
// returned unconditionally; mangled-name injectivity over distinct signatures
// is owned by the upstream resolver.
func (gen *Generator) irFuncType(pos source.Pos, sig *ast.FunctionSignature) (*irtypes.FuncType, error) {
	if t, ok := gen.funcTypes[sig.MangledName]; ok {
		return t, nil
	}
	retType, err := gen.irType(pos, sig.Return)
	if err != nil {
		return nil, err
	}
	if !isValidReturnType(retType) {
		return nil, icef(InvalidReturnType, pos, "invalid return type %v of function %q", retType, sig.Name)
	}
	var paramTypes []irtypes.Type
	for _, param := range sig.Params {
		paramType, err := gen.irType(pos, param.Type)
		if err != nil {
			return nil, err
		}
		if !isValidArgumentType(paramType) {
			return nil, icef(InvalidParameterType, pos, "invalid type %v of parameter %q of function %q", paramType, param.Name, sig.Name)
		}
		paramTypes = append(paramTypes, paramType)
	}
	// Seam functions are never variadic.
	t := irtypes.NewFunc(retType, paramTypes...)
	gen.funcTypes[sig.MangledName] = t
	return t, nil
}

// isValidReturnType reports whether the given type is structurally legal as a
// function return type. Functions cannot be returned by value.
func isValidReturnType(t irtypes.Type) bool {
	_, ok := t.(*irtypes.FuncType)
	return !ok
}

// isValidArgumentType reports whether the given type is structurally legal as
// a function argument type. Arguments must be first-class values.
func isValidArgumentType(t irtypes.Type) bool {
	switch t.(type) {
	case *irtypes.VoidType, *irtypes.FuncType:
		return false
	}
	return true
}

// === [ Function registry ] ===================================================

// getOrDeclareFunction returns the IR function for the given signature,
// declaring it on first request. Extern signatures are visible under their
// plain name with external linkage; all other functions under their mangled
// name with internal linkage. Repeated calls with the same visible name
// return the same object.
func (gen *Generator) getOrDeclareFunction(pos source.Pos, sig *ast.FunctionSignature) (*ir.Func, error) {
	name := sig.VisibleName()
	if f, ok := gen.funcs[name]; ok {
		return f, nil
	}
	t, err := gen.irFuncType(pos, sig)
	if err != nil {
		return nil, err
	}
	params := make([]*ir.Param, 0, len(sig.Params))
	for i, param := range sig.Params {
		params = append(params, ir.NewParam(param.Name, t.Params[i]))
	}
	f := gen.m.NewFunc(name, t.RetType, params...)
	if sig.IsExtern {
		f.Linkage = enum.LinkageExternal
	} else {
		f.Linkage = enum.LinkageInternal
	}
	gen.funcs[name] = f
	return f, nil
}

// === [ Function compilation ] ================================================

// compileFunction lowers the body of the given Seam function definition,
// emitting to the IR function declared for its signature.
func (gen *Generator) compileFunction(def *ast.FunctionDefinition) error {
	f, err := gen.getOrDeclareFunction(def.Pos(), def.Signature)
	if err != nil {
		return err
	}
	fgen := gen.newFuncGen(f)
	fgen.cur = f.NewBlock("entry")
	if err := fgen.hoistLocals(def.Body); err != nil {
		return err
	}
	if err := fgen.lowerBlock(def.Body); err != nil {
		return err
	}
	// Void functions fall off the end of their body; seal the final block
	// with an implicit void return.
	if fgen.cur.Term == nil && irtypes.Equal(f.Sig.RetType, irtypes.Void) {
		fgen.cur.NewRet(nil)
	}
	if def.Signature.HasAttribute(ast.AttrConstructor) {
		gen.ctors = append(gen.ctors, f)
	}
	return nil
}
