// Package lower lowers a resolved Seam module in AST-form to LLVM IR
// assembly. The upstream symbol-collection and type-resolution passes
// guarantee that every expression carries an evaluated type and every symbol
// reference is bound to a concrete function signature before lowering runs.
package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/rickypai/natsort"

	"github.com/LinkerScript/SeamLang/ast"
)

// Lower lowers the resolved Seam module to LLVM IR. Extern declarations are
// declared before any function body is compiled; function definitions are
// compiled in source order; a module entry routine invoking every
// constructor-tagged function in declaration order is synthesized last. The
// produced module is structurally verified before being returned.
func (gen *Generator) Lower(mod *ast.Module) (*ir.Module, error) {
	externs, defs := collectTopLevel(mod)
	for _, decl := range externs {
		if _, err := gen.getOrDeclareFunction(decl.Pos(), decl.Signature); err != nil {
			return nil, err
		}
	}
	for _, def := range defs {
		if err := gen.compileFunction(def); err != nil {
			return nil, err
		}
	}
	gen.synthesizeEntry()
	// Append type definitions to module.
	var typeNames []string
	for typeName := range gen.typeDefs {
		typeNames = append(typeNames, typeName)
	}
	natsort.Strings(typeNames)
	for _, typeName := range typeNames {
		gen.m.NewTypeDef(typeName, gen.typeDefs[typeName])
	}
	if err := verifyModule(gen.m); err != nil {
		return nil, err
	}
	return gen.m, nil
}

// collectTopLevel returns the extern declarations and function definitions of
// the module body in source order. The pass is non-recursive; nested scopes
// are not searched.
func collectTopLevel(mod *ast.Module) (externs []*ast.ExternDeclaration, defs []*ast.FunctionDefinition) {
	if mod.Body == nil {
		return nil, nil
	}
	for _, stmt := range mod.Body.List {
		switch stmt := stmt.(type) {
		case *ast.ExternDeclaration:
			externs = append(externs, stmt)
		case *ast.FunctionDefinition:
			defs = append(defs, stmt)
		}
	}
	return externs, defs
}

// synthesizeEntry appends the module entry routine: an internal, niladic,
// void function invoking every collected constructor in declaration order.
func (gen *Generator) synthesizeEntry() {
	f := gen.m.NewFunc("entry", irtypes.Void)
	f.Linkage = enum.LinkageInternal
	block := f.NewBlock("entry")
	for _, ctor := range gen.ctors {
		block.NewCall(ctor)
	}
	block.NewRet(nil)
}
