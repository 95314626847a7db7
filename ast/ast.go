// Package ast defines the resolved Seam abstract syntax tree consumed by the
// backend. The upstream resolution pass guarantees that every expression
// carries an evaluated type, every symbol reference a bound function
// signature and every variable reference a bound variable symbol; the backend
// trusts that contract without re-validating it.
package ast

import (
	"github.com/LinkerScript/SeamLang/source"
	"github.com/LinkerScript/SeamLang/types"
)

// Node is the common interface of all AST nodes.
type Node interface {
	// Pos returns the source position of the node.
	Pos() source.Pos
}

// Stmt is a Seam statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a Seam expression node. Type returns the evaluated type annotated
// by the upstream resolution pass.
type Expr interface {
	Node
	Type() types.Type
}

// === [ Signatures and symbols ] ==============================================

// Param is a single parameter of a function signature.
type Param struct {
	Name string
	Type types.Type
}

// FunctionSignature describes a Seam function. The mangled name is unique per
// overload and is the only cache key used by the backend; injectivity over
// distinct signatures is owned by the upstream resolver.
type FunctionSignature struct {
	Name        string
	MangledName string
	Params      []Param
	Return      types.Type
	IsExtern    bool
	Attributes  []string
}

// AttrConstructor marks a function to run automatically from the synthesized
// module entry routine, in declaration order.
const AttrConstructor = "constructor"

// HasAttribute reports whether the signature carries the given attribute.
func (sig *FunctionSignature) HasAttribute(name string) bool {
	for _, attr := range sig.Attributes {
		if attr == name {
			return true
		}
	}
	return false
}

// VisibleName returns the name under which the function is visible to the
// backend module: the plain name for extern functions, the mangled name
// otherwise.
func (sig *FunctionSignature) VisibleName() string {
	if sig.IsExtern {
		return sig.Name
	}
	return sig.MangledName
}

// VarSymbol identifies a local variable or parameter within a function. The
// resolver binds every reference to one symbol; the backend keys variable
// storage by symbol identity.
type VarSymbol struct {
	Name string
	Type types.Type
	// ParamIndex is the zero-based parameter position, or -1 for locals.
	ParamIndex int
}

// === [ Module and statements ] ===============================================

// Module is the root of a translation unit.
type Module struct {
	Name string
	Body *Block
}

// Block is a brace-delimited statement list. It is a structural wrapper and
// carries no code-generation behavior of its own.
type Block struct {
	Position source.Pos
	List     []Stmt
}

func (s *Block) Pos() source.Pos { return s.Position }
func (s *Block) stmtNode()       {}

// FunctionDefinition is a top-level function with a body.
type FunctionDefinition struct {
	Position  source.Pos
	Signature *FunctionSignature
	Body      *Block
}

func (s *FunctionDefinition) Pos() source.Pos { return s.Position }
func (s *FunctionDefinition) stmtNode()       {}

// ExternDeclaration is a top-level extern function declaration without a
// body.
type ExternDeclaration struct {
	Position  source.Pos
	Signature *FunctionSignature
}

func (s *ExternDeclaration) Pos() source.Pos { return s.Position }
func (s *ExternDeclaration) stmtNode()       {}

// ExprStmt is a bare expression evaluated for its side effects.
type ExprStmt struct {
	Position source.Pos
	X        Expr
}

func (s *ExprStmt) Pos() source.Pos { return s.Position }
func (s *ExprStmt) stmtNode()       {}

// Assign stores the value of the source expression into the storage location
// denoted by the target expression.
type Assign struct {
	Position source.Pos
	Target   Expr
	Value    Expr
}

func (s *Assign) Pos() source.Pos { return s.Position }
func (s *Assign) stmtNode()       {}

// If is a conditional statement with an optional else arm.
type If struct {
	Position source.Pos
	Cond     Expr
	Then     *Block
	Else     *Block // nil if absent
}

func (s *If) Pos() source.Pos { return s.Position }
func (s *If) stmtNode()       {}

// While is a header-tested loop.
type While struct {
	Position source.Pos
	Cond     Expr
	Body     *Block
}

func (s *While) Pos() source.Pos { return s.Position }
func (s *While) stmtNode()       {}

// Return exits the enclosing function, optionally with a value.
type Return struct {
	Position source.Pos
	Value    Expr // nil for void return
}

func (s *Return) Pos() source.Pos { return s.Position }
func (s *Return) stmtNode()       {}

// === [ Expressions ] =========================================================

// SymbolRef is a reference to a named symbol, bound by the resolver to a
// function signature. Other symbol kinds are not yet supported.
type SymbolRef struct {
	Position  source.Pos
	Name      string
	Signature *FunctionSignature
	Evaluated types.Type
}

func (e *SymbolRef) Pos() source.Pos  { return e.Position }
func (e *SymbolRef) Type() types.Type { return e.Evaluated }

// Call invokes a callee expression with arguments in source order.
type Call struct {
	Position  source.Pos
	Callee    Expr
	Args      []Expr
	Evaluated types.Type
}

func (e *Call) Pos() source.Pos  { return e.Position }
func (e *Call) Type() types.Type { return e.Evaluated }

// BoolLit is a boolean literal.
type BoolLit struct {
	Position  source.Pos
	Value     bool
	Evaluated types.Type
}

func (e *BoolLit) Pos() source.Pos  { return e.Position }
func (e *BoolLit) Type() types.Type { return e.Evaluated }

// NumberLit is a numeric literal. Value holds the literal text; IsFloat
// records whether the lexed representation was floating rather than integral.
type NumberLit struct {
	Position  source.Pos
	Value     string
	IsFloat   bool
	Evaluated types.Type
}

func (e *NumberLit) Pos() source.Pos  { return e.Position }
func (e *NumberLit) Type() types.Type { return e.Evaluated }

// StringLit is a string literal.
type StringLit struct {
	Position  source.Pos
	Value     string
	Evaluated types.Type
}

func (e *StringLit) Pos() source.Pos  { return e.Position }
func (e *StringLit) Type() types.Type { return e.Evaluated }

// VarRef is a reference to a local variable or parameter, bound by the
// resolver to a variable symbol.
type VarRef struct {
	Position  source.Pos
	Symbol    *VarSymbol
	Evaluated types.Type
}

func (e *VarRef) Pos() source.Pos  { return e.Position }
func (e *VarRef) Type() types.Type { return e.Evaluated }

// Binary is a binary operator expression.
type Binary struct {
	Position  source.Pos
	Op        Op
	Left      Expr
	Right     Expr
	Evaluated types.Type
}

func (e *Binary) Pos() source.Pos  { return e.Position }
func (e *Binary) Type() types.Type { return e.Evaluated }
