// Package astio serializes resolved Seam modules for the handoff between the
// frontend passes and the backend. The format is msgpack with tagged node
// envelopes; function signatures and variable symbols are interned on decode
// so the pointer-identity invariants of the backend hold (signature cache
// keying, per-function variable storage).
package astio

import (
	"bytes"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/LinkerScript/SeamLang/ast"
	"github.com/LinkerScript/SeamLang/source"
	"github.com/LinkerScript/SeamLang/types"
)

// SchemaVersion is the current serialization schema version. Increment when
// the record format changes.
const SchemaVersion uint16 = 1

// classKind tags a class type in a type record; built-in kinds use their
// types.Kind value.
const classKind = 0xFF

type moduleRec struct {
	Schema uint16    `msgpack:"schema"`
	Name   string    `msgpack:"name"`
	Sigs   []sigRec  `msgpack:"sigs"`
	Body   []stmtRec `msgpack:"body"`
}

type sigRec struct {
	Name        string     `msgpack:"name"`
	MangledName string     `msgpack:"mangled"`
	Params      []paramRec `msgpack:"params"`
	Return      typeRec    `msgpack:"return"`
	IsExtern    bool       `msgpack:"extern"`
	Attributes  []string   `msgpack:"attrs,omitempty"`
}

type paramRec struct {
	Name string  `msgpack:"name"`
	Type typeRec `msgpack:"type"`
}

type typeRec struct {
	Kind  uint8  `msgpack:"kind"`
	Class string `msgpack:"class,omitempty"`
}

type posRec struct {
	Line uint32 `msgpack:"line"`
	Col  uint32 `msgpack:"col"`
}

type stmtRec struct {
	Kind    string    `msgpack:"kind"`
	Pos     posRec    `msgpack:"pos"`
	Sig     int32     `msgpack:"sig,omitempty"`
	Body    []stmtRec `msgpack:"body,omitempty"`
	BodyPos posRec    `msgpack:"body_pos,omitempty"`
	Else    []stmtRec `msgpack:"else,omitempty"`
	ElsePos posRec    `msgpack:"else_pos,omitempty"`
	HasElse bool      `msgpack:"has_else,omitempty"`
	Cond    *exprRec  `msgpack:"cond,omitempty"`
	Target  *exprRec  `msgpack:"target,omitempty"`
	Value   *exprRec  `msgpack:"value,omitempty"`
}

type exprRec struct {
	Kind       string     `msgpack:"kind"`
	Pos        posRec     `msgpack:"pos"`
	Type       typeRec    `msgpack:"type"`
	Sig        int32      `msgpack:"sig,omitempty"`
	Callee     *exprRec   `msgpack:"callee,omitempty"`
	Args       []*exprRec `msgpack:"args,omitempty"`
	Bool       bool       `msgpack:"bool,omitempty"`
	Text       string     `msgpack:"text,omitempty"`
	IsFloat    bool       `msgpack:"is_float,omitempty"`
	Op         uint8      `msgpack:"op,omitempty"`
	Left       *exprRec   `msgpack:"left,omitempty"`
	Right      *exprRec   `msgpack:"right,omitempty"`
	VarType    typeRec    `msgpack:"var_type,omitempty"`
	ParamIndex int32      `msgpack:"param_index,omitempty"`
}

// Encode writes the msgpack serialization of the resolved module to w.
func Encode(w io.Writer, mod *ast.Module) error {
	e := &encoder{sigIndex: make(map[*ast.FunctionSignature]int32)}
	rec := moduleRec{
		Schema: SchemaVersion,
		Name:   mod.Name,
	}
	if mod.Body != nil {
		for _, stmt := range mod.Body.List {
			rec.Body = append(rec.Body, e.stmt(stmt))
		}
	}
	rec.Sigs = e.sigs
	if err := msgpack.NewEncoder(w).Encode(&rec); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Marshal returns the msgpack serialization of the resolved module.
func Marshal(mod *ast.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, mod); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a msgpack-serialized resolved module from r.
func Decode(r io.Reader) (*ast.Module, error) {
	var rec moduleRec
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return nil, errors.WithStack(err)
	}
	if rec.Schema != SchemaVersion {
		return nil, errors.Errorf("unsupported module schema version %d; want %d", rec.Schema, SchemaVersion)
	}
	d := &decoder{}
	for _, s := range rec.Sigs {
		d.sigs = append(d.sigs, decodeSig(s))
	}
	body := &ast.Block{}
	for _, s := range rec.Body {
		stmt, err := d.stmt(s)
		if err != nil {
			return nil, err
		}
		body.List = append(body.List, stmt)
	}
	return &ast.Module{Name: rec.Name, Body: body}, nil
}

// Unmarshal parses a msgpack-serialized resolved module.
func Unmarshal(data []byte) (*ast.Module, error) {
	return Decode(bytes.NewReader(data))
}

// === [ Encoding ] ============================================================

type encoder struct {
	sigs     []sigRec
	sigIndex map[*ast.FunctionSignature]int32
}

// sig interns the signature, returning its table index.
func (e *encoder) sig(sig *ast.FunctionSignature) int32 {
	if i, ok := e.sigIndex[sig]; ok {
		return i
	}
	rec := sigRec{
		Name:        sig.Name,
		MangledName: sig.MangledName,
		Return:      encodeType(sig.Return),
		IsExtern:    sig.IsExtern,
		Attributes:  sig.Attributes,
	}
	for _, param := range sig.Params {
		rec.Params = append(rec.Params, paramRec{Name: param.Name, Type: encodeType(param.Type)})
	}
	i := int32(len(e.sigs))
	e.sigs = append(e.sigs, rec)
	e.sigIndex[sig] = i
	return i
}

func (e *encoder) stmts(block *ast.Block) []stmtRec {
	if block == nil {
		return nil
	}
	var recs []stmtRec
	for _, stmt := range block.List {
		recs = append(recs, e.stmt(stmt))
	}
	return recs
}

func (e *encoder) stmt(stmt ast.Stmt) stmtRec {
	switch stmt := stmt.(type) {
	case *ast.FunctionDefinition:
		return stmtRec{
			Kind:    "func",
			Pos:     encodePos(stmt.Position),
			Sig:     e.sig(stmt.Signature),
			Body:    e.stmts(stmt.Body),
			BodyPos: blockPos(stmt.Body),
		}
	case *ast.ExternDeclaration:
		return stmtRec{
			Kind: "extern",
			Pos:  encodePos(stmt.Position),
			Sig:  e.sig(stmt.Signature),
		}
	case *ast.Block:
		return stmtRec{
			Kind: "block",
			Pos:  encodePos(stmt.Position),
			Body: e.stmts(stmt),
		}
	case *ast.ExprStmt:
		return stmtRec{
			Kind:  "expr",
			Pos:   encodePos(stmt.Position),
			Value: e.expr(stmt.X),
		}
	case *ast.Assign:
		return stmtRec{
			Kind:   "assign",
			Pos:    encodePos(stmt.Position),
			Target: e.expr(stmt.Target),
			Value:  e.expr(stmt.Value),
		}
	case *ast.If:
		return stmtRec{
			Kind:    "if",
			Pos:     encodePos(stmt.Position),
			Cond:    e.expr(stmt.Cond),
			Body:    e.stmts(stmt.Then),
			BodyPos: blockPos(stmt.Then),
			Else:    e.stmts(stmt.Else),
			ElsePos: blockPos(stmt.Else),
			HasElse: stmt.Else != nil,
		}
	case *ast.While:
		return stmtRec{
			Kind:    "while",
			Pos:     encodePos(stmt.Position),
			Cond:    e.expr(stmt.Cond),
			Body:    e.stmts(stmt.Body),
			BodyPos: blockPos(stmt.Body),
		}
	case *ast.Return:
		rec := stmtRec{
			Kind: "return",
			Pos:  encodePos(stmt.Position),
		}
		if stmt.Value != nil {
			rec.Value = e.expr(stmt.Value)
		}
		return rec
	default:
		panic(fmt.Errorf("support for statement %T not yet implemented", stmt))
	}
}

func (e *encoder) expr(expr ast.Expr) *exprRec {
	switch expr := expr.(type) {
	case *ast.SymbolRef:
		return &exprRec{
			Kind: "symbol",
			Pos:  encodePos(expr.Position),
			Type: encodeType(expr.Evaluated),
			Text: expr.Name,
			Sig:  e.sig(expr.Signature),
		}
	case *ast.Call:
		rec := &exprRec{
			Kind:   "call",
			Pos:    encodePos(expr.Position),
			Type:   encodeType(expr.Evaluated),
			Callee: e.expr(expr.Callee),
		}
		for _, arg := range expr.Args {
			rec.Args = append(rec.Args, e.expr(arg))
		}
		return rec
	case *ast.BoolLit:
		return &exprRec{
			Kind: "bool",
			Pos:  encodePos(expr.Position),
			Type: encodeType(expr.Evaluated),
			Bool: expr.Value,
		}
	case *ast.NumberLit:
		return &exprRec{
			Kind:    "number",
			Pos:     encodePos(expr.Position),
			Type:    encodeType(expr.Evaluated),
			Text:    expr.Value,
			IsFloat: expr.IsFloat,
		}
	case *ast.StringLit:
		return &exprRec{
			Kind: "string",
			Pos:  encodePos(expr.Position),
			Type: encodeType(expr.Evaluated),
			Text: expr.Value,
		}
	case *ast.VarRef:
		return &exprRec{
			Kind:       "var",
			Pos:        encodePos(expr.Position),
			Type:       encodeType(expr.Evaluated),
			Text:       expr.Symbol.Name,
			VarType:    encodeType(expr.Symbol.Type),
			ParamIndex: int32(expr.Symbol.ParamIndex),
		}
	case *ast.Binary:
		return &exprRec{
			Kind:  "binary",
			Pos:   encodePos(expr.Position),
			Type:  encodeType(expr.Evaluated),
			Op:    uint8(expr.Op),
			Left:  e.expr(expr.Left),
			Right: e.expr(expr.Right),
		}
	default:
		panic(fmt.Errorf("support for expression %T not yet implemented", expr))
	}
}

func encodeType(t types.Type) typeRec {
	switch t := t.(type) {
	case nil:
		return typeRec{Kind: uint8(types.Void)}
	case *types.Builtin:
		return typeRec{Kind: uint8(t.K)}
	case *types.Class:
		return typeRec{Kind: classKind, Class: t.Name}
	default:
		panic(fmt.Errorf("support for type %T not yet implemented", t))
	}
}

func encodePos(pos source.Pos) posRec {
	return posRec{Line: pos.Line, Col: pos.Col}
}

// blockPos returns the position record of the block's own position, so nested
// block positions survive the round trip.
func blockPos(block *ast.Block) posRec {
	if block == nil {
		return posRec{}
	}
	return encodePos(block.Position)
}

// === [ Decoding ] ============================================================

type decoder struct {
	sigs []*ast.FunctionSignature
	// vars interns variable symbols by name within the enclosing function.
	vars map[string]*ast.VarSymbol
}

func decodeSig(rec sigRec) *ast.FunctionSignature {
	sig := &ast.FunctionSignature{
		Name:        rec.Name,
		MangledName: rec.MangledName,
		Return:      rec.Return.typ(),
		IsExtern:    rec.IsExtern,
		Attributes:  rec.Attributes,
	}
	for _, param := range rec.Params {
		sig.Params = append(sig.Params, ast.Param{Name: param.Name, Type: param.Type.typ()})
	}
	return sig
}

// sigAt returns the interned signature at the given table index.
func (d *decoder) sigAt(i int32) (*ast.FunctionSignature, error) {
	if i < 0 || int(i) >= len(d.sigs) {
		return nil, errors.Errorf("signature index %d out of range; module has %d signatures", i, len(d.sigs))
	}
	return d.sigs[i], nil
}

func (d *decoder) block(pos posRec, recs []stmtRec) (*ast.Block, error) {
	block := &ast.Block{Position: decodePos(pos)}
	for _, rec := range recs {
		stmt, err := d.stmt(rec)
		if err != nil {
			return nil, err
		}
		block.List = append(block.List, stmt)
	}
	return block, nil
}

func (d *decoder) stmt(rec stmtRec) (ast.Stmt, error) {
	switch rec.Kind {
	case "func":
		sig, err := d.sigAt(rec.Sig)
		if err != nil {
			return nil, err
		}
		// Variable symbols intern per enclosing function.
		d.vars = make(map[string]*ast.VarSymbol)
		body, err := d.block(rec.BodyPos, rec.Body)
		if err != nil {
			return nil, err
		}
		d.vars = nil
		return &ast.FunctionDefinition{Position: decodePos(rec.Pos), Signature: sig, Body: body}, nil
	case "extern":
		sig, err := d.sigAt(rec.Sig)
		if err != nil {
			return nil, err
		}
		return &ast.ExternDeclaration{Position: decodePos(rec.Pos), Signature: sig}, nil
	case "block":
		return d.block(rec.Pos, rec.Body)
	case "expr":
		x, err := d.expr(rec.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Position: decodePos(rec.Pos), X: x}, nil
	case "assign":
		target, err := d.expr(rec.Target)
		if err != nil {
			return nil, err
		}
		val, err := d.expr(rec.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Position: decodePos(rec.Pos), Target: target, Value: val}, nil
	case "if":
		cond, err := d.expr(rec.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.block(rec.BodyPos, rec.Body)
		if err != nil {
			return nil, err
		}
		stmt := &ast.If{Position: decodePos(rec.Pos), Cond: cond, Then: then}
		if rec.HasElse {
			stmt.Else, err = d.block(rec.ElsePos, rec.Else)
			if err != nil {
				return nil, err
			}
		}
		return stmt, nil
	case "while":
		cond, err := d.expr(rec.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.block(rec.BodyPos, rec.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{Position: decodePos(rec.Pos), Cond: cond, Body: body}, nil
	case "return":
		stmt := &ast.Return{Position: decodePos(rec.Pos)}
		if rec.Value != nil {
			var err error
			stmt.Value, err = d.expr(rec.Value)
			if err != nil {
				return nil, err
			}
		}
		return stmt, nil
	default:
		return nil, errors.Errorf("unknown statement kind %q", rec.Kind)
	}
}

func (d *decoder) exprs(recs []*exprRec) ([]ast.Expr, error) {
	var exprs []ast.Expr
	for _, rec := range recs {
		expr, err := d.expr(rec)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func (d *decoder) expr(rec *exprRec) (ast.Expr, error) {
	if rec == nil {
		return nil, errors.New("missing expression record")
	}
	switch rec.Kind {
	case "symbol":
		sig, err := d.sigAt(rec.Sig)
		if err != nil {
			return nil, err
		}
		return &ast.SymbolRef{Position: decodePos(rec.Pos), Name: rec.Text, Signature: sig, Evaluated: rec.Type.typ()}, nil
	case "call":
		callee, err := d.expr(rec.Callee)
		if err != nil {
			return nil, err
		}
		args, err := d.exprs(rec.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Position: decodePos(rec.Pos), Callee: callee, Args: args, Evaluated: rec.Type.typ()}, nil
	case "bool":
		return &ast.BoolLit{Position: decodePos(rec.Pos), Value: rec.Bool, Evaluated: rec.Type.typ()}, nil
	case "number":
		return &ast.NumberLit{Position: decodePos(rec.Pos), Value: rec.Text, IsFloat: rec.IsFloat, Evaluated: rec.Type.typ()}, nil
	case "string":
		return &ast.StringLit{Position: decodePos(rec.Pos), Value: rec.Text, Evaluated: rec.Type.typ()}, nil
	case "var":
		sym, err := d.varSymbol(rec)
		if err != nil {
			return nil, err
		}
		return &ast.VarRef{Position: decodePos(rec.Pos), Symbol: sym, Evaluated: rec.Type.typ()}, nil
	case "binary":
		left, err := d.expr(rec.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(rec.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Position: decodePos(rec.Pos), Op: ast.Op(rec.Op), Left: left, Right: right, Evaluated: rec.Type.typ()}, nil
	default:
		return nil, errors.Errorf("unknown expression kind %q", rec.Kind)
	}
}

// varSymbol interns the referenced variable symbol by name within the
// enclosing function.
func (d *decoder) varSymbol(rec *exprRec) (*ast.VarSymbol, error) {
	if d.vars == nil {
		return nil, errors.Errorf("variable reference %q outside of function body", rec.Text)
	}
	if sym, ok := d.vars[rec.Text]; ok {
		return sym, nil
	}
	paramIndex, err := safecast.Conv[int](rec.ParamIndex)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sym := &ast.VarSymbol{Name: rec.Text, Type: rec.VarType.typ(), ParamIndex: paramIndex}
	d.vars[rec.Text] = sym
	return sym, nil
}

func (rec typeRec) typ() types.Type {
	if rec.Kind == classKind {
		return &types.Class{Name: rec.Class}
	}
	return types.FromKind(types.Kind(rec.Kind))
}

func decodePos(rec posRec) source.Pos {
	return source.Pos{Line: rec.Line, Col: rec.Col}
}
