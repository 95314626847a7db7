// Package types defines the Seam source type system as produced by the
// upstream resolution pass. Types are immutable once resolved; the backend
// looks them up but never mutates them.
package types

// Kind enumerates the built-in Seam types.
type Kind uint8

// Built-in type kinds.
const (
	Void Kind = iota
	Bool
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	String
)

// kindNames maps built-in kinds to their Seam spelling.
var kindNames = [...]string{
	Void:   "void",
	Bool:   "bool",
	U8:     "u8",
	U16:    "u16",
	U32:    "u32",
	U64:    "u64",
	I8:     "i8",
	I16:    "i16",
	I32:    "i32",
	I64:    "i64",
	F32:    "f32",
	F64:    "f64",
	String: "string",
}

// String returns the Seam spelling of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Integer reports whether the kind is a fixed-width integer type.
func (k Kind) Integer() bool {
	switch k {
	case U8, U16, U32, U64, I8, I16, I32, I64:
		return true
	}
	return false
}

// Unsigned reports whether the kind is an unsigned integer type.
func (k Kind) Unsigned() bool {
	switch k {
	case U8, U16, U32, U64:
		return true
	}
	return false
}

// Float reports whether the kind is a floating-point type.
func (k Kind) Float() bool {
	return k == F32 || k == F64
}

// BitSize returns the width in bits of integer and floating-point kinds, and
// 0 for kinds without a fixed scalar width.
func (k Kind) BitSize() uint64 {
	switch k {
	case Bool:
		return 1
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32:
		return 32
	case U64, I64, F64:
		return 64
	case F32:
		return 32
	}
	return 0
}

// Type is a resolved Seam type: either a built-in or a (not yet lowerable)
// user-defined class type.
type Type interface {
	String() string
	isType()
}

// Builtin is a built-in Seam type.
type Builtin struct {
	K Kind
}

func (t *Builtin) isType() {}

// String returns the Seam spelling of the built-in type.
func (t *Builtin) String() string { return t.K.String() }

// Class is a user-defined aggregate type. Lowering of class types is not
// implemented; the backend rejects them.
type Class struct {
	Name string
}

func (t *Class) isType() {}

// String returns the class name.
func (t *Class) String() string { return t.Name }

// Singleton built-in types, shared by the resolver and by tests.
var (
	VoidType   = &Builtin{K: Void}
	BoolType   = &Builtin{K: Bool}
	U8Type     = &Builtin{K: U8}
	U16Type    = &Builtin{K: U16}
	U32Type    = &Builtin{K: U32}
	U64Type    = &Builtin{K: U64}
	I8Type     = &Builtin{K: I8}
	I16Type    = &Builtin{K: I16}
	I32Type    = &Builtin{K: I32}
	I64Type    = &Builtin{K: I64}
	F32Type    = &Builtin{K: F32}
	F64Type    = &Builtin{K: F64}
	StringType = &Builtin{K: String}
)

// FromKind returns the shared built-in type for the given kind.
func FromKind(k Kind) *Builtin {
	switch k {
	case Void:
		return VoidType
	case Bool:
		return BoolType
	case U8:
		return U8Type
	case U16:
		return U16Type
	case U32:
		return U32Type
	case U64:
		return U64Type
	case I8:
		return I8Type
	case I16:
		return I16Type
	case I32:
		return I32Type
	case I64:
		return I64Type
	case F32:
		return F32Type
	case F64:
		return F64Type
	case String:
		return StringType
	}
	return &Builtin{K: k}
}
