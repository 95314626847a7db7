package ast

// Op is a binary operator symbol.
type Op uint8

// Binary operator symbols.
const (
	OpInvalid Op = iota
	OpAdd         // +
	OpSub         // -
	OpMul         // *
	OpDiv         // /
	OpEq          // ==
	OpNe          // !=
	OpLt          // <
	OpLe          // <=
	OpGt          // >
	OpGe          // >=
)

var opNames = [...]string{
	OpInvalid: "invalid",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
}

// String returns the source spelling of the operator.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "invalid"
}
