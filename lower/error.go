package lower

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"

	"github.com/LinkerScript/SeamLang/source"
)

// ErrorKind classifies the internal-compiler-error conditions raised during
// lowering. User code cannot trigger them when the upstream resolution pass
// is correct.
type ErrorKind uint8

// Internal-compiler-error conditions.
const (
	// UnsupportedType reports a type with no target representation.
	UnsupportedType ErrorKind = iota + 1
	// InvalidReturnType reports a lowered type that is structurally illegal
	// as a function return type.
	InvalidReturnType
	// InvalidParameterType reports a lowered type that is structurally
	// illegal as a function argument type.
	InvalidParameterType
	// ExpectedCallableValue reports a call whose callee did not lower to a
	// function value.
	ExpectedCallableValue
	// UnknownNumericType reports a numeric literal whose evaluated type is
	// neither a recognized integer nor float kind.
	UnknownNumericType
	// InvalidBinaryOperation reports an operator symbol with no lowering
	// rule.
	InvalidBinaryOperation
	// VerificationFailed reports a structural invariant violation in the
	// produced function or module.
	VerificationFailed
)

var errorKindNames = [...]string{
	UnsupportedType:        "unsupported type",
	InvalidReturnType:      "invalid return type",
	InvalidParameterType:   "invalid parameter type",
	ExpectedCallableValue:  "expected callable value",
	UnknownNumericType:     "unknown numeric type",
	InvalidBinaryOperation: "invalid binary operation",
	VerificationFailed:     "verification failed",
}

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) && errorKindNames[k] != "" {
		return errorKindNames[k]
	}
	return "unknown"
}

// Error is an unrecoverable compilation error carrying a source position. It
// aborts compilation of the current module at the point of detection.
type Error struct {
	Kind ErrorKind
	Pos  source.Pos
	err  error
}

// Error returns the error message, prefixed by the source position when one
// is known.
func (e *Error) Error() string {
	if e.Pos == source.NoPos {
		return fmt.Sprintf("internal compiler error: %v", e.err)
	}
	return fmt.Sprintf("%s: internal compiler error: %v", e.Pos, e.err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// icef returns a new internal compiler error of the given kind at the given
// source position.
func icef(kind ErrorKind, pos source.Pos, format string, a ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Pos:  pos,
		err:  errors.Errorf(format, a...),
	}
}

// KindOf returns the error kind of err, or 0 if err is not a lowering error.
func KindOf(err error) ErrorKind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return 0
}
