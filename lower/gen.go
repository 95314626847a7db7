package lower

import (
	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
)

// DefaultWordSize is the target word size in bits used when the configuration
// does not name one.
const DefaultWordSize = 64

// Config holds the target parameters of a module compilation.
type Config struct {
	// WordSize is the target word size in bits (32 or 64). It determines the
	// width of the size field of the lowered string aggregate.
	WordSize int
}

// Generator keeps track of per-module state when lowering a resolved Seam
// module to LLVM IR: the function-type cache, the declared-function table,
// the constructor list and named type definitions. A Generator compiles a
// single module and is not safe for concurrent use.
type Generator struct {
	// LLVM IR module being generated.
	m *ir.Module
	// Target word size in bits.
	wordSize uint64

	// funcTypes maps from mangled function name to cached IR function type.
	funcTypes map[string]*irtypes.FuncType
	// funcs maps from visible function name (plain name for externs, mangled
	// name otherwise) to declared IR function.
	funcs map[string]*ir.Func
	// ctors holds functions carrying the constructor attribute, in source
	// declaration order.
	ctors []*ir.Func
	// typeDefs maps from type identifier (without '%' prefix) to type
	// definition.
	typeDefs map[string]irtypes.Type

	// Lowered string aggregate type, created on first use.
	strType *irtypes.StructType
	// Number of string literal globals emitted so far.
	strCount int
}

// NewGenerator returns a new generator for lowering a resolved Seam module to
// LLVM IR under the given target configuration.
func NewGenerator(cfg Config) (*Generator, error) {
	ws := cfg.WordSize
	if ws == 0 {
		ws = DefaultWordSize
	}
	if ws != 32 && ws != 64 {
		return nil, errors.Errorf("unsupported target word size %d; must be 32 or 64", ws)
	}
	wordSize, err := safecast.Conv[uint64](ws)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	gen := &Generator{
		m:         ir.NewModule(),
		wordSize:  wordSize,
		funcTypes: make(map[string]*irtypes.FuncType),
		funcs:     make(map[string]*ir.Func),
		typeDefs:  make(map[string]irtypes.Type),
	}
	return gen, nil
}
