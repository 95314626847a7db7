package lower

import (
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/LinkerScript/SeamLang/source"
	"github.com/LinkerScript/SeamLang/types"
)

// irType returns the LLVM IR type of the given Seam type. Lowering is pure
// and total over the supported built-ins; any other type is an internal
// compiler error.
func (gen *Generator) irType(pos source.Pos, t types.Type) (irtypes.Type, error) {
	switch t := t.(type) {
	case *types.Builtin:
		return gen.irBuiltinType(pos, t)
	default:
		// Class types are a stated TODO of the upstream passes; nothing
		// reaches here with one today.
		return nil, icef(UnsupportedType, pos, "unsupported type %s; class types cannot be lowered", t)
	}
}

// irBuiltinType returns the LLVM IR type of the given built-in Seam type.
func (gen *Generator) irBuiltinType(pos source.Pos, t *types.Builtin) (irtypes.Type, error) {
	switch t.K {
	case types.Void:
		return irtypes.Void, nil
	case types.Bool:
		return irtypes.I1, nil
	case types.U8, types.I8:
		return irtypes.I8, nil
	case types.U16, types.I16:
		return irtypes.I16, nil
	case types.U32, types.I32:
		return irtypes.I32, nil
	case types.U64, types.I64:
		return irtypes.I64, nil
	case types.F32:
		return irtypes.Float, nil
	case types.F64:
		return irtypes.Double, nil
	case types.String:
		return gen.stringType(), nil
	default:
		return nil, icef(UnsupportedType, pos, "unknown type %s", t)
	}
}

// stringType returns the lowered string aggregate type, creating and
// registering it as a named type definition on first use. The field order
// {size, data pointer} is part of the external ABI of compiled string values.
func (gen *Generator) stringType() *irtypes.StructType {
	if gen.strType != nil {
		return gen.strType
	}
	var (
		sizeType = irtypes.NewInt(gen.wordSize)
		dataType = irtypes.NewPointer(irtypes.I8)
	)
	strType := irtypes.NewStruct(sizeType, dataType)
	strType.SetName("string")
	gen.typeDefs["string"] = strType
	gen.strType = strType
	return strType
}
