package linker

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-capabilities/errors"
)

// Signature declares a host function with WIT types. The linker flattens it
// to core value types when the function is defined.
type Signature struct {
	Params  []wit.Type
	Results []wit.Type
}

// DefineWitFunc defines fn under ns with a WIT signature. Strings flatten to
// a (ptr, len) pair of i32s; other compound types are not supported on the
// host boundary and are rejected.
func (ns *Namespace) DefineWitFunc(name string, fn api.GoModuleFunc, sig Signature) error {
	params, err := flattenTypes(sig.Params)
	if err != nil {
		return errors.New(errors.PhaseLink, errors.KindUnsupported).
			Path(ns.FullPath(), name).
			Detail("flatten params").
			Cause(err).
			Build()
	}
	results, err := flattenTypes(sig.Results)
	if err != nil {
		return errors.New(errors.PhaseLink, errors.KindUnsupported).
			Path(ns.FullPath(), name).
			Detail("flatten results").
			Cause(err).
			Build()
	}
	return ns.DefineFunc(name, fn, params, results)
}

func flattenTypes(types []wit.Type) ([]api.ValueType, error) {
	var flat []api.ValueType
	for _, t := range types {
		vts, err := flattenType(t)
		if err != nil {
			return nil, err
		}
		flat = append(flat, vts...)
	}
	return flat, nil
}

// flattenType maps a WIT primitive to its core representation per the
// canonical ABI.
func flattenType(t wit.Type) ([]api.ValueType, error) {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []api.ValueType{api.ValueTypeI32}, nil
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}, nil
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}, nil
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}, nil
	case wit.String:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil
	default:
		return nil, errors.Unsupported(errors.PhaseLink, "wit type not flat on the host boundary")
	}
}
