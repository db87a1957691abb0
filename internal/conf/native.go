package conf

import (
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ToNative converts a cty value back into plain Go values suitable for
// yaml.v3 encoding: objects become map[string]any, tuples become
// []any, whole numbers become int64 and everything else maps to its
// obvious Go counterpart.
func ToNative(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ToNative(ev)
		}
		return out
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ToNative(ev))
		}
		return out
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return numberToNative(v)
	default:
		// cty has no further primitive kinds; GoString is a last
		// resort that keeps encoding total.
		return v.GoString()
	}
}

func numberToNative(v cty.Value) any {
	bf := v.AsBigFloat()
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}
