package wire

import (
	"encoding/hex"
	"encoding/json"
)

// MaxStringLen is the bound applied to decoded strings. Longer strings are
// truncated, not rejected.
const MaxStringLen = 256

// WireType is the type tag the device stack attaches to a native value.
type WireType uint8

const (
	// WireTypeUnknown covers tags the bridge does not recognize.
	WireTypeUnknown WireType = 0

	// WireTypeBoolean is a boolean value.
	WireTypeBoolean WireType = 1

	// WireTypeUnsignedInt is an unsigned integer up to 64 bits.
	WireTypeUnsignedInt WireType = 2

	// WireTypeSignedInt is a signed integer up to 64 bits.
	WireTypeSignedInt WireType = 3

	// WireTypeFloat is a 32- or 64-bit floating point value.
	WireTypeFloat WireType = 4

	// WireTypeUTF8String is a UTF-8 string.
	WireTypeUTF8String WireType = 5

	// WireTypeNull is an explicit null.
	WireTypeNull WireType = 6

	// WireTypeByteString is an opaque octet string. Not decoded.
	WireTypeByteString WireType = 7

	// WireTypeStruct is a structured value. Not decoded.
	WireTypeStruct WireType = 8

	// WireTypeArray is a list value. Not decoded.
	WireTypeArray WireType = 9
)

// String returns the wire type name.
func (w WireType) String() string {
	switch w {
	case WireTypeBoolean:
		return "BOOLEAN"
	case WireTypeUnsignedInt:
		return "UNSIGNED_INT"
	case WireTypeSignedInt:
		return "SIGNED_INT"
	case WireTypeFloat:
		return "FLOAT"
	case WireTypeUTF8String:
		return "UTF8_STRING"
	case WireTypeNull:
		return "NULL"
	case WireTypeByteString:
		return "BYTE_STRING"
	case WireTypeStruct:
		return "STRUCT"
	case WireTypeArray:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// NativeValue is a subsystem-native encoded value: CBOR bytes plus the
// wire-type tag the stack declared for them.
type NativeValue struct {
	WireType WireType
	Data     []byte
}

// Type is the semantic type of a decoded value.
type Type uint8

const (
	// TypeNull marks an absent or undecodable value.
	TypeNull Type = iota

	// TypeBoolean is a decoded boolean.
	TypeBoolean

	// TypeUnsignedInt is a decoded unsigned integer.
	TypeUnsignedInt

	// TypeSignedInt is a decoded signed integer.
	TypeSignedInt

	// TypeFloat is a decoded 64-bit float.
	TypeFloat

	// TypeString is a decoded UTF-8 string, truncated to MaxStringLen.
	TypeString

	// TypeRaw carries bytes the decoder skipped. Decoding was not
	// attempted, the data is preserved as-is.
	TypeRaw
)

// String returns the type tag name used in API responses.
func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeUnsignedInt:
		return "uint"
	case TypeSignedInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeRaw:
		return "raw"
	default:
		return "null"
	}
}

// Value is a decoded typed value. Exactly one field is meaningful,
// selected by Type.
type Value struct {
	Type  Type
	Bool  bool
	Uint  uint64
	Int   int64
	Float float64
	Str   string
	Raw   []byte
}

// Interface returns the decoded value as a plain Go value suitable for
// JSON encoding. Raw bytes are rendered as a hex string, null as nil.
func (v Value) Interface() any {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeUnsignedInt:
		return v.Uint
	case TypeSignedInt:
		return v.Int
	case TypeFloat:
		return v.Float
	case TypeString:
		return v.Str
	case TypeRaw:
		return hex.EncodeToString(v.Raw)
	default:
		return nil
	}
}

// MarshalJSON encodes the value as its plain form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Null is the null value.
func Null() Value {
	return Value{Type: TypeNull}
}

// Decode converts a native value into a typed value. It never fails: values
// the decoder cannot parse come back as TypeNull and wire types it does not
// handle come back as TypeRaw with the original bytes.
func Decode(nv NativeValue) Value {
	if len(nv.Data) == 0 {
		return Null()
	}

	switch nv.WireType {
	case WireTypeBoolean:
		var b bool
		if err := Unmarshal(nv.Data, &b); err != nil {
			return Null()
		}
		return Value{Type: TypeBoolean, Bool: b}

	case WireTypeUnsignedInt:
		var u uint64
		if err := Unmarshal(nv.Data, &u); err != nil {
			return Null()
		}
		return Value{Type: TypeUnsignedInt, Uint: u}

	case WireTypeSignedInt:
		var i int64
		if err := Unmarshal(nv.Data, &i); err != nil {
			return Null()
		}
		return Value{Type: TypeSignedInt, Int: i}

	case WireTypeFloat:
		var f float64
		if err := Unmarshal(nv.Data, &f); err != nil {
			return Null()
		}
		return Value{Type: TypeFloat, Float: f}

	case WireTypeUTF8String:
		var s string
		if err := Unmarshal(nv.Data, &s); err != nil {
			return Null()
		}
		if len(s) > MaxStringLen {
			s = s[:MaxStringLen]
		}
		return Value{Type: TypeString, Str: s}

	case WireTypeNull:
		return Null()

	default:
		// Unhandled wire type: keep the bytes, report decoding as
		// skipped rather than failed.
		raw := make([]byte, len(nv.Data))
		copy(raw, nv.Data)
		return Value{Type: TypeRaw, Raw: raw}
	}
}
