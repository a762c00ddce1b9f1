// Package wire defines the data types exchanged with the device-control
// subsystem: attribute and event paths, the native encoded value envelope,
// and the typed value decoder.
//
// Values arrive from the subsystem as CBOR-encoded bytes tagged with a wire
// type. Decode converts them into a small set of semantic types:
//
//	val := wire.Decode(wire.NativeValue{WireType: wire.WireTypeBoolean, Data: raw})
//	if val.Type == wire.TypeBoolean { ... }
//
// Decoding never fails hard. Undecodable input yields TypeNull and wire
// types the decoder does not understand yield TypeRaw with the original
// bytes preserved. This keeps the bridge robust against wire-type evolution
// in the device stack.
package wire
