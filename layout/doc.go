// Package layout describes how a controller value occupies bytes and
// converts between those bytes and Go values.
//
// A Layout is one of six kinds:
//
//	Primitive  fixed-width little-endian number or BOOL
//	String     STRING(n): n Latin-1 characters plus a NUL terminator
//	Array      count elements of one layout, indexed from a lower bound
//	Structure  named fields at fixed offsets, padding made explicit
//	Pointer    native-width address
//	Opaque     a byte blob of known size with no interpretation
//
// Structures are checked against the controller compiler's packing rule:
// every field sits at its natural alignment capped at eight bytes. A
// structure whose declared offsets cannot be reproduced that way is
// rejected by NewStructure so the caller can fall back to Opaque.
//
// # Value shapes
//
// Decode produces, and Encode accepts:
//
//	BOOL                 bool
//	SINT..ULINT, BYTE..  int8, uint8, int16, uint16, int32, uint32, int64, uint64
//	REAL, LREAL          float32, float64
//	STRING(n)            string
//	Array (lower 0)      []any
//	Array (lower != 0)   *nzarray.Array[any]
//	Structure            *orderedmap.OrderedMap[string, any]
//	Pointer              uint64
//	Opaque               []byte
//
// Encode is lenient about numeric Go types as long as the value fits,
// accepts map[string]any for structures and any Go slice for arrays.
package layout
