package layout

type Kind uint8

const (
	KindPrimitive Kind = iota
	KindString
	KindArray
	KindStructure
	KindPointer
	KindOpaque
)

var kindNames = [...]string{
	KindPrimitive: "primitive",
	KindString:    "string",
	KindArray:     "array",
	KindStructure: "structure",
	KindPointer:   "pointer",
	KindOpaque:    "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Encoding selects the byte interpretation of a primitive.
type Encoding uint8

const (
	EncBool Encoding = iota
	EncInt8
	EncUint8
	EncInt16
	EncUint16
	EncInt32
	EncUint32
	EncInt64
	EncUint64
	EncFloat32
	EncFloat64
)

var encodingNames = [...]string{
	EncBool:    "bool",
	EncInt8:    "int8",
	EncUint8:   "uint8",
	EncInt16:   "int16",
	EncUint16:  "uint16",
	EncInt32:   "int32",
	EncUint32:  "uint32",
	EncInt64:   "int64",
	EncUint64:  "uint64",
	EncFloat32: "float32",
	EncFloat64: "float64",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return "unknown"
}

// Width returns the encoded size in bytes.
func (e Encoding) Width() uint32 {
	switch e {
	case EncBool, EncInt8, EncUint8:
		return 1
	case EncInt16, EncUint16:
		return 2
	case EncInt32, EncUint32, EncFloat32:
		return 4
	default:
		return 8
	}
}

func (e Encoding) IsSigned() bool {
	switch e {
	case EncInt8, EncInt16, EncInt32, EncInt64:
		return true
	default:
		return false
	}
}

func (e Encoding) IsFloat() bool {
	return e == EncFloat32 || e == EncFloat64
}
