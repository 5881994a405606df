package records

import "fmt"

// ADSType is the transport-level data type identifier carried in symbol
// and data type records.
type ADSType uint32

const (
	TypeVoid    ADSType = 0
	TypeInt16   ADSType = 2
	TypeInt32   ADSType = 3
	TypeReal32  ADSType = 4
	TypeReal64  ADSType = 5
	TypeInt8    ADSType = 16
	TypeUint8   ADSType = 17
	TypeUint16  ADSType = 18
	TypeUint32  ADSType = 19
	TypeInt64   ADSType = 20
	TypeUint64  ADSType = 21
	TypeString  ADSType = 30
	TypeWString ADSType = 31
	TypeReal80  ADSType = 32
	TypeBit     ADSType = 33
	TypeBig     ADSType = 65
)

var adsTypeNames = map[ADSType]string{
	TypeVoid:    "void",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeReal32:  "real32",
	TypeReal64:  "real64",
	TypeInt8:    "int8",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeInt64:   "int64",
	TypeUint64:  "uint64",
	TypeString:  "string",
	TypeWString: "wstring",
	TypeReal80:  "real80",
	TypeBit:     "bit",
	TypeBig:     "bigtype",
}

func (t ADSType) String() string {
	if n, ok := adsTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("adstype(%d)", uint32(t))
}
