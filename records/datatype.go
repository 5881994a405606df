package records

import (
	"math"
	"strings"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/internal/abi"
	"github.com/wippyai/ads-symbols/internal/binary"
)

// DataTypeHeaderSize is the fixed part of a data type record: eight
// uint32 fields followed by five uint16 fields.
const DataTypeHeaderSize = 42

// PointerPrefix marks pointer type names.
const PointerPrefix = "POINTER TO "

// ArrayDim is one array dimension: its first valid index and element count.
type ArrayDim struct {
	LowerBound int32
	Elements   uint32
}

// Upper returns the last valid index of the dimension.
func (d ArrayDim) Upper() int64 {
	return int64(d.LowerBound) + int64(d.Elements) - 1
}

// DataType is a decoded data type record. Sub-items keep their declared
// order; a repeated sub-item name replaces the earlier value in place.
type DataType struct {
	SubItems      *orderedmap.OrderedMap[string, *DataType]
	Name          string
	Type          string
	Comment       string
	Dims          []ArrayDim
	Version       uint32
	HashValue     uint32
	TypeHashValue uint32
	Size          uint32
	Offset        uint32
	ADSType       ADSType
	Flags         uint32
}

// IsArray reports whether the record declares array dimensions.
func (d *DataType) IsArray() bool {
	return len(d.Dims) > 0
}

// HasSubItems reports whether the record declares members.
func (d *DataType) HasSubItems() bool {
	return d.SubItems != nil && d.SubItems.Len() > 0
}

// IsPointer reports whether the record names a pointer type.
func (d *DataType) IsPointer() bool {
	return strings.HasPrefix(d.Name, PointerPrefix) || strings.HasPrefix(d.Type, PointerPrefix)
}

// IsAlias reports whether the record only renames another type.
func (d *DataType) IsAlias() bool {
	return d.Type != "" && !d.IsArray() && !d.HasSubItems() && !d.IsPointer()
}

// ElementCount returns the product of all dimension counts, 1 for
// non-arrays, and false on overflow.
func (d *DataType) ElementCount() (uint32, bool) {
	counts := make([]uint32, len(d.Dims))
	for i, dim := range d.Dims {
		counts[i] = dim.Elements
	}
	return abi.Product(counts)
}

// SubItem returns the member record with the given name.
func (d *DataType) SubItem(name string) (*DataType, bool) {
	if d.SubItems == nil {
		return nil, false
	}
	return d.SubItems.Get(name)
}

// DecodeDataType decodes one data type record, including its nested
// sub-item records. Bytes between the last decoded field and the
// declared record length are ignored.
func DecodeDataType(rec []byte) (*DataType, error) {
	r, err := header(rec, DataTypeHeaderSize, "data type record")
	if err != nil {
		return nil, err
	}
	_ = r.Skip(4)

	d := &DataType{}
	var adsType uint32
	for _, dst := range []*uint32{
		&d.Version, &d.HashValue, &d.TypeHashValue, &d.Size, &d.Offset, &adsType, &d.Flags,
	} {
		if *dst, err = r.ReadU32LE(); err != nil {
			return nil, malformed(r, "data type header", err)
		}
	}
	d.ADSType = ADSType(adsType)

	var nameLen, typeLen, commentLen, arrayDim, subCount uint16
	for _, dst := range []*uint16{&nameLen, &typeLen, &commentLen, &arrayDim, &subCount} {
		if *dst, err = r.ReadU16LE(); err != nil {
			return nil, malformed(r, "data type header", err)
		}
	}

	if d.Name, err = r.ReadString(int(nameLen)); err != nil {
		return nil, malformed(r, "data type name", err)
	}
	if d.Type, err = r.ReadString(int(typeLen)); err != nil {
		return nil, malformed(r, "data type type name", err)
	}
	if d.Comment, err = r.ReadString(int(commentLen)); err != nil {
		return nil, malformed(r, "data type comment", err)
	}

	if arrayDim > 0 {
		d.Dims = make([]ArrayDim, arrayDim)
		for i := range d.Dims {
			lb, err := r.ReadS32LE()
			if err != nil {
				return nil, malformed(r, "array dimension", err)
			}
			n, err := r.ReadU32LE()
			if err != nil {
				return nil, malformed(r, "array dimension", err)
			}
			d.Dims[i] = ArrayDim{LowerBound: lb, Elements: n}
		}
	}

	d.SubItems = orderedmap.NewOrderedMapWithCapacity[string, *DataType](int(subCount))
	for i := 0; i < int(subCount); i++ {
		start := r.Position()
		n, err := r.ReadU32LE()
		if err != nil {
			return nil, malformed(r, "sub-item length", err)
		}
		if n == 0 || uint64(n) > uint64(r.Len()+4) {
			return nil, errors.New(errors.PhaseDecode, errors.KindMalformedRecord).
				Path(d.Name).
				Detail("sub-item %d at byte %d declares length %d, %d bytes left in record",
					i, start, n, r.Len()+4).
				Build()
		}
		_ = r.Seek(start)
		raw, _ := r.ReadBytes(int(n))
		sub, err := DecodeDataType(raw)
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindMalformedRecord).
				Path(d.Name).
				Detail("sub-item %d", i).
				Cause(err).
				Build()
		}
		d.SubItems.Set(sub.Name, sub)
	}

	return d, nil
}

// MarshalBinary encodes the record, sub-items included, in upload format.
func (d *DataType) MarshalBinary() ([]byte, error) {
	name, typ, comment, err := encodeStrings(d.Name, d.Type, d.Comment)
	if err != nil {
		return nil, err
	}
	if len(d.Dims) > math.MaxUint16 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "too many array dimensions")
	}
	subCount := 0
	if d.SubItems != nil {
		subCount = d.SubItems.Len()
	}
	if subCount > math.MaxUint16 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "too many sub-items")
	}

	w := binary.NewWriter()
	w.WriteU32LE(0)
	for _, v := range []uint32{
		d.Version, d.HashValue, d.TypeHashValue, d.Size, d.Offset, uint32(d.ADSType), d.Flags,
	} {
		w.WriteU32LE(v)
	}
	for _, v := range []int{len(name), len(typ), len(comment), len(d.Dims), subCount} {
		w.WriteU16LE(uint16(v))
	}
	w.WriteCString(name)
	w.WriteCString(typ)
	w.WriteCString(comment)
	for _, dim := range d.Dims {
		w.WriteS32LE(dim.LowerBound)
		w.WriteU32LE(dim.Elements)
	}
	if d.SubItems != nil {
		for _, sub := range d.SubItems.AllFromFront() {
			b, err := sub.MarshalBinary()
			if err != nil {
				return nil, err
			}
			w.WriteBytes(b)
		}
	}
	w.PatchU32LE(0, uint32(w.Len()))
	return w.Bytes(), nil
}

func encodeStrings(fields ...string) (a, b, c []byte, err error) {
	out := make([][]byte, len(fields))
	for i, f := range fields {
		enc, err := binary.EncodeLatin1(f)
		if err != nil {
			return nil, nil, nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Detail("string %q is not Latin-1", f).
				Cause(err).
				Build()
		}
		if len(enc) > math.MaxUint16 {
			return nil, nil, nil, errors.InvalidInput(errors.PhaseEncode, "string field too long")
		}
		out[i] = enc
	}
	return out[0], out[1], out[2], nil
}
