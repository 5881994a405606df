package layout

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/internal/abi"
	adsbinary "github.com/wippyai/ads-symbols/internal/binary"
	"github.com/wippyai/ads-symbols/nzarray"
)

// Decode converts the first l.Size bytes of data into a Go value.
func Decode(l *Layout, data []byte) (any, error) {
	if uint64(len(data)) < uint64(l.Size) {
		return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
			TypeName(l.String()).
			Detail("have %d bytes, layout needs %d", len(data), l.Size).
			Build()
	}
	return decodeValue(l, data[:l.Size], nil)
}

func decodeValue(l *Layout, b []byte, path []string) (any, error) {
	switch l.Kind {
	case KindPrimitive:
		return decodePrimitive(l.Encoding, b), nil

	case KindPointer:
		if l.Size == 4 {
			return uint64(binary.LittleEndian.Uint32(b)), nil
		}
		return binary.LittleEndian.Uint64(b), nil

	case KindString:
		raw := b
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		s, err := adsbinary.DecodeLatin1(raw)
		if err != nil {
			return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
				Path(path...).
				Cause(err).
				Build()
		}
		return s, nil

	case KindArray:
		elems := make([]any, l.Count)
		size := l.Elem.Size
		for i := range elems {
			off := uint32(i) * size
			v, err := decodeValue(l.Elem, b[off:off+size], appendIndex(path, int64(l.Lower)+int64(i)))
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		if l.Lower != 0 {
			return nzarray.Wrap(int(l.Lower), elems), nil
		}
		return elems, nil

	case KindStructure:
		m := orderedmap.NewOrderedMapWithCapacity[string, any](len(l.Fields))
		for _, f := range l.Fields {
			if f.Padding {
				continue
			}
			v, err := decodeValue(f.Layout, b[f.Offset:f.Offset+f.Layout.Size], appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			m.Set(f.Name, v)
		}
		return m, nil

	case KindOpaque:
		return bytes.Clone(b), nil

	default:
		return nil, errors.Unsupported(errors.PhaseRead, "layout kind "+l.Kind.String())
	}
}

func decodePrimitive(enc Encoding, b []byte) any {
	switch enc {
	case EncBool:
		return b[0] != 0
	case EncInt8:
		return int8(b[0])
	case EncUint8:
		return b[0]
	case EncInt16:
		return int16(binary.LittleEndian.Uint16(b))
	case EncUint16:
		return binary.LittleEndian.Uint16(b)
	case EncInt32:
		return int32(binary.LittleEndian.Uint32(b))
	case EncUint32:
		return binary.LittleEndian.Uint32(b)
	case EncInt64:
		return int64(binary.LittleEndian.Uint64(b))
	case EncUint64:
		return binary.LittleEndian.Uint64(b)
	case EncFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
}

// Encode converts v into exactly l.Size bytes.
func Encode(l *Layout, v any) ([]byte, error) {
	if l.Kind == KindOpaque {
		b, ok := v.([]byte)
		if !ok || uint32(len(b)) != l.Size {
			return nil, errors.Unsupported(errors.PhaseWrite,
				"opaque layout accepts only a raw byte slice of its exact size")
		}
		return bytes.Clone(b), nil
	}
	buf := make([]byte, l.Size)
	if err := encodeValue(l, buf, v, nil); err != nil {
		return nil, err
	}
	return buf, nil
}

// Construct builds a value from constructor-style arguments. A single
// argument is encoded as a whole value. For arrays and structures,
// several arguments fill elements or members positionally; positions
// without an argument stay zero.
func Construct(l *Layout, args ...any) ([]byte, error) {
	if len(args) == 0 {
		return nil, errors.InvalidInput(errors.PhaseWrite, "no value given")
	}
	if len(args) == 1 && (l.Kind != KindArray && l.Kind != KindStructure || isComposite(args[0])) {
		return Encode(l, args[0])
	}

	buf := make([]byte, l.Size)
	switch l.Kind {
	case KindArray:
		if uint64(len(args)) > uint64(l.Count) {
			return nil, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
				TypeName(l.String()).
				Detail("%d values for %d elements", len(args), l.Count).
				Build()
		}
		for i, a := range args {
			off := uint32(i) * l.Elem.Size
			idx := appendIndex(nil, int64(l.Lower)+int64(i))
			if err := encodeValue(l.Elem, buf[off:off+l.Elem.Size], a, idx); err != nil {
				return nil, err
			}
		}
	case KindStructure:
		members := l.Members()
		if len(args) > len(members) {
			return nil, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
				TypeName(l.String()).
				Detail("%d values for %d members", len(args), len(members)).
				Build()
		}
		for i, a := range args {
			f := members[i]
			if err := encodeValue(f.Layout, buf[f.Offset:f.Offset+f.Layout.Size], a, []string{f.Name}); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			TypeName(l.String()).
			Detail("%d values for a single %s", len(args), l.Kind).
			Build()
	}
	return buf, nil
}

func isComposite(v any) bool {
	switch v.(type) {
	case *orderedmap.OrderedMap[string, any], map[string]any, *nzarray.Array[any], []byte:
		return true
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func encodeValue(l *Layout, b []byte, v any, path []string) error {
	switch l.Kind {
	case KindPrimitive:
		return encodePrimitive(l, b, v, path)

	case KindPointer:
		u, ok := abi.CoerceToUint64(v)
		if !ok {
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		if !abi.FitsUnsigned(u, l.Size) {
			return errors.Overflow(errors.PhaseWrite, path, v, l.String())
		}
		if l.Size == 4 {
			binary.LittleEndian.PutUint32(b, uint32(u))
		} else {
			binary.LittleEndian.PutUint64(b, u)
		}
		return nil

	case KindString:
		var raw []byte
		switch s := v.(type) {
		case string:
			enc, err := adsbinary.EncodeLatin1(s)
			if err != nil {
				return errors.New(errors.PhaseWrite, errors.KindInvalidInput).
					Path(path...).
					Detail("string is not representable in Latin-1").
					Cause(err).
					Build()
			}
			raw = enc
		case []byte:
			raw = s
		default:
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		if uint32(len(raw)) > l.Capacity {
			return errors.New(errors.PhaseWrite, errors.KindInvalidInput).
				Path(path...).
				TypeName(l.String()).
				Detail("%d characters exceed capacity %d", len(raw), l.Capacity).
				Build()
		}
		clear(b)
		copy(b, raw)
		return nil

	case KindArray:
		return encodeArray(l, b, v, path)

	case KindStructure:
		return encodeStructure(l, b, v, path)

	case KindOpaque:
		raw, ok := v.([]byte)
		if !ok || uint32(len(raw)) != l.Size {
			return errors.New(errors.PhaseWrite, errors.KindUnsupported).
				Path(path...).
				Detail("opaque member of %d bytes accepts only a byte slice of that size", l.Size).
				Build()
		}
		copy(b, raw)
		return nil

	default:
		return errors.Unsupported(errors.PhaseWrite, "layout kind "+l.Kind.String())
	}
}

func encodePrimitive(l *Layout, b []byte, v any, path []string) error {
	enc := l.Encoding
	switch {
	case enc == EncBool:
		bv, ok := abi.CoerceToBool(v)
		if !ok {
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		b[0] = 0
		if bv {
			b[0] = 1
		}
		return nil

	case enc.IsFloat():
		f, ok := abi.CoerceToFloat64(v)
		if !ok {
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		if enc == EncFloat32 {
			if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return errors.Overflow(errors.PhaseWrite, path, v, l.String())
			}
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
		} else {
			binary.LittleEndian.PutUint64(b, math.Float64bits(f))
		}
		return nil

	case enc.IsSigned():
		n, ok := abi.CoerceToInt64(v)
		if !ok {
			if _, isNum := abi.CoerceToFloat64(v); isNum {
				return errors.Overflow(errors.PhaseWrite, path, v, l.String())
			}
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		if !abi.FitsSigned(n, l.Size) {
			return errors.Overflow(errors.PhaseWrite, path, v, l.String())
		}
		putUint(b, uint64(n))
		return nil

	default:
		u, ok := abi.CoerceToUint64(v)
		if !ok {
			if _, isNum := abi.CoerceToFloat64(v); isNum {
				return errors.Overflow(errors.PhaseWrite, path, v, l.String())
			}
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		if !abi.FitsUnsigned(u, l.Size) {
			return errors.Overflow(errors.PhaseWrite, path, v, l.String())
		}
		putUint(b, u)
		return nil
	}
}

func putUint(b []byte, u uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(u)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(u))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(u))
	default:
		binary.LittleEndian.PutUint64(b, u)
	}
}

func encodeArray(l *Layout, b []byte, v any, path []string) error {
	var elems []any
	switch a := v.(type) {
	case []any:
		elems = a
	case *nzarray.Array[any]:
		if a.Lower() != int(l.Lower) {
			return errors.New(errors.PhaseWrite, errors.KindInvalidInput).
				Path(path...).
				Detail("array starts at %d, layout starts at %d", a.Lower(), l.Lower).
				Build()
		}
		elems = a.Values()
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
		}
		elems = make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
	}

	if uint64(len(elems)) != uint64(l.Count) {
		return errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			Path(path...).
			TypeName(l.String()).
			Detail("%d elements for array of %d", len(elems), l.Count).
			Build()
	}
	size := l.Elem.Size
	for i, e := range elems {
		off := uint32(i) * size
		if err := encodeValue(l.Elem, b[off:off+size], e, appendIndex(path, int64(l.Lower)+int64(i))); err != nil {
			return err
		}
	}
	return nil
}

func encodeStructure(l *Layout, b []byte, v any, path []string) error {
	var get func(string) (any, bool)
	var keys func(func(string) bool)

	switch m := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		get = m.Get
		keys = func(yield func(string) bool) {
			for k := range m.Keys() {
				if !yield(k) {
					return
				}
			}
		}
	case map[string]any:
		get = func(k string) (any, bool) { x, ok := m[k]; return x, ok }
		keys = func(yield func(string) bool) {
			for k := range m {
				if !yield(k) {
					return
				}
			}
		}
	default:
		return errors.TypeMismatch(errors.PhaseWrite, path, abi.TypeName(v), l.String())
	}

	var unknown string
	keys(func(k string) bool {
		if _, ok := l.Field(k); !ok {
			unknown = k
			return false
		}
		return true
	})
	if unknown != "" {
		return errors.FieldUnknown(errors.PhaseWrite, path, unknown)
	}

	for _, f := range l.Fields {
		if f.Padding {
			continue
		}
		fv, ok := get(f.Name)
		if !ok {
			continue
		}
		if err := encodeValue(f.Layout, b[f.Offset:f.Offset+f.Layout.Size], fv, appendPath(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func appendPath(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

func appendIndex(path []string, i int64) []string {
	return appendPath(path, "["+strconv.FormatInt(i, 10)+"]")
}
