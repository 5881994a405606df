package layout

import (
	"fmt"
	"strings"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/internal/abi"
)

// Layout is the byte-level description of a controller value. Which
// fields are meaningful depends on Kind.
type Layout struct {
	Elem     *Layout // Array element
	Fields   []Field // Structure fields in offset order, padding included
	Name     string  // type name, when the layout belongs to a named type
	Size     uint32
	Align    uint32
	Capacity uint32 // String characters, terminator excluded
	Count    uint32 // Array element count
	Lower    int32  // Array first index
	Kind     Kind
	Encoding Encoding // Primitive and Pointer
}

// Field is one member of a structure.
type Field struct {
	Layout  *Layout
	Name    string
	Offset  uint32
	Padding bool
}

// Dim is one array dimension.
type Dim struct {
	Lower int32
	Count uint32
}

// NewPrimitive returns a primitive layout of the encoding's width.
func NewPrimitive(name string, enc Encoding) *Layout {
	w := enc.Width()
	return &Layout{Kind: KindPrimitive, Name: name, Encoding: enc, Size: w, Align: w}
}

// NewString returns a STRING(capacity) layout.
func NewString(capacity uint32) *Layout {
	return &Layout{
		Kind:     KindString,
		Name:     fmt.Sprintf("STRING(%d)", capacity),
		Capacity: capacity,
		Size:     capacity + 1,
		Align:    1,
	}
}

// NewPointer returns a pointer layout of width bytes (4 or 8).
func NewPointer(name string, width uint32) *Layout {
	enc := EncUint64
	if width == 4 {
		enc = EncUint32
	}
	return &Layout{Kind: KindPointer, Name: name, Encoding: enc, Size: width, Align: width}
}

// NewOpaque returns an uninterpreted blob of size bytes.
func NewOpaque(size uint32) *Layout {
	return &Layout{Kind: KindOpaque, Size: size, Align: 1}
}

// NewArray returns count elements of elem indexed from lower.
func NewArray(lower int32, count uint32, elem *Layout) (*Layout, error) {
	size, ok := abi.SafeMulU32(count, elem.Size)
	if !ok {
		return nil, errors.New(errors.PhaseLayout, errors.KindOverflow).
			Detail("array of %d x %d bytes", count, elem.Size).
			Build()
	}
	return &Layout{
		Kind:  KindArray,
		Elem:  elem,
		Lower: lower,
		Count: count,
		Size:  size,
		Align: elem.Align,
	}, nil
}

// NewArrayDims wraps elem in one array per dimension. The last dimension
// varies fastest, so dims are applied innermost first.
func NewArrayDims(dims []Dim, elem *Layout) (*Layout, error) {
	l := elem
	for i := len(dims) - 1; i >= 0; i-- {
		var err error
		if l, err = NewArray(dims[i].Lower, dims[i].Count, l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewStructure places fields under the packing rule and returns the
// resulting structure. Every field must land exactly on its declared
// offset; otherwise a KindLayoutMismatch error names the first field
// that does not.
func NewStructure(name string, fields []Field) (*Layout, error) {
	cursor := uint32(0)
	maxAlign := uint32(1)

	for _, f := range fields {
		align := abi.PackedAlign(f.Layout.Align)
		offset := abi.AlignTo(cursor, align)
		if offset != f.Offset {
			return nil, errors.New(errors.PhaseLayout, errors.KindLayoutMismatch).
				Path(name, f.Name).
				TypeName(name).
				Detail("field declared at offset %d, packing places it at %d", f.Offset, offset).
				Build()
		}
		end, ok := abi.SafeAddU32(offset, f.Layout.Size)
		if !ok {
			return nil, errors.Overflow(errors.PhaseLayout, []string{name, f.Name}, f.Offset, "structure size")
		}
		cursor = end
		if align > maxAlign {
			maxAlign = align
		}
	}

	return &Layout{
		Kind:   KindStructure,
		Name:   name,
		Fields: fields,
		Size:   abi.AlignTo(cursor, maxAlign),
		Align:  maxAlign,
	}, nil
}

// Named returns a shallow copy of l carrying name. Built-in and
// synthesized layouts are shared, so renaming never mutates in place.
func (l *Layout) Named(name string) *Layout {
	if l.Name == name {
		return l
	}
	c := *l
	c.Name = name
	return &c
}

// Dims flattens nested arrays into their dimensions, outermost first.
func (l *Layout) Dims() []Dim {
	var dims []Dim
	for cur := l; cur.Kind == KindArray; cur = cur.Elem {
		dims = append(dims, Dim{Lower: cur.Lower, Count: cur.Count})
	}
	return dims
}

// Innermost returns the element layout beneath all array dimensions.
func (l *Layout) Innermost() *Layout {
	cur := l
	for cur.Kind == KindArray {
		cur = cur.Elem
	}
	return cur
}

// Field returns the named non-padding field of a structure.
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if !f.Padding && f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Members returns the non-padding fields of a structure in order.
func (l *Layout) Members() []Field {
	out := make([]Field, 0, len(l.Fields))
	for _, f := range l.Fields {
		if !f.Padding {
			out = append(out, f)
		}
	}
	return out
}

func (l *Layout) String() string {
	switch l.Kind {
	case KindPrimitive:
		if l.Name != "" {
			return l.Name
		}
		return l.Encoding.String()
	case KindString:
		return fmt.Sprintf("STRING(%d)", l.Capacity)
	case KindArray:
		dims := l.Dims()
		parts := make([]string, len(dims))
		for i, d := range dims {
			parts[i] = fmt.Sprintf("%d..%d", d.Lower, int64(d.Lower)+int64(d.Count)-1)
		}
		return fmt.Sprintf("ARRAY [%s] OF %s", strings.Join(parts, ","), l.Innermost())
	case KindStructure:
		if l.Name != "" {
			return l.Name
		}
		return "STRUCT"
	case KindPointer:
		return fmt.Sprintf("POINTER(%d)", l.Size)
	case KindOpaque:
		return fmt.Sprintf("OPAQUE(%d)", l.Size)
	default:
		return "unknown"
	}
}
