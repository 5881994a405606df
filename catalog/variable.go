package catalog

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/layout"
	"github.com/wippyai/ads-symbols/records"
)

// Variable is a typed view of a region inside one symbol: the symbol's
// address plus a byte offset and a resolved type. Variables are
// immutable; navigation returns new Variables.
type Variable struct {
	cat       *Catalog
	symbol    *records.Symbol
	record    *records.DataType // concrete type record, nil for built-ins
	layout    *layout.Layout
	layoutErr error
	path      []string
	typeName  string
	offset    uint32
}

// Info is the metadata of a Variable.
type Info struct {
	Layout      *layout.Layout
	LayoutErr   error
	Symbol      *records.Symbol
	DataType    *records.DataType
	FullName    string
	TypeName    string
	Path        []string
	IndexGroup  uint32
	IndexOffset uint32
	Offset      uint32
	Size        uint32
}

func (c *Catalog) symbolVariable(s *records.Symbol) *Variable {
	v := &Variable{cat: c, symbol: s, path: strings.Split(s.Name, ".")}
	v.resolve(s.Type)
	return v
}

// resolve binds the variable to a type name, following aliases to the
// concrete record used for navigation.
func (v *Variable) resolve(name string) {
	v.layout, v.layoutErr = v.cat.Layout(name)
	v.typeName, v.record = v.cat.concrete(name)
}

// concrete follows alias records from name to the underlying type.
func (c *Catalog) concrete(name string) (string, *records.DataType) {
	rec := c.types[name]
	for hops := 0; rec != nil && rec.IsAlias() && hops <= len(c.types); hops++ {
		next, ok := c.types[rec.Type]
		name = rec.Type
		if !ok {
			return name, nil
		}
		rec = next
	}
	return name, rec
}

func (v *Variable) child(seg string, offset uint32) *Variable {
	path := make([]string, len(v.path), len(v.path)+1)
	copy(path, v.path)
	return &Variable{
		cat:    v.cat,
		symbol: v.symbol,
		path:   append(path, seg),
		offset: offset,
	}
}

// Name returns the last path segment.
func (v *Variable) Name() string {
	return v.path[len(v.path)-1]
}

// Path returns the segments from the root to this variable. Element
// segments look like "[2]" or "[-1,3]".
func (v *Variable) Path() []string {
	return v.path
}

// FullName joins the path the way the controller spells it, for example
// "MAIN.axes[2].pos".
func (v *Variable) FullName() string {
	var b strings.Builder
	for i, seg := range v.path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// TypeName returns the concrete type name after alias resolution.
func (v *Variable) TypeName() string {
	return v.typeName
}

// Layout returns the resolved layout, or the resolution error.
func (v *Variable) Layout() (*layout.Layout, error) {
	return v.layout, v.layoutErr
}

// Offset returns the byte offset inside the symbol.
func (v *Variable) Offset() uint32 {
	return v.offset
}

// Field returns the structure member with the given name.
func (v *Variable) Field(name string) (*Variable, error) {
	if v.layoutErr != nil || v.layout.Kind != layout.KindStructure || v.record == nil {
		return nil, errors.New(errors.PhaseAccess, errors.KindNoSuchField).
			Path(v.path...).
			TypeName(v.typeName).
			Detail("not a structure, no member %q", name).
			Cause(v.layoutErr).
			Build()
	}
	f, ok := v.layout.Field(name)
	if !ok {
		return nil, errors.NoSuchField(v.path, v.typeName, name)
	}

	child := v.child(name, v.offset+f.Offset)
	sub, _ := v.record.SubItem(name)
	if sub == nil {
		child.layout = f.Layout
		child.typeName = f.Layout.String()
		return child, nil
	}
	v.cat.bindMember(child, sub, f.Layout)
	return child, nil
}

// bindMember types a member variable. Members declared through a named
// type resolve by name, so an unknown member type stays unresolved on
// the member alone; members carrying their own dimensions or sub-items
// use the synthesized field layout and the member record.
func (c *Catalog) bindMember(child *Variable, sub *records.DataType, fieldLayout *layout.Layout) {
	inline := sub.IsArray() || sub.HasSubItems()
	if sub.Type != "" {
		_, rec := c.concrete(sub.Type)
		if !inline || (rec != nil && rec.Size == sub.Size) {
			child.resolve(sub.Type)
			return
		}
	}
	child.layout = fieldLayout
	child.record = sub
	child.typeName = fieldLayout.String()
}

// Index returns the array element at the given index, one component per
// declared dimension. Components are absolute indices within each
// dimension's declared range.
func (v *Variable) Index(idx ...int) (*Variable, error) {
	if err := v.requireArray(); err != nil {
		return nil, err
	}
	dims := v.record.Dims
	if len(idx) != len(dims) {
		return nil, errors.New(errors.PhaseAccess, errors.KindDimensionMismatch).
			Path(v.path...).
			TypeName(v.typeName).
			Detail("%d index components for %d dimensions", len(idx), len(dims)).
			Build()
	}

	linear := uint64(0)
	for d, dim := range dims {
		pos := int64(idx[d]) - int64(dim.LowerBound)
		if pos < 0 || pos >= int64(dim.Elements) {
			return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
				Path(v.path...).
				TypeName(v.typeName).
				Detail("index %d outside [%d..%d] in dimension %d", idx[d], dim.LowerBound, dim.Upper(), d).
				Value(idx[d]).
				Build()
		}
		linear = linear*uint64(dim.Elements) + uint64(pos)
	}

	if v.record.Type == "" {
		return nil, errors.Unsupported(errors.PhaseAccess,
			fmt.Sprintf("%s: array elements without a named element type", v.FullName()))
	}
	elemSize, err := v.elementSize()
	if err != nil {
		return nil, err
	}

	child := v.child(indexSegment(idx), v.offset+uint32(linear)*elemSize)
	child.resolve(v.record.Type)
	return child, nil
}

func (v *Variable) requireArray() error {
	if v.layoutErr != nil || v.layout.Kind != layout.KindArray || v.record == nil || !v.record.IsArray() {
		return errors.New(errors.PhaseAccess, errors.KindNotAnArray).
			Path(v.path...).
			TypeName(v.typeName).
			Cause(v.layoutErr).
			Build()
	}
	return nil
}

func (v *Variable) elementSize() (uint32, error) {
	count, ok := v.record.ElementCount()
	if !ok || count == 0 || v.record.Size%count != 0 {
		return 0, errors.InvalidData(errors.PhaseAccess, v.path,
			fmt.Sprintf("size %d does not split into %d elements", v.record.Size, count))
	}
	return v.record.Size / count, nil
}

func indexSegment(idx []int) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Len returns the total number of array elements across all dimensions.
func (v *Variable) Len() (int, error) {
	if err := v.requireArray(); err != nil {
		return 0, err
	}
	n, ok := v.record.ElementCount()
	if !ok {
		return 0, errors.Overflow(errors.PhaseAccess, v.path, v.record.Dims, "element count")
	}
	return int(n), nil
}

// Iter yields the children of a structure (member name, member) in
// declared order, or of an array ("[i,j]", element) in row-major order
// with the last dimension varying fastest.
func (v *Variable) Iter() (iter.Seq2[string, *Variable], error) {
	if v.layoutErr == nil && v.layout.Kind == layout.KindStructure && v.record != nil {
		members := v.layout.Members()
		return func(yield func(string, *Variable) bool) {
			for _, f := range members {
				child, err := v.Field(f.Name)
				if err != nil {
					continue
				}
				if !yield(f.Name, child) {
					return
				}
			}
		}, nil
	}

	if v.requireArray() == nil {
		if v.record.Type == "" {
			return nil, errors.Unsupported(errors.PhaseAccess,
				fmt.Sprintf("%s: array elements without a named element type", v.FullName()))
		}
		if _, err := v.elementSize(); err != nil {
			return nil, err
		}
		dims := v.record.Dims
		return func(yield func(string, *Variable) bool) {
			idx := make([]int, len(dims))
			for i, d := range dims {
				if d.Elements == 0 {
					return
				}
				idx[i] = int(d.LowerBound)
			}
			for {
				child, err := v.Index(idx...)
				if err != nil {
					return
				}
				if !yield(indexSegment(idx), child) {
					return
				}
				d := len(dims) - 1
				for ; d >= 0; d-- {
					idx[d]++
					if int64(idx[d]) <= dims[d].Upper() {
						break
					}
					idx[d] = int(dims[d].LowerBound)
				}
				if d < 0 {
					return
				}
			}
		}, nil
	}

	return nil, errors.New(errors.PhaseAccess, errors.KindNotIterable).
		Path(v.path...).
		TypeName(v.typeName).
		Build()
}

// Read fetches and decodes the current value. See the layout package for
// the Go shape of each layout kind.
func (v *Variable) Read(ctx context.Context) (any, error) {
	raw, err := v.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}
	val, err := layout.Decode(v.layout, raw)
	if err != nil {
		return nil, errors.New(errors.PhaseRead, errors.KindInvalidData).
			Path(v.path...).
			TypeName(v.typeName).
			Cause(err).
			Build()
	}
	return val, nil
}

// ReadRaw fetches the bytes covered by the resolved layout.
func (v *Variable) ReadRaw(ctx context.Context) ([]byte, error) {
	if err := v.requireResolved(errors.PhaseRead); err != nil {
		return nil, err
	}
	return v.fetch(ctx, v.offset, v.layout.Size)
}

// Write stores a value. A single argument is a value shaped like the
// layout; several arguments fill array elements or structure members
// positionally, leaving the rest zero.
func (v *Variable) Write(ctx context.Context, args ...any) error {
	if err := v.requireResolved(errors.PhaseWrite); err != nil {
		return err
	}
	data, err := layout.Construct(v.layout, args...)
	if err != nil {
		return errors.New(errors.PhaseWrite, errors.KindInvalidInput).
			Path(v.path...).
			TypeName(v.typeName).
			Cause(err).
			Build()
	}
	return v.store(ctx, v.offset, data)
}

func (v *Variable) requireResolved(phase errors.Phase) error {
	if v.layoutErr != nil {
		return errors.New(phase, errors.KindUnknownType).
			Path(v.path...).
			TypeName(v.typeName).
			Detail("variable type is unresolved").
			Cause(v.layoutErr).
			Build()
	}
	return nil
}

func (v *Variable) fetch(ctx context.Context, offset, length uint32) ([]byte, error) {
	o := v.cat.opts
	if o.transport == nil {
		return nil, errors.Unsupported(errors.PhaseRead, "catalog has no transport")
	}
	raw, err := o.transport.Read(ctx, o.addr, v.symbol.IndexGroup, v.symbol.IndexOffset+offset, length)
	if err != nil {
		return nil, errors.New(errors.PhaseTransport, errors.KindIO).
			Path(v.path...).
			Detail("read %d bytes at 0x%X:0x%X", length, v.symbol.IndexGroup, v.symbol.IndexOffset+offset).
			Cause(err).
			Build()
	}
	if uint32(len(raw)) != length {
		return nil, errors.New(errors.PhaseTransport, errors.KindIO).
			Path(v.path...).
			Detail("short read: %d of %d bytes", len(raw), length).
			Build()
	}
	return raw, nil
}

func (v *Variable) store(ctx context.Context, offset uint32, data []byte) error {
	o := v.cat.opts
	if o.transport == nil {
		return errors.Unsupported(errors.PhaseWrite, "catalog has no transport")
	}
	if err := o.transport.Write(ctx, o.addr, v.symbol.IndexGroup, v.symbol.IndexOffset+offset, data); err != nil {
		return errors.New(errors.PhaseTransport, errors.KindIO).
			Path(v.path...).
			Detail("write %d bytes at 0x%X:0x%X", len(data), v.symbol.IndexGroup, v.symbol.IndexOffset+offset).
			Cause(err).
			Build()
	}
	return nil
}

// Describe returns the variable's metadata without any I/O.
func (v *Variable) Describe() Info {
	info := Info{
		Layout:      v.layout,
		LayoutErr:   v.layoutErr,
		Symbol:      v.symbol,
		DataType:    v.record,
		FullName:    v.FullName(),
		TypeName:    v.typeName,
		Path:        v.path,
		IndexGroup:  v.symbol.IndexGroup,
		IndexOffset: v.symbol.IndexOffset + v.offset,
		Offset:      v.offset,
	}
	if size, ok := v.size(); ok {
		info.Size = size
	}
	return info
}

// size is the byte extent of the variable, known from its layout, its
// type record, or for a whole symbol from the symbol record.
func (v *Variable) size() (uint32, bool) {
	switch {
	case v.layoutErr == nil:
		return v.layout.Size, true
	case v.record != nil:
		return v.record.Size, true
	case v.offset == 0 && len(v.path) == len(strings.Split(v.symbol.Name, ".")):
		return v.symbol.Size, true
	}
	return 0, false
}

// String describes the variable without reading it.
func (v *Variable) String() string {
	if v.layoutErr != nil {
		return fmt.Sprintf("<Variable %s (unknown type %s)>", v.FullName(), v.typeName)
	}
	return fmt.Sprintf("<Variable %s of type %s>", v.FullName(), v.typeName)
}

// Render reads the variable and formats its current value.
func (v *Variable) Render(ctx context.Context) string {
	if v.layoutErr != nil {
		return v.String()
	}
	val, err := v.Read(ctx)
	if err != nil {
		return fmt.Sprintf("<Variable %s of type %s: %v>", v.FullName(), v.typeName, err)
	}
	return fmt.Sprint(val)
}

// ByteRange is a raw window [Start, Stop) inside a variable. It bypasses
// type resolution, so it works on variables of unknown type too.
type ByteRange struct {
	v     *Variable
	Start uint32
	Stop  uint32
}

// Bytes returns the raw window [start, stop) relative to the variable.
// Only a step of 1 is accepted. When the variable's extent is known the
// window must lie inside it.
func (v *Variable) Bytes(start, stop, step int) (*ByteRange, error) {
	if step != 1 {
		return nil, errors.InvalidInput(errors.PhaseAccess,
			fmt.Sprintf("byte range step must be 1, got %d", step))
	}
	if start < 0 || stop < start {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Path(v.path...).
			Detail("byte range [%d:%d]", start, stop).
			Build()
	}
	if size, ok := v.size(); ok && uint64(stop) > uint64(size) {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Path(v.path...).
			Detail("byte range [%d:%d] exceeds %d byte variable", start, stop, size).
			Build()
	}
	if uint64(stop) > uint64(^uint32(0)) {
		return nil, errors.Overflow(errors.PhaseAccess, v.path, stop, "UDINT")
	}
	return &ByteRange{v: v, Start: uint32(start), Stop: uint32(stop)}, nil
}

// Len returns the window width in bytes.
func (r *ByteRange) Len() int {
	return int(r.Stop - r.Start)
}

// Read fetches the bytes of the window.
func (r *ByteRange) Read(ctx context.Context) ([]byte, error) {
	if r.Len() == 0 {
		return []byte{}, nil
	}
	return r.v.fetch(ctx, r.v.offset+r.Start, r.Stop-r.Start)
}

// Write stores data into the window; its length must match exactly.
func (r *ByteRange) Write(ctx context.Context, data []byte) error {
	if len(data) != r.Len() {
		return errors.InvalidInput(errors.PhaseWrite,
			fmt.Sprintf("%d bytes for a %d byte range", len(data), r.Len()))
	}
	if len(data) == 0 {
		return nil
	}
	return r.v.store(ctx, r.v.offset+r.Start, data)
}
