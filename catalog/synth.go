package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/layout"
	"github.com/wippyai/ads-symbols/records"
)

// Layout returns the memoized layout for a type name. Built-in names
// resolve without the type table. A name that is neither built in nor in
// the table yields a KindUnknownType error.
func (c *Catalog) Layout(name string) (*layout.Layout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layoutOf(name, nil)
}

// layoutOf resolves name, falling back to an opaque layout of *hint
// bytes when the name is unknown. Callers hold c.mu.
func (c *Catalog) layoutOf(name string, hint *uint32) (*layout.Layout, error) {
	if l, ok := c.layouts[name]; ok {
		return l, nil
	}

	if l, ok := builtinLayout(name, c.opts.pointerSize); ok {
		c.layouts[name] = l
		return l, nil
	}

	rec, ok := c.types[name]
	if !ok {
		if hint == nil {
			return nil, errors.UnknownType(errors.PhaseLayout, nil, name)
		}
		key := hintKey{name: name, size: *hint}
		if l, ok := c.hinted[key]; ok {
			return l, nil
		}
		c.diag(name, errors.KindUnknownType,
			fmt.Sprintf("unknown type replaced with %d opaque bytes", *hint))
		l := layout.NewOpaque(*hint).Named(name)
		c.hinted[key] = l
		return l, nil
	}

	if c.resolving[name] {
		c.diag(name, errors.KindInvalidData, "cyclic type reference")
		size := rec.Size
		if hint != nil {
			size = *hint
		}
		return layout.NewOpaque(size).Named(name), nil
	}
	c.resolving[name] = true
	defer delete(c.resolving, name)

	l := c.synthesize(rec)
	c.layouts[name] = l
	Logger().Debug("synthesized layout",
		zap.String("type", name),
		zap.Stringer("layout", l),
		zap.Stringer("kind", l.Kind),
		zap.Uint32("size", l.Size))
	return l, nil
}

// synthesize builds the layout of one record. It never fails: every
// inconsistency degrades to an opaque layout of the declared size and
// leaves a diagnostic.
func (c *Catalog) synthesize(rec *records.DataType) *layout.Layout {
	opaque := func(kind errors.Kind, format string, args ...any) *layout.Layout {
		c.diag(rec.Name, kind, fmt.Sprintf(format, args...))
		return layout.NewOpaque(rec.Size).Named(rec.Name)
	}

	count, ok := rec.ElementCount()
	if !ok {
		return opaque(errors.KindOverflow, "element count overflows")
	}
	if count == 0 {
		return opaque(errors.KindInvalidData, "array with zero elements")
	}
	elemSize := rec.Size / count
	if rec.Size%count != 0 {
		return opaque(errors.KindInvalidData, "size %d not divisible by %d elements", rec.Size, count)
	}

	var base *layout.Layout
	switch {
	case rec.IsPointer():
		base = layout.NewPointer(rec.Name, c.opts.pointerSize)

	case rec.Type != "" && !rec.HasSubItems():
		l, err := c.layoutOf(rec.Type, &elemSize)
		if err != nil {
			return opaque(errors.KindUnknownType, "referenced type %q: %v", rec.Type, err)
		}
		base = l

	case rec.HasSubItems() && rec.Type == "":
		base = c.structure(rec, elemSize)

	default:
		return opaque(errors.KindUnsupported, "record is neither alias, array nor structure")
	}

	result := base
	if rec.IsArray() {
		dims := make([]layout.Dim, len(rec.Dims))
		for i, d := range rec.Dims {
			dims[i] = layout.Dim{Lower: d.LowerBound, Count: d.Elements}
		}
		arr, err := layout.NewArrayDims(dims, base)
		if err != nil {
			return opaque(errors.KindOverflow, "%v", err)
		}
		result = arr
	}

	if result.Size != rec.Size {
		mismatch := errors.LayoutMismatch(rec.Name, rec.Size, result.Size)
		return opaque(mismatch.Kind, "%s", mismatch.Detail)
	}
	return result.Named(rec.Name)
}

// structure lays out the sub-items of rec in declared order with explicit
// padding. Members overlapping the running cursor are skipped.
func (c *Catalog) structure(rec *records.DataType, size uint32) *layout.Layout {
	var fields []layout.Field
	cursor := uint32(0)

	for name, sub := range rec.SubItems.AllFromFront() {
		if sub.Offset > cursor {
			fields = append(fields, padding(cursor, sub.Offset-cursor))
			cursor = sub.Offset
		}
		if sub.Offset < cursor {
			c.diag(rec.Name, errors.KindUnsupported,
				fmt.Sprintf("member %q at offset %d overlaps previous member ending at %d", name, sub.Offset, cursor))
			continue
		}
		fields = append(fields, layout.Field{
			Name:   name,
			Offset: sub.Offset,
			Layout: c.memberLayout(rec.Name, sub),
		})
		cursor += sub.Size
	}
	if cursor < size {
		fields = append(fields, padding(cursor, size-cursor))
	}

	s, err := layout.NewStructure(rec.Name, fields)
	if err != nil {
		c.diag(rec.Name, errors.KindLayoutMismatch, err.Error())
		return layout.NewOpaque(size).Named(rec.Name)
	}
	return s
}

// memberLayout resolves a sub-item by its type name, or from the
// sub-item record itself when it carries its own dimensions or members.
func (c *Catalog) memberLayout(owner string, sub *records.DataType) *layout.Layout {
	inline := sub.IsArray() || sub.HasSubItems()
	if sub.Type != "" {
		l, err := c.layoutOf(sub.Type, &sub.Size)
		if err == nil && (l.Size == sub.Size || !inline) {
			return l
		}
	}
	if inline {
		return c.synthesize(sub)
	}
	c.diag(owner, errors.KindUnsupported,
		fmt.Sprintf("member %q has no type reference", sub.Name))
	return layout.NewOpaque(sub.Size)
}

func padding(offset, size uint32) layout.Field {
	return layout.Field{Offset: offset, Layout: layout.NewOpaque(size), Padding: true}
}
