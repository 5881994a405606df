package catalog

import (
	"bytes"
	"context"
	"slices"
	"testing"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/layout"
	"github.com/wippyai/ads-symbols/nzarray"
)

func TestVariable_NegativeLowerBound(t *testing.T) {
	c := newMachineCatalog(t)
	w := mustVariable(t, c, "MAIN.window")

	for idx, off := range map[int]uint32{-2: 0, -1: 1, 0: 2, 1: 3} {
		e, err := w.Index(idx)
		if err != nil {
			t.Fatalf("Index(%d) failed: %v", idx, err)
		}
		if e.Offset() != off {
			t.Errorf("Index(%d) offset = %d, want %d", idx, e.Offset(), off)
		}
	}
	for _, idx := range []int{-3, 2} {
		if _, err := w.Index(idx); !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("Index(%d): expected out of bounds, got %v", idx, err)
		}
	}
}

func TestVariable_MultiDimensional(t *testing.T) {
	c := newMachineCatalog(t)
	g := mustVariable(t, c, "MAIN.grid")

	n, err := g.Len()
	if err != nil || n != 6 {
		t.Fatalf("Len = %d, %v; want 6", n, err)
	}

	// row-major, last dimension fastest, 2 bytes per element
	for _, tt := range []struct {
		i, j int
		off  uint32
	}{
		{-1, 1, 0}, {-1, 3, 4}, {0, 1, 6}, {0, 3, 10},
	} {
		e, err := g.Index(tt.i, tt.j)
		if err != nil {
			t.Fatalf("Index(%d,%d) failed: %v", tt.i, tt.j, err)
		}
		if e.Offset() != tt.off {
			t.Errorf("Index(%d,%d) offset = %d, want %d", tt.i, tt.j, e.Offset(), tt.off)
		}
	}

	if _, err := g.Index(0); !errors.IsKind(err, errors.KindDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
	if _, err := g.Index(0, 4); !errors.IsKind(err, errors.KindOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}

	it, err := g.Iter()
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	var names []string
	var offsets []uint32
	for name, e := range it {
		names = append(names, name)
		offsets = append(offsets, e.Offset())
	}
	wantNames := []string{"[-1,1]", "[-1,2]", "[-1,3]", "[0,1]", "[0,2]", "[0,3]"}
	if !slices.Equal(names, wantNames) {
		t.Fatalf("Iter names = %v, want %v", names, wantNames)
	}
	if !slices.Equal(offsets, []uint32{0, 2, 4, 6, 8, 10}) {
		t.Fatalf("Iter offsets = %v", offsets)
	}
}

func TestVariable_StructureNavigation(t *testing.T) {
	c := newMachineCatalog(t)
	m := mustVariable(t, c, "MAIN.machine")

	it, err := m.Iter()
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	var names []string
	for name := range it {
		names = append(names, name)
	}
	if want := []string{"speed", "axes", "mystery", "count"}; !slices.Equal(names, want) {
		t.Fatalf("members = %v, want %v", names, want)
	}

	axes, err := m.Field("axes")
	if err != nil {
		t.Fatalf("Field(axes) failed: %v", err)
	}
	if n, _ := axes.Len(); n != 3 {
		t.Fatalf("axes Len = %d, want 3", n)
	}
	axis, err := axes.Index(2)
	if err != nil {
		t.Fatalf("Index(2) failed: %v", err)
	}
	enabled, err := axis.Field("enabled")
	if err != nil {
		t.Fatalf("Field(enabled) failed: %v", err)
	}
	if enabled.Offset() != 8+48+8 || enabled.FullName() != "MAIN.machine.axes[2].enabled" {
		t.Fatalf("enabled = %s at %d", enabled.FullName(), enabled.Offset())
	}

	info := enabled.Describe()
	if info.IndexGroup != 0x4040 || info.IndexOffset != 8+64 || info.Size != 1 || info.TypeName != "BOOL" {
		t.Fatalf("Describe = %+v", info)
	}
}

func TestVariable_NotIterable(t *testing.T) {
	c := newMachineCatalog(t)
	v := mustVariable(t, c, "MAIN.counter")

	if _, err := v.Iter(); !errors.IsKind(err, errors.KindNotIterable) {
		t.Fatalf("Iter: expected not iterable, got %v", err)
	}
	if _, err := v.Len(); !errors.IsKind(err, errors.KindNotAnArray) {
		t.Fatalf("Len: expected not an array, got %v", err)
	}
	if _, err := v.Index(0); !errors.IsKind(err, errors.KindNotAnArray) {
		t.Fatalf("Index: expected not an array, got %v", err)
	}
	if _, err := v.Field("x"); !errors.IsKind(err, errors.KindNoSuchField) {
		t.Fatalf("Field: expected no such field, got %v", err)
	}
}

func TestVariable_ReadWrite(t *testing.T) {
	ctx := context.Background()
	c, sim := newMachineTarget(t)

	counter := mustVariable(t, c, "MAIN.counter")
	if err := counter.Write(ctx, int16(-5)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := counter.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != int16(-5) {
		t.Fatalf("Read = %v (%T), want int16(-5)", got, got)
	}
	if s := counter.Render(ctx); s != "-5" {
		t.Fatalf("Render = %q", s)
	}

	axis := mustVariable(t, c, "MAIN.machine.axes[2]")
	if err := axis.Write(ctx, 1.5, true, "x-axis"); err != nil {
		t.Fatalf("Write(axis) failed: %v", err)
	}
	val, err := axis.Read(ctx)
	if err != nil {
		t.Fatalf("Read(axis) failed: %v", err)
	}
	m, ok := val.(*orderedmap.OrderedMap[string, any])
	if !ok {
		t.Fatalf("axis value is %T", val)
	}
	if pos, _ := m.Get("pos"); pos != 1.5 {
		t.Errorf("pos = %v", pos)
	}
	if name, _ := m.Get("name"); name != "x-axis" {
		t.Errorf("name = %v", name)
	}

	// the write landed at symbol offset + member offset
	region, _ := sim.Region(0x4040)
	if region[8+56+8] != 1 {
		t.Fatalf("enabled byte not at expected address: % x", region[8+56:8+56+24])
	}

	name := mustVariable(t, c, "MAIN.machine.axes[2].name")
	if s, err := name.Read(ctx); err != nil || s != "x-axis" {
		t.Fatalf("name = %v, %v", s, err)
	}
}

func TestVariable_ReadNonzeroArray(t *testing.T) {
	ctx := context.Background()
	c, _ := newMachineTarget(t)
	w := mustVariable(t, c, "MAIN.window")

	if err := w.Write(ctx, 1, 2, 3, 4); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	val, err := w.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	arr, ok := val.(*nzarray.Array[any])
	if !ok {
		t.Fatalf("value is %T, want *nzarray.Array[any]", val)
	}
	if arr.Lower() != -2 || arr.Len() != 4 {
		t.Fatalf("array bounds [%d..%d]", arr.Lower(), arr.Upper())
	}
	if first, _ := arr.At(-2); first != uint8(1) {
		t.Fatalf("At(-2) = %v", first)
	}

	e, _ := w.Index(1)
	if b, err := e.Read(ctx); err != nil || b != uint8(4) {
		t.Fatalf("element 1 = %v, %v", b, err)
	}

	if err := w.Write(ctx, 1, 2, 3, 4, 5); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid input for too many values, got %v", err)
	}
	if err := w.Write(ctx, 1, 256); !errors.IsKind(err, errors.KindOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestVariable_UnresolvedType(t *testing.T) {
	ctx := context.Background()
	c, _ := newMachineTarget(t)

	ghost := mustVariable(t, c, "GVL.ghost")
	if _, err := ghost.Read(ctx); !errors.IsKind(err, errors.KindUnknownType) {
		t.Fatalf("Read: expected unknown type, got %v", err)
	}
	if err := ghost.Write(ctx, 1); !errors.IsKind(err, errors.KindUnknownType) {
		t.Fatalf("Write: expected unknown type, got %v", err)
	}
	if !hasDiagnostic(c, "FB_MISSING", errors.KindUnknownType) {
		t.Fatal("missing diagnostic for unresolved symbol")
	}

	m := mustVariable(t, c, "MAIN.machine")
	mystery, err := m.Field("mystery")
	if err != nil {
		t.Fatalf("Field(mystery) failed: %v", err)
	}
	if _, err := mystery.Read(ctx); !errors.IsKind(err, errors.KindUnknownType) {
		t.Fatalf("mystery Read: expected unknown type, got %v", err)
	}

	// siblings stay usable
	count, _ := m.Field("count")
	if err := count.Write(ctx, 7); err != nil {
		t.Fatalf("count Write failed: %v", err)
	}
	if v, err := count.Read(ctx); err != nil || v != uint16(7) {
		t.Fatalf("count = %v, %v", v, err)
	}

	// the whole structure reads with the unknown member as raw bytes
	whole, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("machine Read failed: %v", err)
	}
	raw, _ := whole.(*orderedmap.OrderedMap[string, any]).Get("mystery")
	if b, ok := raw.([]byte); !ok || len(b) != 4 {
		t.Fatalf("mystery value = %v", raw)
	}

	if s := ghost.String(); s != "<Variable GVL.ghost (unknown type FB_MISSING)>" {
		t.Fatalf("String = %q", s)
	}
}

func TestVariable_Bytes(t *testing.T) {
	ctx := context.Background()
	c, sim := newMachineTarget(t)
	m := mustVariable(t, c, "MAIN.machine")
	mystery, _ := m.Field("mystery")

	r, err := mystery.Bytes(0, 4, 1)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if err := r.Write(ctx, []byte{0xDE, 0xAD, 0xBE, 0xEF}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := r.Read(ctx)
	if err != nil || !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("Read = % x, %v", got, err)
	}
	region, _ := sim.Region(0x4040)
	if !bytes.Equal(region[8+80:8+84], got) {
		t.Fatalf("bytes landed at the wrong address")
	}

	counter := mustVariable(t, c, "MAIN.counter")
	empty, err := counter.Bytes(1, 1, 1)
	if err != nil {
		t.Fatalf("empty range failed: %v", err)
	}
	if b, err := empty.Read(ctx); err != nil || len(b) != 0 {
		t.Fatalf("empty read = %v, %v", b, err)
	}

	ghost := mustVariable(t, c, "GVL.ghost")
	if _, err := ghost.Bytes(0, 16, 1); err != nil {
		t.Fatalf("ghost symbol range failed: %v", err)
	}

	tests := []struct {
		name              string
		v                 *Variable
		start, stop, step int
		kind              errors.Kind
	}{
		{"step", counter, 0, 2, 2, errors.KindInvalidInput},
		{"negative start", counter, -1, 1, 1, errors.KindOutOfBounds},
		{"reversed", counter, 2, 1, 1, errors.KindOutOfBounds},
		{"past end", counter, 0, 3, 1, errors.KindOutOfBounds},
		{"past symbol", ghost, 0, 17, 1, errors.KindOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.v.Bytes(tt.start, tt.stop, tt.step)
			if !errors.IsKind(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}

	if err := r.Write(ctx, []byte{1}); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid input for short write, got %v", err)
	}
}

func TestVariable_NoTransport(t *testing.T) {
	c := newMachineCatalog(t)
	v := mustVariable(t, c, "MAIN.counter")

	if _, err := v.Read(context.Background()); !errors.IsKind(err, errors.KindUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if s := v.String(); s != "<Variable MAIN.counter of type INT>" {
		t.Fatalf("String = %q", s)
	}
}

func TestVariable_Pointer(t *testing.T) {
	ctx := context.Background()
	c, _ := newMachineTarget(t)
	p := mustVariable(t, c, "GVL.ptr")

	l, err := p.Layout()
	if err != nil || l.Kind != layout.KindPointer {
		t.Fatalf("layout = %v, %v", l, err)
	}
	if err := p.Write(ctx, uint64(0xC0FFEE)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if v, err := p.Read(ctx); err != nil || v != uint64(0xC0FFEE) {
		t.Fatalf("Read = %v, %v", v, err)
	}
}
