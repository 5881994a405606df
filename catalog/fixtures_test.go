package catalog

import (
	"context"
	"testing"

	"github.com/elliotchance/orderedmap/v3"

	adssymbols "github.com/wippyai/ads-symbols"
	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/records"
	"github.com/wippyai/ads-symbols/simulator"
)

var testAddr = adssymbols.Address{NetID: [6]byte{192, 168, 0, 10, 1, 1}, Port: adssymbols.DefaultPort}

func member(name, typ string, offset, size uint32, dims ...records.ArrayDim) *records.DataType {
	return &records.DataType{Name: name, Type: typ, Offset: offset, Size: size, Dims: dims}
}

func structType(name string, size uint32, members ...*records.DataType) *records.DataType {
	subs := orderedmap.NewOrderedMap[string, *records.DataType]()
	for _, m := range members {
		subs.Set(m.Name, m)
	}
	return &records.DataType{Name: name, Size: size, SubItems: subs}
}

func arrayType(name, elem string, size uint32, dims ...records.ArrayDim) *records.DataType {
	return &records.DataType{Name: name, Type: elem, Size: size, Dims: dims}
}

func symbol(name, typ string, group, offset, size uint32) *records.Symbol {
	return &records.Symbol{Name: name, Type: typ, IndexGroup: group, IndexOffset: offset, Size: size}
}

// machineTypes is a small program: nested structures, arrays with
// negative and multi-dimensional bounds, an alias, and a handful of
// types that degrade to opaque layouts.
func machineTypes() []*records.DataType {
	return []*records.DataType{
		structType("ST_POINT", 12,
			member("x", "DINT", 0, 4),
			member("y", "DINT", 8, 4)),
		structType("ST_AXIS", 24,
			member("pos", "LREAL", 0, 8),
			member("enabled", "BOOL", 8, 1),
			member("name", "STRING(10)", 9, 11)),
		{Name: "T_SPEED", Type: "LREAL", Size: 8},
		arrayType("T_BYTES", "BYTE", 4, records.ArrayDim{LowerBound: -2, Elements: 4}),
		arrayType("ARRAY [0..2] OF ST_AXIS", "ST_AXIS", 72, records.ArrayDim{LowerBound: 0, Elements: 3}),
		arrayType("ARRAY [-1..0,1..3] OF INT", "INT", 12,
			records.ArrayDim{LowerBound: -1, Elements: 2},
			records.ArrayDim{LowerBound: 1, Elements: 3}),
		structType("ST_MACHINE", 88,
			member("speed", "T_SPEED", 0, 8),
			member("axes", "ARRAY [0..2] OF ST_AXIS", 8, 72, records.ArrayDim{LowerBound: 0, Elements: 3}),
			member("mystery", "FB_VENDOR", 80, 4),
			member("count", "UINT", 84, 2)),
		structType("ST_UNION", 4,
			member("a", "DINT", 0, 4),
			member("b", "INT", 0, 2)),
		structType("ST_PACKED1", 10,
			member("a", "INT", 0, 2),
			member("b", "LREAL", 2, 8)),
		{Name: "T_WRONG", Type: "INT", Size: 4},
		structType("ST_NODE", 8,
			member("val", "DINT", 0, 4),
			member("next", "ST_NODE", 4, 4)),
	}
}

func machineSymbols() []*records.Symbol {
	return []*records.Symbol{
		symbol("MAIN.counter", "INT", 0x4040, 0, 2),
		symbol("MAIN.machine", "ST_MACHINE", 0x4040, 8, 88),
		symbol("MAIN.window", "T_BYTES", 0x4040, 96, 4),
		symbol("MAIN.grid", "ARRAY [-1..0,1..3] OF INT", 0x4040, 100, 12),
		symbol("GVL.label", "STRING(20)", 0x4020, 0, 21),
		symbol("GVL.ghost", "FB_MISSING", 0x4020, 24, 16),
		symbol("GVL.ptr", "POINTER TO INT", 0x4020, 40, 8),
		symbol("TopLevel", "BOOL", 0x4020, 48, 1),
	}
}

func blobs(t *testing.T, syms []*records.Symbol, dts []*records.DataType) (symBlob, dtBlob []byte) {
	t.Helper()
	symBlob, err := records.Concat(syms...)
	if err != nil {
		t.Fatalf("encode symbols: %v", err)
	}
	dtBlob, err = records.Concat(dts...)
	if err != nil {
		t.Fatalf("encode data types: %v", err)
	}
	return symBlob, dtBlob
}

func newMachineCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	symBlob, dtBlob := blobs(t, machineSymbols(), machineTypes())
	c, err := New(symBlob, dtBlob, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

// newMachineTarget installs the machine program in a simulator and loads
// a catalog bound to it.
func newMachineTarget(t *testing.T) (*Catalog, *simulator.Simulator) {
	t.Helper()
	symBlob, dtBlob := blobs(t, machineSymbols(), machineTypes())
	sim := simulator.New(testAddr)
	if err := sim.Install(symBlob, dtBlob); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	c, err := Load(context.Background(), sim, testAddr)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c, sim
}

func mustVariable(t *testing.T, c *Catalog, path string) *Variable {
	t.Helper()
	n, err := c.Lookup(path)
	if err != nil {
		t.Fatalf("Lookup(%q) failed: %v", path, err)
	}
	v, ok := n.(*Variable)
	if !ok {
		t.Fatalf("Lookup(%q) = %T, want *Variable", path, n)
	}
	return v
}

func hasDiagnostic(c *Catalog, typeName string, kind errors.Kind) bool {
	for _, d := range c.Diagnostics() {
		if d.Type == typeName && d.Kind == kind {
			return true
		}
	}
	return false
}
