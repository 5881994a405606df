package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/records"
)

type fixture struct {
	symbols   string
	datatypes string
	image     string
}

func writeFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	subs := orderedmap.NewOrderedMap[string, *records.DataType]()
	subs.Set("x", &records.DataType{Name: "x", Type: "DINT", Offset: 0, Size: 4})
	subs.Set("y", &records.DataType{Name: "y", Type: "DINT", Offset: 8, Size: 4})
	dtBlob, err := records.Concat(&records.DataType{Name: "ST_POINT", Size: 12, SubItems: subs})
	if err != nil {
		t.Fatalf("encode data types: %v", err)
	}
	symBlob, err := records.Concat(
		&records.Symbol{Name: "MAIN.p", Type: "ST_POINT", IndexGroup: 0x4040, IndexOffset: 0, Size: 12},
		&records.Symbol{Name: "MAIN.n", Type: "INT", IndexGroup: 0x4040, IndexOffset: 12, Size: 2},
		&records.Symbol{Name: "GVL.u", Type: "FB_X", IndexGroup: 0x4040, IndexOffset: 16, Size: 4},
	)
	if err != nil {
		t.Fatalf("encode symbols: %v", err)
	}

	image := make([]byte, 14)
	binary.LittleEndian.PutUint32(image[0:], 7)
	binary.LittleEndian.PutUint32(image[8:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint16(image[12:], 3)

	f := fixture{
		symbols:   filepath.Join(dir, "symbols.bin"),
		datatypes: filepath.Join(dir, "datatypes.bin"),
		image:     filepath.Join(dir, "memory.bin"),
	}
	for path, data := range map[string][]byte{f.symbols: symBlob, f.datatypes: dtBlob, f.image: image} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--symbols", f.symbols, "--datatypes", f.datatypes, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestTree(t *testing.T) {
	f := writeFixture(t)
	out, err := f.run(t, "tree")
	if err != nil {
		t.Fatalf("tree failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"MAIN/",
		"  p ST_POINT @0x4040:0x0 [12]",
		"  n INT @0x4040:0xC [2]",
		"  u FB_X @0x4040:0x10 [4] unresolved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = f.run(t, "tree", "MAIN.p", "--depth", "1")
	if err != nil {
		t.Fatalf("tree MAIN.p failed: %v", err)
	}
	if !strings.Contains(out, "  y DINT @0x4040:0x8 [4]") {
		t.Errorf("expanded tree missing member y:\n%s", out)
	}
}

func TestTypesAndLayout(t *testing.T) {
	f := writeFixture(t)
	out, err := f.run(t, "types")
	if err != nil {
		t.Fatalf("types failed: %v", err)
	}
	if !strings.Contains(out, "ST_POINT ST_POINT [12]") {
		t.Errorf("types output:\n%s", out)
	}

	out, err = f.run(t, "--json", "layout", "ST_POINT")
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	var e layoutEntry
	if err := json.Unmarshal([]byte(out), &e); err != nil {
		t.Fatalf("layout JSON: %v\n%s", err, out)
	}
	if e.Kind != "structure" || len(e.Fields) != 3 || !e.Fields[1].Padding || e.Fields[2].Offset != 8 {
		t.Fatalf("layout = %+v", e)
	}
}

func TestDiag(t *testing.T) {
	f := writeFixture(t)
	out, err := f.run(t, "diag")
	if err != nil {
		t.Fatalf("diag failed: %v", err)
	}
	if !strings.Contains(out, "FB_X unknown_type") {
		t.Errorf("diag output:\n%s", out)
	}

	if _, err := f.run(t, "--strict", "diag"); err == nil {
		t.Fatal("strict mode accepted an unresolved symbol")
	}
}

func TestRead(t *testing.T) {
	f := writeFixture(t)
	out, err := f.run(t, "--json", "--image", "0x4040="+f.image, "read", "MAIN.p", "MAIN.n")
	if err != nil {
		t.Fatalf("read failed: %v\n%s", err, out)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("read JSON: %v\n%s", err, out)
	}
	p, _ := got["MAIN.p"].(map[string]any)
	if p["x"] != 7.0 || p["y"] != -1.0 || got["MAIN.n"] != 3.0 {
		t.Fatalf("values = %v", got)
	}

	out, err = f.run(t, "read", "MAIN.n")
	if err != nil || !strings.Contains(out, "MAIN.n = 0") {
		t.Fatalf("read without image = %q, %v", out, err)
	}

	if _, err := f.run(t, "read", "GVL.u"); !errors.IsKind(err, errors.KindUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
	if _, err := f.run(t, "read", "MAIN"); !errors.IsKind(err, errors.KindUnsupported) {
		t.Fatalf("expected unsupported for a namespace, got %v", err)
	}
}

func TestConfig(t *testing.T) {
	f := writeFixture(t)
	out, err := f.run(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, "symbols: "+f.symbols) || !strings.Contains(out, "level: error") {
		t.Errorf("config output:\n%s", out)
	}

	if _, err := f.run(t, "--pointer-size", "6", "config"); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid pointer size, got %v", err)
	}
}
