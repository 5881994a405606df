package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wippyai/ads-symbols/layout"
	"github.com/wippyai/ads-symbols/records"
)

// defaultStringLength is the capacity of a plain STRING declaration.
const defaultStringLength = 80

var builtins = map[string]*layout.Layout{}

func init() {
	prims := []struct {
		enc   layout.Encoding
		names []string
	}{
		{layout.EncBool, []string{"BOOL", "BIT"}},
		{layout.EncInt8, []string{"SINT"}},
		{layout.EncUint8, []string{"USINT", "BYTE"}},
		{layout.EncInt16, []string{"INT"}},
		{layout.EncUint16, []string{"UINT", "WORD"}},
		{layout.EncInt32, []string{"DINT"}},
		{layout.EncUint32, []string{"UDINT", "DWORD", "TIME", "TOD", "TIME_OF_DAY", "DATE", "DT", "DATE_AND_TIME", "OTCID"}},
		{layout.EncInt64, []string{"LINT"}},
		{layout.EncUint64, []string{"ULINT", "LWORD", "LTIME"}},
		{layout.EncFloat32, []string{"REAL"}},
		{layout.EncFloat64, []string{"LREAL"}},
	}
	for _, p := range prims {
		for _, n := range p.names {
			builtins[n] = layout.NewPrimitive(n, p.enc)
		}
	}
	builtins["STRING"] = layout.NewString(defaultStringLength).Named("STRING")
}

var stringPattern = regexp.MustCompile(`^STRING\((\d+)\)$`)

// builtinLayout resolves names that never need the type table.
func builtinLayout(name string, pointerSize uint32) (*layout.Layout, bool) {
	if l, ok := builtins[name]; ok {
		return l, true
	}
	if name == "PVOID" || strings.HasPrefix(name, records.PointerPrefix) {
		return layout.NewPointer(name, pointerSize), true
	}
	if m := stringPattern.FindStringSubmatch(name); m != nil {
		n, err := strconv.ParseUint(m[1], 10, 31)
		if err != nil {
			return nil, false
		}
		return layout.NewString(uint32(n)), true
	}
	return nil, false
}
