package catalog

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	adssymbols "github.com/wippyai/ads-symbols"
	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/layout"
	"github.com/wippyai/ads-symbols/records"
)

// Diagnostic records a type that could not be laid out exactly.
type Diagnostic struct {
	Type   string
	Detail string
	Kind   errors.Kind
}

// Err converts the diagnostic into a structured error.
func (d Diagnostic) Err() error {
	return errors.New(errors.PhaseLayout, d.Kind).
		TypeName(d.Type).
		Detail("%s", d.Detail).
		Build()
}

type hintKey struct {
	name string
	size uint32
}

// Catalog holds the decoded tables, the memoized layouts and the
// variable tree of one controller program.
type Catalog struct {
	types     map[string]*records.DataType
	layouts   map[string]*layout.Layout
	hinted    map[hintKey]*layout.Layout
	resolving map[string]bool
	root      *Namespace
	typeOrder []string
	symbols   []*records.Symbol
	diags     []Diagnostic
	opts      options
	mu        sync.Mutex
}

// New builds a catalog from a symbol table blob and a data type table
// blob. Any malformed record aborts construction.
func New(symbols, datatypes []byte, opts ...Option) (*Catalog, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dts, err := records.DecodeAll(datatypes, records.DecodeDataType)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindMalformedRecord, err, "decode data type table")
	}
	syms, err := records.DecodeAll(symbols, records.DecodeSymbol)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindMalformedRecord, err, "decode symbol table")
	}

	c := &Catalog{
		types:     make(map[string]*records.DataType, len(dts)),
		layouts:   make(map[string]*layout.Layout, len(dts)),
		hinted:    make(map[hintKey]*layout.Layout),
		resolving: make(map[string]bool),
		symbols:   syms,
		opts:      o,
	}
	for _, d := range dts {
		if _, dup := c.types[d.Name]; !dup {
			c.typeOrder = append(c.typeOrder, d.Name)
		}
		c.types[d.Name] = d
	}

	c.mu.Lock()
	for _, name := range c.typeOrder {
		_, _ = c.layoutOf(name, nil)
	}
	c.mu.Unlock()

	c.root = newNamespace(nil)
	for _, s := range syms {
		v := c.symbolVariable(s)
		if v.layoutErr != nil {
			c.diag(s.Type, errors.KindUnknownType, "symbol "+s.Name+" has an unresolvable type")
		}
		c.root.insert(v)
	}

	Logger().Debug("catalog built",
		zap.Int("symbols", len(syms)),
		zap.Int("datatypes", len(c.typeOrder)),
		zap.Int("diagnostics", len(c.diags)))

	if o.strict && len(c.diags) > 0 {
		first := c.diags[0]
		return nil, errors.New(errors.PhaseLoad, first.Kind).
			TypeName(first.Type).
			Detail("%d diagnostic(s) in strict mode, first: %s", len(c.diags), first.Detail).
			Build()
	}
	return c, nil
}

// Load reads the upload info, symbol table and data type table from a
// target and builds a catalog bound to that transport.
func Load(ctx context.Context, t adssymbols.Transport, addr adssymbols.Address, opts ...Option) (*Catalog, error) {
	raw, err := t.Read(ctx, addr, adssymbols.SymUploadInfo2, 0, records.UploadInfoSize)
	if err != nil {
		return nil, errors.New(errors.PhaseTransport, errors.KindIO).
			Detail("read upload info from %s", addr).
			Cause(err).
			Build()
	}
	info, err := records.DecodeUploadInfo(raw)
	if err != nil {
		return nil, err
	}

	symBlob, err := t.Read(ctx, addr, adssymbols.SymUpload, 0, info.SymbolSize)
	if err != nil {
		return nil, errors.New(errors.PhaseTransport, errors.KindIO).
			Detail("read %d byte symbol table", info.SymbolSize).
			Cause(err).
			Build()
	}
	dtBlob, err := t.Read(ctx, addr, adssymbols.DataTypeUpload, 0, info.DataTypeSize)
	if err != nil {
		return nil, errors.New(errors.PhaseTransport, errors.KindIO).
			Detail("read %d byte data type table", info.DataTypeSize).
			Cause(err).
			Build()
	}

	opts = append(opts[:len(opts):len(opts)], WithTransport(t, addr))
	c, err := New(symBlob, dtBlob, opts...)
	if err != nil {
		return nil, err
	}

	if uint32(len(c.symbols)) != info.Symbols || uint32(len(c.typeOrder)) > info.DataTypes {
		Logger().Warn("upload info counts disagree with tables",
			zap.Uint32("symbols_declared", info.Symbols),
			zap.Int("symbols_decoded", len(c.symbols)),
			zap.Uint32("datatypes_declared", info.DataTypes),
			zap.Int("datatypes_decoded", len(c.typeOrder)))
	}
	return c, nil
}

// Root returns the top of the variable tree.
func (c *Catalog) Root() *Namespace {
	return c.root
}

// Symbols returns the decoded symbols in table order.
func (c *Catalog) Symbols() []*records.Symbol {
	return c.symbols
}

// DataType returns the top-level type record with the given name.
func (c *Catalog) DataType(name string) (*records.DataType, bool) {
	d, ok := c.types[name]
	return d, ok
}

// DataTypeNames returns top-level type names in table order.
func (c *Catalog) DataTypeNames() []string {
	return slices.Clone(c.typeOrder)
}

// Diagnostics returns every build-time and lazy synthesis diagnostic so far.
func (c *Catalog) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// PointerSize returns the configured pointer width.
func (c *Catalog) PointerSize() uint32 {
	return c.opts.pointerSize
}

func (c *Catalog) diag(typeName string, kind errors.Kind, detail string) {
	c.diags = append(c.diags, Diagnostic{Type: typeName, Kind: kind, Detail: detail})
	Logger().Warn("type layout degraded",
		zap.String("type", typeName),
		zap.String("kind", string(kind)),
		zap.String("detail", detail))
}
