package simulator

import (
	"context"
	"fmt"
	"sync"

	adssymbols "github.com/wippyai/ads-symbols"
	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/internal/binary"
	"github.com/wippyai/ads-symbols/records"
)

// Simulator is an in-memory controller runtime.
type Simulator struct {
	regions map[uint32][]byte
	addr    adssymbols.Address
	reads   uint64
	writes  uint64
	mu      sync.RWMutex
	closed  bool
}

// New creates an empty simulator answering at addr.
func New(addr adssymbols.Address) *Simulator {
	return &Simulator{
		regions: make(map[uint32][]byte),
		addr:    addr,
	}
}

// Address returns the address the simulator answers at.
func (s *Simulator) Address() adssymbols.Address {
	return s.addr
}

// SetRegion replaces the contents of an index group with a copy of data.
func (s *Simulator) SetRegion(group uint32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed(errors.PhaseWrite)
	}
	s.regions[group] = append([]byte(nil), data...)
	return nil
}

// Grow extends an index group with zero bytes to at least size bytes.
func (s *Simulator) Grow(group, size uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed(errors.PhaseWrite)
	}
	s.grow(group, size)
	return nil
}

func (s *Simulator) grow(group, size uint32) {
	cur := s.regions[group]
	if uint32(len(cur)) >= size {
		return
	}
	next := make([]byte, size)
	copy(next, cur)
	s.regions[group] = next
}

// Region returns a copy of an index group's contents.
func (s *Simulator) Region(group uint32) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.regions[group]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), r...), true
}

// Read returns a copy of length bytes at offset in group.
func (s *Simulator) Read(ctx context.Context, addr adssymbols.Address, group, offset, length uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseRead, errors.KindIO, err, "context done")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	region, err := s.locate(errors.PhaseRead, addr, group, offset, length)
	if err != nil {
		return nil, err
	}
	s.reads++
	out := make([]byte, length)
	copy(out, region[offset:])
	return out, nil
}

// Write stores data at offset in group.
func (s *Simulator) Write(ctx context.Context, addr adssymbols.Address, group, offset uint32, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.PhaseWrite, errors.KindIO, err, "context done")
	}
	if uint64(len(data)) > uint64(^uint32(0)) {
		return errors.InvalidInput(errors.PhaseWrite, "write larger than 4 GiB")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	region, err := s.locate(errors.PhaseWrite, addr, group, offset, uint32(len(data)))
	if err != nil {
		return err
	}
	s.writes++
	copy(region[offset:], data)
	return nil
}

// locate checks the target and the range. Callers hold s.mu.
func (s *Simulator) locate(phase errors.Phase, addr adssymbols.Address, group, offset, length uint32) ([]byte, error) {
	if s.closed {
		return nil, errClosed(phase)
	}
	if addr != s.addr {
		return nil, errors.New(phase, errors.KindNotFound).
			Detail("no runtime at %s (simulating %s)", addr, s.addr).
			Build()
	}
	region, ok := s.regions[group]
	if !ok {
		return nil, errors.NotFound(phase, "index group", fmt.Sprintf("0x%X", group))
	}
	if uint64(offset)+uint64(length) > uint64(len(region)) {
		return nil, errors.New(phase, errors.KindOutOfBounds).
			Detail("0x%X:0x%X+%d outside %d byte region", group, offset, length, len(region)).
			Build()
	}
	return region, nil
}

// Stats returns the number of successful reads and writes.
func (s *Simulator) Stats() (reads, writes uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads, s.writes
}

// Close releases all regions. Later calls fail with KindClosed.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.regions = nil
	return nil
}

// Install publishes a symbol table blob and a data type table blob under
// the upload index groups, together with both upload info replies, and
// allocates zeroed memory covering every symbol. Both blobs must decode.
func (s *Simulator) Install(symbols, datatypes []byte) error {
	syms, err := records.DecodeAll(symbols, records.DecodeSymbol)
	if err != nil {
		return err
	}
	dts, err := records.DecodeAll(datatypes, records.DecodeDataType)
	if err != nil {
		return err
	}

	info := records.UploadInfo{
		Symbols:      uint32(len(syms)),
		SymbolSize:   uint32(len(symbols)),
		DataTypes:    uint32(len(dts)),
		DataTypeSize: uint32(len(datatypes)),
	}
	info2, _ := info.MarshalBinary()
	w := binary.NewWriter()
	w.WriteU32LE(info.Symbols)
	w.WriteU32LE(info.SymbolSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed(errors.PhaseLoad)
	}
	s.regions[adssymbols.SymUpload] = append([]byte(nil), symbols...)
	s.regions[adssymbols.DataTypeUpload] = append([]byte(nil), datatypes...)
	s.regions[adssymbols.SymUploadInfo2] = info2
	s.regions[adssymbols.SymUploadInfo] = w.Bytes()

	for _, sym := range syms {
		end := uint64(sym.IndexOffset) + uint64(sym.Size)
		if end > uint64(^uint32(0)) {
			return errors.Overflow(errors.PhaseLoad, []string{sym.Name}, end, "index offset")
		}
		s.grow(sym.IndexGroup, uint32(end))
	}
	return nil
}

func errClosed(phase errors.Phase) error {
	return errors.New(phase, errors.KindClosed).Detail("simulator closed").Build()
}
