package adssymbols

import "context"

// Index groups of the ADS symbol service.
const (
	SymHandleByName  uint32 = 0xF003 // acquire a handle for a symbol name
	SymValueByHandle uint32 = 0xF005 // read/write a value through a handle
	SymUpload        uint32 = 0xF00B // bulk symbol table
	SymUploadInfo    uint32 = 0xF00C // symbol count and blob size
	DataTypeUpload   uint32 = 0xF00E // bulk data type table
	SymUploadInfo2   uint32 = 0xF00F // symbol and data type counts and blob sizes
)

// Control codes for controller state changes.
const (
	ControlReset uint16 = 2
	ControlStart uint16 = 5
	ControlStop  uint16 = 6
)

// Transport moves raw bytes to and from a controller. Implementations
// handle connection management, framing and retries; the catalog only
// needs addressed reads and writes.
type Transport interface {
	Read(ctx context.Context, addr Address, group, offset, length uint32) ([]byte, error)
	Write(ctx context.Context, addr Address, group, offset uint32, data []byte) error
}
