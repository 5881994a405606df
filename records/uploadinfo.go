package records

import (
	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/internal/binary"
)

// UploadInfoSize is the length of the extended upload info reply.
const UploadInfoSize = 24

// UploadInfo sizes the symbol and data type tables before a bulk upload.
type UploadInfo struct {
	Symbols            uint32
	SymbolSize         uint32
	DataTypes          uint32
	DataTypeSize       uint32
	MaxDynamicSymbols  uint32
	UsedDynamicSymbols uint32
}

// DecodeUploadInfo decodes the extended upload info reply.
func DecodeUploadInfo(b []byte) (UploadInfo, error) {
	var u UploadInfo
	if len(b) < UploadInfoSize {
		return u, errors.New(errors.PhaseDecode, errors.KindMalformedRecord).
			Detail("upload info has %d bytes, want %d", len(b), UploadInfoSize).
			Build()
	}
	r := binary.NewReader(b)
	for _, dst := range []*uint32{
		&u.Symbols, &u.SymbolSize, &u.DataTypes, &u.DataTypeSize, &u.MaxDynamicSymbols, &u.UsedDynamicSymbols,
	} {
		*dst, _ = r.ReadU32LE()
	}
	return u, nil
}

// MarshalBinary encodes the upload info reply.
func (u UploadInfo) MarshalBinary() ([]byte, error) {
	w := binary.NewWriter()
	for _, v := range []uint32{
		u.Symbols, u.SymbolSize, u.DataTypes, u.DataTypeSize, u.MaxDynamicSymbols, u.UsedDynamicSymbols,
	} {
		w.WriteU32LE(v)
	}
	return w.Bytes(), nil
}
