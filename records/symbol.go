package records

import (
	"github.com/wippyai/ads-symbols/internal/binary"
)

// SymbolHeaderSize is the fixed part of a symbol record: six uint32
// fields followed by three uint16 fields.
const SymbolHeaderSize = 30

// Symbol is a decoded symbol record: one addressable variable.
type Symbol struct {
	Name        string
	Type        string
	Comment     string
	IndexGroup  uint32
	IndexOffset uint32
	Size        uint32
	ADSType     ADSType
	Flags       uint32
}

// DecodeSymbol decodes one symbol record.
func DecodeSymbol(rec []byte) (*Symbol, error) {
	r, err := header(rec, SymbolHeaderSize, "symbol record")
	if err != nil {
		return nil, err
	}
	_ = r.Skip(4)

	s := &Symbol{}
	var adsType uint32
	for _, dst := range []*uint32{&s.IndexGroup, &s.IndexOffset, &s.Size, &adsType, &s.Flags} {
		if *dst, err = r.ReadU32LE(); err != nil {
			return nil, malformed(r, "symbol header", err)
		}
	}
	s.ADSType = ADSType(adsType)

	var nameLen, typeLen, commentLen uint16
	for _, dst := range []*uint16{&nameLen, &typeLen, &commentLen} {
		if *dst, err = r.ReadU16LE(); err != nil {
			return nil, malformed(r, "symbol header", err)
		}
	}

	if s.Name, err = r.ReadString(int(nameLen)); err != nil {
		return nil, malformed(r, "symbol name", err)
	}
	if s.Type, err = r.ReadString(int(typeLen)); err != nil {
		return nil, malformed(r, "symbol type name", err)
	}
	if s.Comment, err = r.ReadString(int(commentLen)); err != nil {
		return nil, malformed(r, "symbol comment", err)
	}
	return s, nil
}

// MarshalBinary encodes the symbol in upload format.
func (s *Symbol) MarshalBinary() ([]byte, error) {
	name, typ, comment, err := encodeStrings(s.Name, s.Type, s.Comment)
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.WriteU32LE(0)
	for _, v := range []uint32{s.IndexGroup, s.IndexOffset, s.Size, uint32(s.ADSType), s.Flags} {
		w.WriteU32LE(v)
	}
	w.WriteU16LE(uint16(len(name)))
	w.WriteU16LE(uint16(len(typ)))
	w.WriteU16LE(uint16(len(comment)))
	w.WriteCString(name)
	w.WriteCString(typ)
	w.WriteCString(comment)
	w.PatchU32LE(0, uint32(w.Len()))
	return w.Bytes(), nil
}
