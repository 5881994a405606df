package records

import (
	"iter"

	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/internal/binary"
)

// Split yields each length-prefixed record of data in order. Each yielded
// slice starts at the record's length prefix and spans exactly the
// declared length. A zero length, a length overrunning the buffer, or a
// truncated prefix yields a KindMalformedRecord error and stops.
//
// The sequence holds no state between iterations and can be ranged over
// any number of times.
func Split(data []byte) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		r := binary.NewReader(data)
		for r.Len() > 0 {
			start := r.Position()
			length, err := r.ReadU32LE()
			if err != nil {
				yield(nil, errors.MalformedRecord(errors.PhaseDecode, start, "truncated length prefix", err))
				return
			}
			if length == 0 {
				yield(nil, errors.MalformedRecord(errors.PhaseDecode, start, "zero record length", nil))
				return
			}
			if length < 4 {
				yield(nil, errors.MalformedRecord(errors.PhaseDecode, start, "record length shorter than its prefix", nil))
				return
			}
			if uint64(length) > uint64(len(data)-start) {
				yield(nil, errors.MalformedRecord(errors.PhaseDecode, start,
					"record length overruns buffer", nil))
				return
			}
			end := start + int(length)
			if err := r.Seek(end); err != nil {
				yield(nil, errors.MalformedRecord(errors.PhaseDecode, start, "seek to record end", err))
				return
			}
			if !yield(data[start:end:end], nil) {
				return
			}
		}
	}
}

// DecodeAll splits data and decodes every record, stopping at the first error.
func DecodeAll[T any](data []byte, decode func([]byte) (T, error)) ([]T, error) {
	var out []T
	for rec, err := range Split(data) {
		if err != nil {
			return nil, err
		}
		v, err := decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Concat encodes each record and joins them into one table blob.
func Concat[T interface{ MarshalBinary() ([]byte, error) }](recs ...T) ([]byte, error) {
	w := binary.NewWriter()
	for _, r := range recs {
		b, err := r.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.WriteBytes(b)
	}
	return w.Bytes(), nil
}

// header reads the length prefix of a single record and returns a reader
// bounded to it.
func header(rec []byte, minLen int, what string) (*binary.Reader, error) {
	if len(rec) < minLen {
		return nil, errors.MalformedRecord(errors.PhaseDecode, 0,
			what+" shorter than fixed header", nil)
	}
	r := binary.NewReader(rec)
	length, _ := r.ReadU32LE()
	if length < uint32(minLen) || uint64(length) > uint64(len(rec)) {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedRecord).
			Detail("%s declares length %d, have %d bytes", what, length, len(rec)).
			Value(length).
			Build()
	}
	return binary.NewReader(rec[:length]), nil
}

func malformed(r *binary.Reader, what string, err error) error {
	return errors.MalformedRecord(errors.PhaseDecode, r.Position(), what, err)
}
