package abi

import "math"

// CoerceToInt64 accepts any Go integer, or a float holding an integral value.
func CoerceToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		if v >= float64(math.MinInt64) && v < float64(math.MaxInt64) && v == float64(int64(v)) {
			return int64(v), true
		}
	case float32:
		if v >= float32(math.MinInt64) && v < float32(math.MaxInt64) && v == float32(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// CoerceToUint64 accepts any non-negative Go integer, or a float holding
// a non-negative integral value.
func CoerceToUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case int8:
		if v >= 0 {
			return uint64(v), true
		}
	case int16:
		if v >= 0 {
			return uint64(v), true
		}
	case int32:
		if v >= 0 {
			return uint64(v), true
		}
	case int:
		if v >= 0 {
			return uint64(v), true
		}
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	case float64:
		if v >= 0 && v < float64(math.MaxUint64) && v == float64(uint64(v)) {
			return uint64(v), true
		}
	case float32:
		if v >= 0 && float64(v) < float64(math.MaxUint64) && v == float32(uint64(v)) {
			return uint64(v), true
		}
	}
	return 0, false
}

// CoerceToFloat64 accepts any Go numeric value.
func CoerceToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// CoerceToBool accepts bool, or the integers 0 and 1.
func CoerceToBool(value any) (bool, bool) {
	if b, ok := value.(bool); ok {
		return b, true
	}
	if n, ok := CoerceToInt64(value); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

// FitsSigned reports whether v fits in a two's complement integer of width bytes.
func FitsSigned(v int64, width uint32) bool {
	if width >= 8 {
		return true
	}
	bits := width * 8
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	return v >= lo && v <= hi
}

// FitsUnsigned reports whether v fits in an unsigned integer of width bytes.
func FitsUnsigned(v uint64, width uint32) bool {
	if width >= 8 {
		return true
	}
	return v < uint64(1)<<(width*8)
}
