package abi

import (
	"math"
	"reflect"
)

// MaxPack is the structure packing boundary used by the controller compiler.
const MaxPack = 8

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// Product multiplies counts, reporting false on overflow.
func Product(counts []uint32) (uint32, bool) {
	total := uint32(1)
	for _, c := range counts {
		var ok bool
		if total, ok = SafeMulU32(total, c); !ok {
			return 0, false
		}
	}
	return total, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// PackedAlign caps a natural alignment at the packing boundary.
func PackedAlign(align uint32) uint32 {
	if align > MaxPack {
		return MaxPack
	}
	if align == 0 {
		return 1
	}
	return align
}
