package catalog

import (
	adssymbols "github.com/wippyai/ads-symbols"
)

// DefaultPointerSize is the pointer width of 64-bit controller runtimes.
const DefaultPointerSize uint32 = 8

type options struct {
	transport   adssymbols.Transport
	addr        adssymbols.Address
	pointerSize uint32
	strict      bool
}

func defaultOptions() options {
	return options{pointerSize: DefaultPointerSize}
}

// Option configures catalog construction.
type Option func(*options)

// WithPointerSize sets the width of PVOID and POINTER TO types. Only 4
// and 8 are meaningful; other values are ignored.
func WithPointerSize(n uint32) Option {
	return func(o *options) {
		if n == 4 || n == 8 {
			o.pointerSize = n
		}
	}
}

// WithStrict makes any build-time diagnostic fail construction instead
// of degrading the affected type to an opaque layout.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithTransport attaches the transport and target used by Variable
// reads and writes.
func WithTransport(t adssymbols.Transport, addr adssymbols.Address) Option {
	return func(o *options) {
		o.transport = t
		o.addr = addr
	}
}
