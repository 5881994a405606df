// Package adssymbols reads the symbol table and type system of an ADS
// controller runtime and exposes its variables by name.
//
// A controller publishes two binary tables: the symbol table, one record
// per addressable variable, and the data type table, one record per
// declared type with nested member records. This module decodes both,
// synthesizes a byte-accurate layout for every type and builds a tree of
// variables that can be navigated, read and written without prior
// knowledge of the program.
//
// # Architecture Overview
//
//	adssymbols/          Root package with the Transport interface and AMS addressing
//	├── records/         Upload table record decoding and encoding
//	├── layout/          Layout descriptors and the value codec
//	├── catalog/         Layout synthesis, the variable tree and Variable navigation
//	├── nzarray/         Arrays indexed from an arbitrary lower bound
//	├── simulator/       In-memory controller implementing Transport
//	├── config/          YAML configuration for the adsdump tool
//	├── errors/          Structured error types
//	└── cmd/adsdump/     Offline table inspection tool
//
// # Quick Start
//
// Load a catalog from a target and read a variable:
//
//	addr, err := adssymbols.ParseAddress("5.12.34.56.1.1:851")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cat, err := catalog.Load(ctx, transport, addr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	node, err := cat.Lookup("MAIN.machine.axes[2].pos")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pos, err := node.(*catalog.Variable).Read(ctx)
//
// # Transport
//
// The module does not speak the ADS wire protocol. Anything that can
// read and write an (index group, index offset) range on a target
// satisfies Transport; the simulator package provides an in-memory one.
//
// # Layouts
//
// Controller structures are packed at 8-byte alignment. Every
// synthesized layout reproduces the declared size of its type exactly;
// when it cannot, the type degrades to an opaque blob of that size and a
// diagnostic is recorded, so one vendor type with an unusual layout does
// not make the rest of the program unreadable.
//
// Arrays keep their declared lower bounds, which may be negative. Values
// of arrays that do not start at 0 decode into nzarray.Array.
//
// # Thread Safety
//
// A Catalog is safe for concurrent use once built. Variables are
// immutable values. Concurrent reads and writes are as safe as the
// Transport they go through.
package adssymbols
