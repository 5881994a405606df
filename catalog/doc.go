// Package catalog turns the symbol and data type tables uploaded from an
// ADS controller into a navigable tree of variables with byte-accurate
// layouts.
//
// A Catalog is built once from the two upload blobs, either directly
// with New or from a live target with Load. Construction decodes every
// record, synthesizes a layout for every data type and arranges the
// symbols into a tree by splitting their dotted names:
//
//	cat, err := catalog.Load(ctx, transport, addr)
//	node, err := cat.Lookup("MAIN.axes[2].pos")
//	v := node.(*catalog.Variable)
//	pos, err := v.Read(ctx)
//
// Layout synthesis is lenient by default. A type that cannot be laid out
// exactly (unknown member types, packing that does not reproduce the
// declared size, overlapping union members) degrades to an opaque blob
// of the declared size and is reported through Diagnostics and the
// package logger. WithStrict turns any such diagnostic into a
// construction error instead.
//
// A Catalog is safe for concurrent use once New or Load has returned.
package catalog
