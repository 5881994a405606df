// Package abi provides internal utilities for controller memory layouts.
//
// # Contents
//
//   - coerce.go: Coercion from arbitrary Go numeric values to fixed-width PLC primitives
//   - helpers.go: Alignment and overflow-checked arithmetic used by layout synthesis
//
// This package is internal to the module.
package abi
