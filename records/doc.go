// Package records decodes the binary upload blobs published by an ADS
// controller: the symbol table, the data type table and the upload info
// header that sizes them.
//
// Both tables are sequences of variable-length records. Every record
// begins with a little-endian uint32 holding its total length, which
// lets a reader skip trailing bytes that newer controller versions
// append. Split walks such a sequence; DecodeDataType, DecodeSymbol and
// DecodeUploadInfo decode single records.
//
// Every decoded type has a matching MarshalBinary so fixtures and
// simulated controllers can publish tables that decode back to the same
// values.
package records
