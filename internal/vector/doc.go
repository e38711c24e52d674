// Package vector implements the binary vector frame format and the
// compensated summation applied to each received vector.
//
// A batch on the wire is a little-endian uint32 vector count followed, for
// each vector, by a little-endian uint32 element count and that many IEEE-754
// float64 values. Every sum is sent back as one little-endian float64.
//
// The byte-level functions (Decoder, AppendUint32, EncodeBatch, ...) check
// bounds before every multi-byte read and never read past the supplied slice.
// Reader and Writer apply the same format to a stream.
package vector
