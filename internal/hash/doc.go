// Package hash provides CRC32-Castagnoli checksums.
//
// The codec stores CRC32C in every cell array header, and the S3 store sends
// the same sum with each upload so the service can reject corrupted bodies:
//
//	checksum := hash.CRC32C(data)
//
// Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when available.
package hash
