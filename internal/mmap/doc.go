// Package mmap maps encoded cell array files read-only into memory.
//
// The local blob store opens every blob through Open, so decoding reads the
// page cache directly instead of copying through read(2):
//
//	m, err := mmap.Open("mesh/v00000001.cells")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	header, _ := m.Region(0, 36)
//
// Unix systems use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping and its Regions may be read concurrently. Close is idempotent,
// but slices obtained from Bytes must not be used after it returns.
package mmap
