// Package dataarray provides contiguous, tuple-organized numeric arrays.
//
// Arrays are the interchange format at the boundary of the cell array: callers that
// manage their own topology buffers hand them over with SetData, and consumers that
// need raw handles (GPU upload, serialization) receive the live arrays back without
// a copy.
//
//	offsets := dataarray.FromSlice([]int32{0, 3, 5})
//	conn := dataarray.FromSlice([]int32{0, 1, 2, 3, 4})
//	err := cells.SetData(offsets, conn)
package dataarray
