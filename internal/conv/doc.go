// Package conv holds the checked integer conversions used where cell data
// crosses a width boundary: narrowing storage to 32 bits and sizing buffers
// from counts read out of encoded headers.
package conv
