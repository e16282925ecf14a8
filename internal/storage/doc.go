// Package storage holds the typed backing arrays of a cell array.
//
// A cell array keeps its topology in two parallel arrays, offsets and connectivity,
// at one of two element widths. Storage owns exactly one such pair at a time and
// replaces it wholesale when the width changes; a pair is never mutated across
// widths in place.
package storage
