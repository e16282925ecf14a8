// Package dispatch routes width-generic operations to the active storage pair.
//
// An operation is written once as a generic function over storage.Index and
// passed to Visit, Apply or Apply2 in both of its instantiations. The type switch
// happens once per call; the per-cell loops inside each instantiation run on
// concrete slices with no interface calls.
package dispatch
