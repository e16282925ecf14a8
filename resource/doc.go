// Package resource limits the memory and IO consumed by cell storage.
//
// Cell arrays consult a Controller when asked to allocate explicitly
// (AllocateExact, ResizeExact, ...), so a refused reservation surfaces as an
// ordinary error instead of an out-of-memory crash. The persistence layer uses
// the same Controller to throttle blob reads and writes.
package resource
