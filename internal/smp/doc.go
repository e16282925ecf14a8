// Package smp provides fork-join loops over index ranges.
//
// The only pattern offered is partition, accumulate locally, reduce serially:
// workers never share an accumulator, and the final fold runs on the caller after
// every partition has finished. Ranges smaller than the grain run inline, which
// keeps nested calls from fanning out again.
package smp
