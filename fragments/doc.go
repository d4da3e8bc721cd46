// Package fragments provides low-level helpers to read and write C
// values laid out in native memory.
//
// The provided encoder and decoder are very low level, and know
// nothing about C types beyond byte widths and alignment. The ctype
// package drives a [Decoder] from type descriptors; tests and tools
// use an [Encoder] to lay out memory images by hand.
package fragments
