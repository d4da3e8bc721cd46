package ctype

import (
	"fmt"
	"io"
	"strings"

	"github.com/danderson/ctype/memory"
	"github.com/dustin/go-humanize"
)

// DumpOptions configures Dump.
type DumpOptions struct {
	// PointerSize is the number of bytes printed per line. Zero
	// selects 8.
	PointerSize int
	// Color highlights the address column and non-zero bytes with
	// ANSI escapes.
	Color bool
}

const (
	ansiDim   = "\x1b[2m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Dump writes a hex dump of the n bytes at addr in mem to w, one
// pointer-sized word per line. Each line shows the word's address,
// its index and its byte offset from addr.
func Dump(w io.Writer, label string, mem memory.Memory, addr memory.Addr, n int, opts DumpOptions) error {
	word := opts.PointerSize
	if word == 0 {
		word = 8
	}
	bs := mem.Read(addr, n)

	var out strings.Builder
	fmt.Fprintf(&out, "%s at %s (%s):\n", label, addr, humanize.IBytes(uint64(n)))
	for off := 0; off < len(bs); off += word {
		line := bs[off:min(off+word, len(bs))]
		col := fmt.Sprintf("[0x%016x %-4d %-4d]", uint64(addr)+uint64(off), off/word, off)
		if opts.Color {
			col = ansiDim + col + ansiReset
		}
		fmt.Fprintf(&out, "  %s ", col)
		for _, b := range line {
			if opts.Color && b != 0 {
				fmt.Fprintf(&out, " %s%02x%s", ansiBold, b, ansiReset)
			} else {
				fmt.Fprintf(&out, " %02x", b)
			}
		}
		out.WriteByte('\n')
	}
	_, err := io.WriteString(w, out.String())
	return err
}
