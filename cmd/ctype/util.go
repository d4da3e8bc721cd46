package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// printer writes lines to stdout, indenting every line of every
// message by the current depth.
type printer struct {
	w     io.Writer
	depth int
}

func newPrinter() *printer {
	return &printer{w: os.Stdout}
}

func (p *printer) f(msg string, args ...any) {
	prefix := strings.Repeat("  ", p.depth)
	for _, line := range strings.Split(fmt.Sprintf(msg, args...), "\n") {
		fmt.Fprintf(p.w, "%s%s\n", prefix, line)
	}
}

func (p *printer) indent(n int) {
	p.depth = n
}
