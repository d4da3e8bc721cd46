package main

import (
	"cmp"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"slices"
	"strings"
	"syscall"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/heapq"
	"github.com/creachadair/mds/slice"
	"github.com/danderson/ctype"
	"github.com/danderson/ctype/internal/ctypegen"
	"github.com/danderson/ctype/memory"
	"github.com/danderson/ctype/typelib"
	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

var globalArgs struct {
	Lib         string `flag:"lib,Type library YAML file to load"`
	Debug       bool   `flag:"debug,Log type construction to stderr"`
	PointerSize int    `flag:"ptr,default=8,Pointer size of the target in bytes (4 or 8)"`
	BigEndian   bool   `flag:"big-endian,Describe a big-endian target"`
}

func order() memory.ByteOrder {
	if globalArgs.BigEndian {
		return memory.BigEndian
	}
	return memory.LittleEndian
}

// registry returns a Registry configured by the global flags, with
// the --lib type library loaded.
func registry() (*ctype.Registry, error) {
	if globalArgs.PointerSize != 4 && globalArgs.PointerSize != 8 {
		return nil, fmt.Errorf("invalid pointer size %d, must be 4 or 8", globalArgs.PointerSize)
	}
	log := zap.NewNop()
	if globalArgs.Debug {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
	}
	r := ctype.New(&ctype.Options{
		PointerSize: globalArgs.PointerSize,
		Order:       order(),
		Logger:      log,
	})

	if globalArgs.Lib == "" {
		return r, nil
	}
	lib, err := typelib.Load(globalArgs.Lib)
	if err != nil {
		return nil, err
	}
	if _, err := lib.Register(r); err != nil {
		return nil, fmt.Errorf("registering %s: %w", globalArgs.Lib, err)
	}
	return r, nil
}

func main() {
	root := &command.C{
		Name:     "ctype",
		Usage:    "command args...",
		Help:     "Inspect C type layouts and decode C values.",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "resolve",
				Usage: "resolve spec...",
				Help: `Resolve type specs and describe the resulting types.

Specs use C declaration syntax, for example "const char *",
"struct Foo **" or "unsigned  int". A trailing "!" requests a string
type that is freed after decoding.`,
				Run: command.Adapt(runResolve),
			},
			{
				Name:  "flatten",
				Usage: "flatten spec",
				Help:  "List the primitive leaves of a type, in memory order.",
				Run:   command.Adapt(runFlatten),
			},
			{
				Name:     "classify",
				Usage:    "classify spec",
				Help:     "Report whether a type is a homogeneous floating point aggregate.",
				SetFlags: command.Flags(flax.MustBind, &classifyArgs),
				Run:      command.Adapt(runClassify),
			},
			{
				Name:  "decode",
				Usage: "decode spec hex",
				Help: `Decode a hex memory image as a value of the given type.

The image is placed at address 0x10000, so pointers within the image
can refer to other parts of it. Pointers to anything else decode as
opaque handles, but strings must point inside the image.`,
				SetFlags: command.Flags(flax.MustBind, &decodeArgs),
				Run:      command.Adapt(runDecode),
			},
			{
				Name:     "dump",
				Usage:    "dump hex",
				Help:     "Hex dump a memory image one pointer-sized word per line.",
				SetFlags: command.Flags(flax.MustBind, &dumpArgs),
				Run:      command.Adapt(runDump),
			},
			{
				Name:  "types",
				Usage: "types [regexp]",
				Help:  "List registered type names, optionally filtered by a regular expression.",
				Run:   runTypes,
			},
			{
				Name:     "gen",
				Usage:    "gen spec",
				Help:     "Generate a Go struct with the memory layout of a C struct.",
				SetFlags: command.Flags(flax.MustBind, &genArgs),
				Run:      command.Adapt(runGen),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx)
	command.RunOrFail(env, os.Args[1:])
}

func runResolve(env *command.Env, spec string, rest ...string) error {
	r, err := registry()
	if err != nil {
		return err
	}
	out := newPrinter()
	for _, s := range append([]string{spec}, rest...) {
		t, err := r.ResolveName(s)
		if err != nil {
			return err
		}
		out.f("%q:", s)
		out.indent(1)
		out.f("%#v", t)
		if t.Dispose.IsSet() {
			out.f("disposal: %s", t.Dispose)
		}
		out.f("pass: %v, out: %v, return: %v, store: %v", ctype.CanPass(t, ctype.In), ctype.CanPass(t, ctype.Out), ctype.CanReturn(t), ctype.CanStore(t))
		out.indent(0)
	}
	return nil
}

func resolveStorable(spec string) (*ctype.Registry, *ctype.Type, error) {
	r, err := registry()
	if err != nil {
		return nil, nil, err
	}
	t, err := r.ResolveName(spec)
	if err != nil {
		return nil, nil, err
	}
	if !ctype.CanStore(t) {
		return nil, nil, fmt.Errorf("type %s has no memory layout", t.Name)
	}
	return r, t, nil
}

func runFlatten(env *command.Env, spec string) error {
	_, t, err := resolveStorable(spec)
	if err != nil {
		return err
	}
	out := newPrinter()
	n := ctype.Flatten(t, func(leaf *ctype.Type, offset, count int) {
		out.f("%4d  %s x%d", offset, leaf.Name, count)
	})
	out.f("%d leaves", n)
	return nil
}

var classifyArgs struct {
	Min int `flag:"min,default=1,Minimum number of leaves"`
	Max int `flag:"max,default=4,Maximum number of leaves"`
}

func runClassify(env *command.Env, spec string) error {
	_, t, err := resolveStorable(spec)
	if err != nil {
		return err
	}
	if n := ctype.HomogeneousAggregate(t, classifyArgs.Min, classifyArgs.Max); n > 0 {
		fmt.Printf("%s is a homogeneous float aggregate of %d leaves\n", t.Name, n)
	} else {
		fmt.Printf("%s is not a homogeneous float aggregate of %d to %d leaves\n", t.Name, classifyArgs.Min, classifyArgs.Max)
	}
	return nil
}

var decodeArgs struct {
	Realign int  `flag:"realign,Minimum alignment of struct members and array elements"`
	Dump    bool `flag:"dump,Hex dump the image before decoding"`
}

func runDecode(env *command.Env, spec, image string) (err error) {
	r, t, err := resolveStorable(spec)
	if err != nil {
		return err
	}
	mem, addr, err := loadImage(image)
	if err != nil {
		return err
	}
	if len(mem.Bytes()) < t.Size {
		return fmt.Errorf("image is %d bytes, type %s needs %d", len(mem.Bytes()), t.Name, t.Size)
	}
	if decodeArgs.Dump {
		if err := dump(os.Stdout, t.Name, mem, addr, t.Size); err != nil {
			return err
		}
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decoding %s: %v", t.Name, p)
		}
	}()
	dec := r.NewDecoder(mem)
	var v any
	switch t.Kind {
	case ctype.Record:
		v = dec.Record(addr, t, decodeArgs.Realign)
	case ctype.Array:
		v = dec.Array(addr, t, decodeArgs.Realign)
	default:
		v = dec.Value(addr, t)
	}
	fmt.Printf("%# v\n", pretty.Formatter(v))
	if h, ok := v.(*ctype.Handle); ok {
		fmt.Printf("handle type: %s\n", r.DescribeValue(h))
	}
	return nil
}

var dumpArgs struct {
	Label string `flag:"label,default=image,Label for the dump header"`
}

func runDump(env *command.Env, image string) error {
	mem, addr, err := loadImage(image)
	if err != nil {
		return err
	}
	return dump(os.Stdout, dumpArgs.Label, mem, addr, len(mem.Bytes()))
}

func dump(w io.Writer, label string, mem memory.Memory, addr memory.Addr, n int) error {
	return ctype.Dump(w, label, mem, addr, n, ctype.DumpOptions{
		PointerSize: globalArgs.PointerSize,
		Color:       isatty.IsTerminal(os.Stdout.Fd()),
	})
}

// loadImage parses a hex string, ignoring whitespace, into a fresh
// arena.
func loadImage(image string) (*memory.Arena, memory.Addr, error) {
	bs, err := hex.DecodeString(strings.Join(strings.Fields(image), ""))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing image: %w", err)
	}
	if len(bs) == 0 {
		return nil, 0, errors.New("empty image")
	}
	mem := memory.NewArena(order(), 0)
	return mem, mem.Put(bs, 1), nil
}

func runTypes(env *command.Env) error {
	if len(env.Args) > 1 {
		return env.Usagef("types takes at most one argument")
	}
	filter := ""
	if len(env.Args) == 1 {
		filter = env.Args[0]
	}
	pf, err := regexp.Compile(filter)
	if err != nil {
		return err
	}
	r, err := registry()
	if err != nil {
		return err
	}

	names := heapq.New(cmp.Compare[string])
	for _, n := range slices.Collect(slice.Select(r.Names(), pf.MatchString)) {
		names.Add(n)
	}
	out := newPrinter()
	for !names.IsEmpty() {
		n, _ := names.Pop()
		t, _ := r.Lookup(n)
		if t.Name == n {
			out.f("%#v", t)
		} else {
			out.f("%s = %s", n, t.Name)
		}
	}
	return nil
}

var genArgs struct {
	PackageName string `flag:"package,default=ctypes,Package name to output"`
	OutFile     string `flag:"out,default=-,Output file path, or - for stdout"`
}

func runGen(env *command.Env, spec string) error {
	_, t, err := resolveStorable(spec)
	if err != nil {
		return err
	}
	code, err := ctypegen.Struct(t)
	if err != nil {
		return fmt.Errorf("generating code for %s: %w", t.Name, err)
	}

	var w io.Writer = os.Stdout
	if genArgs.OutFile != "-" {
		f, err := os.Create(genArgs.OutFile)
		if err != nil {
			return fmt.Errorf("creating output %s: %w", genArgs.OutFile, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := fmt.Fprintf(w, "// Code generated by ctype gen. DO NOT EDIT.\n\npackage %s\n\n%s", genArgs.PackageName, code); err != nil {
		return fmt.Errorf("writing generated code: %w", err)
	}
	if genArgs.OutFile != "-" {
		fmt.Fprintf(os.Stderr, "Wrote generated package to %s\n", genArgs.OutFile)
	}
	return nil
}
