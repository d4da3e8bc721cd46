package memory

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// A ByteOrder is the byte order of a native memory space.
type ByteOrder interface {
	byteOrder
	// Swapped returns the opposite byte order.
	Swapped() ByteOrder
	// IsHost reports whether the order matches the byte order of the
	// running process.
	IsHost() bool
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type wrapStd struct {
	byteOrder
	big bool
}

func (w wrapStd) Swapped() ByteOrder {
	if w.big {
		return LittleEndian
	}
	return BigEndian
}

func (w wrapStd) IsHost() bool {
	return w.big == cpu.IsBigEndian
}

var (
	BigEndian    ByteOrder = wrapStd{binary.BigEndian, true}
	LittleEndian ByteOrder = wrapStd{binary.LittleEndian, false}
	NativeEndian ByteOrder = wrapStd{binary.NativeEndian, cpu.IsBigEndian}
)
