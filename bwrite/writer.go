// Package bwrite provides the big-endian, position-tracking binary
// writer used by the asset build pipeline. Every asset
// and scene file the pipeline produces is written through a Writer so
// that a rebuild from the same inputs always produces byte-identical
// output.
package bwrite

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Writer accumulates bytes for a single output file. Values are always
// written big-endian, matching the target console's native byte order.
// A Writer is not safe for concurrent use.
type Writer struct {
	data []byte
	pos  int
	size int
	mark []int // pushed positions, see PosPush/PosPop
}

// New returns an empty Writer with cap bytes of backing storage
// preallocated.
func New(cap int) *Writer {
	return &Writer{data: make([]byte, 0, cap)}
}

// Pos returns the current write cursor.
func (w *Writer) Pos() int { return w.pos }

// Size returns the high-water mark of bytes written so far. This can
// be larger than Pos after a PosPop back to an earlier offset.
func (w *Writer) Size() int { return w.size }

// SetPos moves the write cursor to pos without truncating any bytes
// already written past it. Writing past the end of the buffer grows
// it; writing before the end overwrites in place (used for backpatching
// component offsets and chunk pointers).
func (w *Writer) SetPos(pos int) { w.pos = pos }

// PosPush moves the cursor to pos, returning the old cursor so it can
// be restored later, and remembers it on an internal stack so PosPop
// can restore it without the caller keeping track.
func (w *Writer) PosPush(pos int) int {
	old := w.pos
	w.mark = append(w.mark, old)
	w.pos = pos
	return old
}

// PosPop restores the cursor to the position saved by the matching
// PosPush and returns the cursor it is leaving.
func (w *Writer) PosPop() int {
	old := w.pos
	n := len(w.mark) - 1
	w.pos = w.mark[n]
	w.mark = w.mark[:n]
	return old
}

func (w *Writer) grow(n int) {
	need := w.pos + n
	if need > len(w.data) {
		w.data = append(w.data, make([]byte, need-len(w.data))...)
	}
	if need > w.size {
		w.size = need
	}
}

func (w *Writer) writeRaw(b []byte) {
	w.grow(len(b))
	copy(w.data[w.pos:], b)
	w.pos += len(b)
}

// U8 writes a single byte.
func (w *Writer) U8(v uint8) { w.writeRaw([]byte{v}) }

// S8 writes a signed byte.
func (w *Writer) S8(v int8) { w.U8(uint8(v)) }

// U16 writes a big-endian uint16.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.writeRaw(b[:])
}

// S16 writes a big-endian int16.
func (w *Writer) S16(v int16) { w.U16(uint16(v)) }

// U32 writes a big-endian uint32.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.writeRaw(b[:])
}

// S32 writes a big-endian int32.
func (w *Writer) S32(v int32) { w.U32(uint32(v)) }

// F32 writes a big-endian IEEE-754 float32.
func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// Bytes writes raw bytes verbatim, with no length prefix.
func (w *Writer) Bytes(b []byte) { w.writeRaw(b) }

// String writes a NUL-terminated string, matching the asset string
// table convention.
func (w *Writer) String(s string) {
	w.writeRaw([]byte(s))
	w.U8(0)
}

// Skip advances the cursor by n zero bytes.
func (w *Writer) Skip(n int) {
	for i := 0; i < n; i++ {
		w.U8(0)
	}
}

// Align pads with zero bytes until Pos is a multiple of alignment.
func (w *Writer) Align(alignment int) {
	if off := w.pos % alignment; off != 0 {
		w.Skip(alignment - off)
	}
}

// ChunkPointer returns the packed (kind<<24 | offset) word used to
// reference a component record from an object's component list: the
// top byte names the component kind, the low 24 bits are a byte offset
// into the scene binary.
func ChunkPointer(kind byte, offset uint32) (uint32, error) {
	if offset > 0xFFFFFF {
		return 0, fmt.Errorf("bwrite: offset %d does not fit in 24 bits", offset)
	}
	return uint32(kind)<<24 | offset&0xFFFFFF, nil
}

// WriteChunkPointer writes the packed pointer at the cursor.
func (w *Writer) WriteChunkPointer(kind byte, offset uint32) error {
	v, err := ChunkPointer(kind, offset)
	if err != nil {
		return err
	}
	w.U32(v)
	return nil
}

// Data returns the written bytes up to Size. The returned slice
// aliases the Writer's internal buffer and must not be modified after
// further writes.
func (w *Writer) Data() []byte { return w.data[:w.size] }

// WriteToFile writes the accumulated bytes to path, replacing any
// existing file atomically: the data is written to a temp file in the
// same directory and then renamed into place, so a reader never
// observes a partially written asset.
func (w *Writer) WriteToFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pyrite64-*.tmp")
	if err != nil {
		return fmt.Errorf("bwrite: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(w.Data()); err != nil {
		tmp.Close()
		return fmt.Errorf("bwrite: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("bwrite: close %s: %w", tmpName, err)
	}
	if err := renameInto(tmpName, path); err != nil {
		return fmt.Errorf("bwrite: publish %s: %w", path, err)
	}
	return nil
}
