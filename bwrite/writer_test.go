package bwrite

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestScalarWrites(t *testing.T) {
	w := New(16)
	w.U8(0xAB)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.S16(-1)
	want := []byte{0xAB, 0x12, 0x34, 0xDE, 0xAD, 0xBE, 0xEF, 0xFF, 0xFF}
	if got := w.Data(); !bytes.Equal(got, want) {
		t.Fatalf("Data = % x, want % x", got, want)
	}
}

func TestF32RoundTrip(t *testing.T) {
	w := New(4)
	w.F32(3.5)
	got := w.Data()
	want := []byte{0x40, 0x60, 0x00, 0x00} // IEEE-754 big-endian 3.5
	if !bytes.Equal(got, want) {
		t.Fatalf("F32(3.5) = % x, want % x", got, want)
	}
}

func TestStringNulTerminated(t *testing.T) {
	w := New(8)
	w.String("hi")
	want := []byte{'h', 'i', 0}
	if got := w.Data(); !bytes.Equal(got, want) {
		t.Fatalf("String = % x, want % x", got, want)
	}
}

func TestAlign(t *testing.T) {
	w := New(8)
	w.U8(1)
	w.Align(4)
	if w.Pos() != 4 {
		t.Fatalf("Pos after Align(4) = %d, want 4", w.Pos())
	}
	w.Align(4)
	if w.Pos() != 4 {
		t.Fatalf("Align on an already-aligned position moved the cursor to %d", w.Pos())
	}
}

func TestPosPushPop(t *testing.T) {
	w := New(16)
	w.U32(0) // placeholder at offset 0
	w.U32(0) // placeholder at offset 4
	w.Skip(8)

	backpatch := w.PosPush(0)
	w.U32(0xCAFEBABE)
	w.PosPop()

	if w.Pos() != backpatch {
		t.Fatalf("Pos after PosPop = %d, want %d", w.Pos(), backpatch)
	}
	got := w.Data()[0:4]
	want := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	if !bytes.Equal(got, want) {
		t.Fatalf("backpatched word = % x, want % x", got, want)
	}
}

func TestChunkPointer(t *testing.T) {
	got, err := ChunkPointer(0x05, 0x001234)
	if err != nil {
		t.Fatalf("ChunkPointer: %v", err)
	}
	if want := uint32(0x05001234); got != want {
		t.Fatalf("ChunkPointer = %#x, want %#x", got, want)
	}
}

func TestChunkPointerOffsetTooLarge(t *testing.T) {
	if _, err := ChunkPointer(0x01, 0x01000000); err == nil {
		t.Fatal("expected error for an offset that does not fit in 24 bits")
	}
}

func TestWriteToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	w := New(4)
	w.U32(0x01020304)
	if err := w.WriteToFile(path); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(got, want) {
		t.Fatalf("file contents = % x, want % x", got, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected WriteToFile to leave no temp files behind, found %d entries", len(entries))
	}
}

func TestWriteToFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	build := func() []byte {
		w := New(32)
		w.U16(1)
		w.String("asset")
		w.Align(4)
		w.F32(1.5)
		if err := w.WriteToFile(path); err != nil {
			t.Fatalf("WriteToFile: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		return got
	}

	first := build()
	second := build()
	if !bytes.Equal(first, second) {
		t.Fatalf("rebuild produced different bytes: % x vs % x", first, second)
	}
}
