package build

import (
	"fmt"

	"github.com/proverbiallemon/pyrite64/bwrite"
	"github.com/proverbiallemon/pyrite64/idhash"
	"github.com/proverbiallemon/pyrite64/math/lin"
)

// Scene config flags: the "clear-depth, clear-color,
// rgba32-framebuffer" bitset.
const (
	FlagClearDepth uint32 = 1 << iota
	FlagClearColor
	FlagFramebuffer32
)

// Object is one entry in a scene's object tree. Parent is
// the index of the owning object in the scene's Objects slice, or -1
// for a top-level object; ownership is single-parent and tree-shaped.
type Object struct {
	ID         idhash.ObjectID
	GroupID    uint16
	Flags      uint16
	Pos        lin.V3
	Scale      lin.V3
	Rot        lin.Q
	Components []Component
	Parent     int
}

// Scene is the in-memory form of a build-time scene, ready to be
// encoded to its three sibling files.
type Scene struct {
	ID            uint32
	ScreenWidth   uint16
	ScreenHeight  uint16
	ClearDepth    bool
	ClearColor    bool
	Framebuffer32 bool
	Clear         [4]uint8
	Objects       []Object
}

// FileNames returns the three short on-disk names for the scene
// (config, objects, string table), derived from the numeric id padded
// to four digits: s0001, s0001o, s0001s.
func (s *Scene) FileNames() (conf, objects, strings string) {
	base := fmt.Sprintf("s%04d", s.ID)
	return base, base + "o", base + "s"
}

// EncodeObjects serializes the object stream:
// per object, a fixed header (flags, id, group, reserved, pos, scale,
// packedRot) followed by component records, each prefixed with a
// backpatched (kind, word-count) byte pair, terminated by a zero word.
// Group/flags are carried through unchanged from the scene document so
// the loader can reconcile groups in a second pass after every object
// is decoded.
func (s *Scene) EncodeObjects(ctx *BuildContext) ([]byte, error) {
	w := bwrite.New(256 * len(s.Objects))
	for _, obj := range s.Objects {
		w.U16(obj.Flags)
		w.U16(uint16(obj.ID))
		w.U16(obj.GroupID)
		w.U16(0) // reserved
		writeV3(w, obj.Pos)
		writeV3(w, obj.Scale)
		w.U32(lin.Pack(obj.Rot))

		for _, comp := range obj.Components {
			recordStart := w.Pos()
			w.Skip(2) // backpatched: kind, word-count
			w.Skip(2) // flags, reserved

			comp.Build(w, ctx)
			w.Align(4)

			words := (w.Pos() - recordStart) / 4
			if words > MaxPayloadWords {
				return nil, fmt.Errorf("build: object %d component kind %d payload is %d words, exceeds %d word limit",
					obj.ID, comp.Kind, words, MaxPayloadWords)
			}

			save := w.PosPush(recordStart)
			w.U8(uint8(comp.Kind))
			w.U8(uint8(words))
			w.SetPos(save)
		}

		w.U32(0) // terminator
	}
	return w.Data(), nil
}

// EncodeConf serializes the 16-byte scene config header: u16 w, u16 h, u32 flags, rgba8 clear, u32
// obj-count, with no hidden padding.
func (s *Scene) EncodeConf() []byte {
	flags := uint32(0)
	if s.ClearDepth {
		flags |= FlagClearDepth
	}
	if s.ClearColor {
		flags |= FlagClearColor
	}
	if s.Framebuffer32 {
		flags |= FlagFramebuffer32
	}

	w := bwrite.New(16)
	w.U16(s.ScreenWidth)
	w.U16(s.ScreenHeight)
	w.U32(flags)
	w.Bytes(s.Clear[:])
	w.U32(uint32(len(s.Objects)))
	return w.Data()
}

// Build writes a scene's three files under dataDir using the
// filenames FileNames returns. The string table file is
// currently a placeholder: no component in the registry captures
// free-form per-object strings yet, matching the original's own
// "TODO" placeholder content for this file.
func (s *Scene) Build(ctx *BuildContext, dataDir string) error {
	objBytes, err := s.EncodeObjects(ctx)
	if err != nil {
		return err
	}
	confName, objName, strName := s.FileNames()

	if err := writeBytes(dataDir+"/"+objName, objBytes); err != nil {
		return err
	}
	if err := writeBytes(dataDir+"/"+confName, s.EncodeConf()); err != nil {
		return err
	}
	if err := writeBytes(dataDir+"/"+strName, []byte("TODO")); err != nil {
		return err
	}
	return nil
}

func writeBytes(path string, b []byte) error {
	w := bwrite.New(len(b))
	w.Bytes(b)
	return w.WriteToFile(path)
}
