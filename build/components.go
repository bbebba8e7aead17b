package build

import (
	"log/slog"

	"github.com/proverbiallemon/pyrite64/bwrite"
	"github.com/proverbiallemon/pyrite64/idhash"
	"github.com/proverbiallemon/pyrite64/math/lin"
)

// ComponentKind is the on-disk tag for a component record.
type ComponentKind uint8

const (
	KindCode ComponentKind = iota
	KindModel
	KindLight
	KindCamera
	KindCollMesh
	KindCollBody
	KindAudio2D

	numComponentKinds
)

// BuildContext carries everything a component's Build function needs
// to resolve asset links and report failures.
type BuildContext struct {
	Assets *AssetTable
	Log    *slog.Logger
}

func (ctx *BuildContext) logger() *slog.Logger {
	if ctx.Log != nil {
		return ctx.Log
	}
	return slog.Default()
}

// resolve looks up uuid in the asset table, logging and substituting
// the dead-asset sentinel on a miss rather than aborting the build.
func (ctx *BuildContext) resolve(uuid idhash.AssetUUID) idhash.AssetIndex {
	idx, ok := ctx.Assets.Lookup(uuid)
	if !ok {
		ctx.logger().Error("component references unresolved asset", "uuid", uuid)
		return idhash.DeadAsset
	}
	return idx
}

// Component is the tagged-variant payload a build-time object carries;
// exactly one of the embedded structs below is non-nil per instance.
// This mirrors the C++ original's function-pointer-table dispatch
// (componentTable.cpp) as a Go tagged union instead: a constant kind
// plus a per-kind payload, with Build as the single dispatch method.
type Component struct {
	Kind ComponentKind

	Code     *CodeData
	Model    *ModelData
	Light    *LightData
	Camera   *CameraData
	CollMesh *CollMeshData
	CollBody *CollBodyData
	Audio2D  *Audio2DData
}

// CodeData is the Code component payload: `u16 script-index, u16
// flags, <script-declared arg bytes>`.
type CodeData struct {
	ScriptUUID idhash.AssetUUID
	Flags      uint16
	Args       []byte
}

// ModelData is the Model component payload.
type ModelData struct {
	AssetUUID   idhash.AssetUUID
	Layer       uint8
	Flags       uint8
	Material    [4]byte
	MeshIndices []uint8
}

// LightData is the Light component payload. Dir is
// stored as [-1,1] floats and quantized to i8 on write, matching
// original_source's `(float)dir[i] * (1/127.0f)` decode convention.
type LightData struct {
	Color [4]uint8
	Index uint8
	Type  uint8
	Dir   lin.V3
}

// CameraData is the Camera component payload.
type CameraData struct {
	VPOffset [2]int32
	VPSize   [2]int32
	Fov      float32
	Near     float32
	Far      float32
}

// CollMeshData is the CollMesh component payload: a reference to a
// collision-mesh chunk embedded in a model asset.
type CollMeshData struct {
	AssetUUID idhash.AssetUUID
}

// CollBodyData is the CollBody component payload.
type CollBodyData struct {
	HalfExtent lin.V3
	Offset     lin.V3
	Flags      uint8
	MaskRead   uint8
	MaskWrite  uint8
}

// Audio2DData is the Audio2D component payload. Volume is
// a Q0.16 fixed-point fraction in [0,1].
type Audio2DData struct {
	AssetUUID idhash.AssetUUID
	Volume    uint16
}

// MaxPayloadWords is the largest record size a component may occupy,
// in 4-byte words; exceeding it is a fatal build error.
const MaxPayloadWords = 255

// Build writes c's on-disk payload to w, substituting any asset
// references through ctx. It returns nothing; the caller
// (scene_writer.go) measures the record from the writer's cursor to
// align and backpatch the record header.
func (c *Component) Build(w *bwrite.Writer, ctx *BuildContext) {
	switch c.Kind {
	case KindCode:
		d := c.Code
		w.U16(uint16(ctx.resolve(d.ScriptUUID)))
		w.U16(d.Flags)
		w.Bytes(d.Args)
	case KindModel:
		d := c.Model
		w.U16(uint16(ctx.resolve(d.AssetUUID)))
		w.U8(d.Layer)
		w.U8(d.Flags)
		w.Bytes(d.Material[:])
		w.U8(uint8(len(d.MeshIndices)))
		w.Bytes(d.MeshIndices)
	case KindLight:
		d := c.Light
		w.Bytes(d.Color[:])
		w.U8(d.Index)
		w.U8(d.Type)
		w.S8(floatToS8(d.Dir.X))
		w.S8(floatToS8(d.Dir.Y))
		w.S8(floatToS8(d.Dir.Z))
	case KindCamera:
		d := c.Camera
		w.S32(d.VPOffset[0])
		w.S32(d.VPOffset[1])
		w.S32(d.VPSize[0])
		w.S32(d.VPSize[1])
		w.F32(d.Fov)
		w.F32(d.Near)
		w.F32(d.Far)
	case KindCollMesh:
		d := c.CollMesh
		w.U16(uint16(ctx.resolve(d.AssetUUID)))
		w.U16(0) // padding
	case KindCollBody:
		d := c.CollBody
		writeV3(w, d.HalfExtent)
		writeV3(w, d.Offset)
		w.U8(d.Flags)
		w.U8(d.MaskRead)
		w.U8(d.MaskWrite)
	case KindAudio2D:
		d := c.Audio2D
		w.U16(uint16(ctx.resolve(d.AssetUUID)))
		w.U16(d.Volume)
		w.U8(0) // flags, unused by any current asset kind
		w.U8(0) // padding
	}
}

func writeV3(w *bwrite.Writer, v lin.V3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}

// floatToS8 quantizes a [-1,1] float to the signed-byte fraction the
// original's direction vectors use (127 = 1.0).
func floatToS8(v float32) int8 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int8(v * 127)
}
