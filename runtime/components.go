package runtime

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/proverbiallemon/pyrite64/idhash"
)

// CodeData is the runtime's decoded Code component.
type CodeData struct {
	ScriptIndex idhash.AssetIndex
	Flags       uint16
	Args        []byte
}

// ModelData is the runtime's decoded Model component.
type ModelData struct {
	AssetIndex  idhash.AssetIndex
	Layer       uint8
	Flags       uint8
	Material    [4]byte
	MeshIndices []uint8
}

// LightData is the runtime's decoded Light component. Dir
// is dequantized from the on-disk i8×3 fraction (127 = 1.0), matching
// original_source's `(float)dir[i] * (1.0f/127.0f)` convention.
type LightData struct {
	Color [4]uint8
	Index uint8
	Type  uint8
	Dir   [3]float32
}

// CameraData is the runtime's decoded Camera component.
type CameraData struct {
	VPOffset [2]int32
	VPSize   [2]int32
	Fov      float32
	Near     float32
	Far      float32
}

// CollMeshData is the runtime's decoded CollMesh component.
type CollMeshData struct {
	AssetIndex idhash.AssetIndex
}

// CollBodyData is the runtime's decoded CollBody component.
type CollBodyData struct {
	HalfExtent [3]float32
	Offset     [3]float32
	Flags      uint8
	MaskRead   uint8
	MaskWrite  uint8
}

// Audio2DData is the runtime's decoded Audio2D component.
type Audio2DData struct {
	AssetIndex idhash.AssetIndex
	Volume     uint16
}

// InitFunc decodes a component's raw on-disk payload (the bytes
// between the record's header and its next 4-byte-aligned boundary)
// into its in-memory form. A nil payload signals destruction — none of
// this module's component kinds hold finalizable resources, so Init is
// never called with a nil payload; the registry only implements the
// construction half of the contract.
type InitFunc func(payload []byte) (any, error)

// registry is the constant, compile-time dispatch table indexed by
// ComponentKind, the Go rendering of the original's COMP_TABLE
// function-pointer array.
var registry = [numComponentKinds]InitFunc{
	KindCode:     initCode,
	KindModel:    initModel,
	KindLight:    initLight,
	KindCamera:   initCamera,
	KindCollMesh: initCollMesh,
	KindCollBody: initCollBody,
	KindAudio2D:  initAudio2D,
}

func be16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func be32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func beF32(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

func initCode(p []byte) (any, error) {
	if len(p) < 4 {
		return nil, fmt.Errorf("runtime: Code payload too short (%d bytes)", len(p))
	}
	return &CodeData{
		ScriptIndex: idhash.AssetIndex(be16(p[0:2])),
		Flags:       be16(p[2:4]),
		Args:        append([]byte(nil), p[4:]...),
	}, nil
}

func initModel(p []byte) (any, error) {
	if len(p) < 9 {
		return nil, fmt.Errorf("runtime: Model payload too short (%d bytes)", len(p))
	}
	count := int(p[8])
	if len(p) < 9+count {
		return nil, fmt.Errorf("runtime: Model payload truncated mesh-index list")
	}
	d := &ModelData{
		AssetIndex: idhash.AssetIndex(be16(p[0:2])),
		Layer:      p[2],
		Flags:      p[3],
	}
	copy(d.Material[:], p[4:8])
	d.MeshIndices = append([]uint8(nil), p[9:9+count]...)
	return d, nil
}

func initLight(p []byte) (any, error) {
	if len(p) < 9 {
		return nil, fmt.Errorf("runtime: Light payload too short (%d bytes)", len(p))
	}
	d := &LightData{Index: p[4], Type: p[5]}
	copy(d.Color[:], p[0:4])
	for i := 0; i < 3; i++ {
		d.Dir[i] = float32(int8(p[6+i])) / 127.0
	}
	return d, nil
}

func initCamera(p []byte) (any, error) {
	if len(p) < 28 {
		return nil, fmt.Errorf("runtime: Camera payload too short (%d bytes)", len(p))
	}
	return &CameraData{
		VPOffset: [2]int32{int32(be32(p[0:4])), int32(be32(p[4:8]))},
		VPSize:   [2]int32{int32(be32(p[8:12])), int32(be32(p[12:16]))},
		Fov:      beF32(p[16:20]),
		Near:     beF32(p[20:24]),
		Far:      beF32(p[24:28]),
	}, nil
}

func initCollMesh(p []byte) (any, error) {
	if len(p) < 4 {
		return nil, fmt.Errorf("runtime: CollMesh payload too short (%d bytes)", len(p))
	}
	return &CollMeshData{AssetIndex: idhash.AssetIndex(be16(p[0:2]))}, nil
}

func initCollBody(p []byte) (any, error) {
	if len(p) < 27 {
		return nil, fmt.Errorf("runtime: CollBody payload too short (%d bytes)", len(p))
	}
	d := &CollBodyData{}
	for i := 0; i < 3; i++ {
		d.HalfExtent[i] = beF32(p[i*4 : i*4+4])
		d.Offset[i] = beF32(p[12+i*4 : 12+i*4+4])
	}
	d.Flags = p[24]
	d.MaskRead = p[25]
	d.MaskWrite = p[26]
	return d, nil
}

func initAudio2D(p []byte) (any, error) {
	if len(p) < 6 {
		return nil, fmt.Errorf("runtime: Audio2D payload too short (%d bytes)", len(p))
	}
	return &Audio2DData{
		AssetIndex: idhash.AssetIndex(be16(p[0:2])),
		Volume:     be16(p[2:4]),
	}, nil
}
