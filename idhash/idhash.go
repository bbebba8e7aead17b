// Package idhash derives and allocates the identifiers used across the
// asset/scene build pipeline: content-addressed AssetUUIDs, the
// kind-tagged AssetIndex allocated at build time, and random
// ComponentUUIDs used for editor-side undo/redo.
package idhash

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/google/uuid"
)

// AssetUUID identifies a content asset by the hash of its source path,
// stable across rebuilds of the same project.
type AssetUUID uint64

// AssetKind is the top-byte tag of an AssetIndex, naming what loader
// the runtime dispatches a given index to.
type AssetKind uint8

// Asset kinds. KindUnknown is value 0 so that the zero AssetIndex
// (kind=Unknown, serial=0) is always the implicit fallback rather than
// a real allocated asset.
const (
	KindUnknown AssetKind = iota
	KindImage
	KindAudio
	KindFont
	KindModel
	KindScript
	KindGlobalScript
	KindPrefab
)

// AssetIndex is the 32-bit build-time handle for an asset: the top 8
// bits are the AssetKind, the low 24 bits are a monotonic serial
// within that kind's allocation.
type AssetIndex uint32

// DeadAsset is the sentinel index emitted when a component references
// an asset that failed to resolve: the build logs the
// failure and substitutes this value rather than aborting, since one
// bad link should not block the rest of the project.
const DeadAsset AssetIndex = 0xDEAD

// NewAssetIndex packs a kind and serial into an AssetIndex.
func NewAssetIndex(kind AssetKind, serial uint32) AssetIndex {
	return AssetIndex(uint32(kind)<<24 | serial&0xFFFFFF)
}

// Kind returns the asset kind encoded in the top byte.
func (a AssetIndex) Kind() AssetKind { return AssetKind(a >> 24) }

// Serial returns the low 24 bits, the allocation order within Kind().
func (a AssetIndex) Serial() uint32 { return uint32(a) & 0xFFFFFF }

// ContentAssetUUID derives the UUID for a content asset (image, audio,
// font, model, prefab) from its absolute source path. Two builds of
// the same project produce the same UUID for the same path, which is
// what lets the asset table be content-addressed rather than order-
// dependent.
func ContentAssetUUID(absPath string) AssetUUID {
	return sha256Truncate("ASSET:" + absPath)
}

// ScriptAssetUUID derives the UUID for a generated script asset from
// its absolute path and a caller-supplied nonce.
func ScriptAssetUUID(absPath string, nonce string) AssetUUID {
	return sha256Truncate("CODE:" + absPath + nonce)
}

func sha256Truncate(s string) AssetUUID {
	h := sha256.Sum256([]byte(s))
	return AssetUUID(binary.BigEndian.Uint64(h[:8]))
}

// ComponentUUID identifies a single component instance, used by the
// editor for undo/redo and context-menu targeting. It carries no
// semantic meaning to the build pipeline or runtime beyond uniqueness.
type ComponentUUID uint64

// NewComponentUUID returns a random ComponentUUID, truncating a
// version-4 UUID down to the 64 bits the on-disk format allocates for
// component identity.
func NewComponentUUID() ComponentUUID {
	u := uuid.New()
	b := u[:]
	return ComponentUUID(binary.BigEndian.Uint64(b[8:16]))
}

// AssetAllocator hands out monotonically increasing AssetIndex values
// per kind, the build-time equivalent of an entity id
// allocator: builds are strictly additive (an asset is never removed
// mid-build), so there is no free list to manage, only a per-kind
// counter.
type AssetAllocator struct {
	next [KindPrefab + 1]uint32
}

// Allocate returns the next AssetIndex for kind and advances its
// counter.
func (a *AssetAllocator) Allocate(kind AssetKind) AssetIndex {
	serial := a.next[kind]
	a.next[kind]++
	return NewAssetIndex(kind, serial)
}

// ObjectID is a scene-local object handle, assigned by the editor and
// carried unchanged into the built scene binary.
type ObjectID uint16
