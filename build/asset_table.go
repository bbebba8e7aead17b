package build

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/proverbiallemon/pyrite64/bwrite"
	"github.com/proverbiallemon/pyrite64/idhash"
)

// Asset describes one project input before it has been assigned an
// index.
type Asset struct {
	Path    string // absolute source path
	RomPath string // destination path under "rom:/", no prefix stored on disk
	Kind    idhash.AssetKind
	Exclude bool
}

// AssetEntry is an asset after table assignment: a stable index, its
// UUID, and the rom-path that will be embedded in the table's string
// blob.
type AssetEntry struct {
	UUID    idhash.AssetUUID
	Index   idhash.AssetIndex
	RomPath string
}

// AssetTable is the build-time accumulation of every asset in a
// project: a UUID→index map alongside the ordered entry list that
// will be serialized.
type AssetTable struct {
	Entries []AssetEntry
	byUUID  map[idhash.AssetUUID]idhash.AssetIndex

	alloc idhash.AssetAllocator
	log   *slog.Logger
}

// NewAssetTable returns an empty table. A nil logger defaults to
// slog.Default().
func NewAssetTable(log *slog.Logger) *AssetTable {
	if log == nil {
		log = slog.Default()
	}
	return &AssetTable{byUUID: make(map[idhash.AssetUUID]idhash.AssetIndex), log: log}
}

// Build enumerates assets in a stable (path-sorted) order and assigns
// each a monotonic AssetIndex within its kind.
// Excluded assets and the Unknown kind are skipped: KindUnknown is
// AssetKind value 0, so the zero AssetIndex always decodes to
// kind=Unknown, serial=0 rather than any real, allocated asset — the
// "index 0 is the implicit fallback" guarantee falls directly out of
// that ordering, not out of any special-casing here.
func (t *AssetTable) Build(assets []Asset) {
	sorted := make([]Asset, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, a := range sorted {
		if a.Exclude || a.Kind == idhash.KindUnknown {
			continue
		}
		uuid := idhash.ContentAssetUUID(a.Path)
		idx := t.alloc.Allocate(a.Kind)
		t.byUUID[uuid] = idx
		t.Entries = append(t.Entries, AssetEntry{UUID: uuid, Index: idx, RomPath: a.RomPath})
	}
}

// AddScript registers a generated-script asset, which is keyed by path
// and nonce rather than file content.
func (t *AssetTable) AddScript(absPath, nonce, romPath string, kind idhash.AssetKind) idhash.AssetIndex {
	uuid := idhash.ScriptAssetUUID(absPath, nonce)
	idx := t.alloc.Allocate(kind)
	t.byUUID[uuid] = idx
	t.Entries = append(t.Entries, AssetEntry{UUID: uuid, Index: idx, RomPath: romPath})
	return idx
}

// Lookup resolves an AssetUUID to its AssetIndex, returning
// idhash.DeadAsset and false if the asset never made it into the
// table.
func (t *AssetTable) Lookup(uuid idhash.AssetUUID) (idhash.AssetIndex, bool) {
	idx, ok := t.byUUID[uuid]
	if !ok {
		t.log.Warn("asset link did not resolve", "uuid", uuid)
		return idhash.DeadAsset, false
	}
	return idx, true
}

// LookupByRomPath performs the reverse lookup used by testable
// property 4: for every asset, looking it up by its
// rom-path returns the same index Build assigned it.
func (t *AssetTable) LookupByRomPath(romPath string) (idhash.AssetIndex, bool) {
	for _, e := range t.Entries {
		if e.RomPath == romPath {
			return e.Index, true
		}
	}
	return idhash.DeadAsset, false
}

// Encode serializes the asset table to its on-disk layout: a u32 count,
// a header of (path-offset, kind<<24) pairs, then a packed,
// NUL-terminated string blob holding each rom-path without its "rom:/"
// prefix. Output is a pure function of
// Entries, so two builds from identical inputs produce byte-identical
// tables.
func (t *AssetTable) Encode() []byte {
	w := bwrite.New(64 + len(t.Entries)*16)
	w.U32(uint32(len(t.Entries)))

	headerEnd := uint32(4 + len(t.Entries)*8)
	stringOffset := uint32(0)
	offsets := make([]uint32, len(t.Entries))
	for i, e := range t.Entries {
		offsets[i] = headerEnd + stringOffset
		stringOffset += uint32(len(stripRomPrefix(e.RomPath))) + 1
	}

	for i, e := range t.Entries {
		w.U32(offsets[i])
		w.U32(uint32(e.Index.Kind()) << 24)
	}
	for _, e := range t.Entries {
		w.String(stripRomPrefix(e.RomPath))
	}
	return w.Data()
}

// AssetFileMap renders the "if(path == rom-path) return index;" lookup
// body consumed by the generated C source, one line per
// asset in table order.
func (t *AssetTable) AssetFileMap() string {
	out := ""
	for _, e := range t.Entries {
		out += fmt.Sprintf("if(path == \"%s\")return %d;\n", stripRomPrefix(e.RomPath), uint32(e.Index))
	}
	return out
}

func stripRomPrefix(romPath string) string {
	const prefix = "rom:/"
	if len(romPath) > len(prefix) && romPath[:len(prefix)] == prefix {
		return romPath[len(prefix):]
	}
	return romPath
}

// RomPath joins a project-relative output path into the "rom:/"
// namespace, matching the convention every built asset's path carries.
func RomPath(relPath string) string {
	return "rom:/" + filepath.ToSlash(relPath)
}
