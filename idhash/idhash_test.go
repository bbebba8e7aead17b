package idhash

import "testing"

func TestContentAssetUUIDStable(t *testing.T) {
	a := ContentAssetUUID("/project/assets/hero.png")
	b := ContentAssetUUID("/project/assets/hero.png")
	if a != b {
		t.Fatalf("ContentAssetUUID not stable across calls: %d vs %d", a, b)
	}
}

func TestContentAssetUUIDDistinctPaths(t *testing.T) {
	a := ContentAssetUUID("/project/assets/hero.png")
	b := ContentAssetUUID("/project/assets/villain.png")
	if a == b {
		t.Fatalf("distinct paths hashed to the same AssetUUID: %d", a)
	}
}

func TestScriptAssetUUIDNonceDistinguishes(t *testing.T) {
	a := ScriptAssetUUID("/project/scripts/boss.cpp", "v1")
	b := ScriptAssetUUID("/project/scripts/boss.cpp", "v2")
	if a == b {
		t.Fatalf("different nonces produced the same script UUID: %d", a)
	}
}

func TestAssetIndexPacking(t *testing.T) {
	idx := NewAssetIndex(KindModel, 0x001234)
	if got, want := idx.Kind(), KindModel; got != want {
		t.Errorf("Kind = %d, want %d", got, want)
	}
	if got, want := idx.Serial(), uint32(0x001234); got != want {
		t.Errorf("Serial = %#x, want %#x", got, want)
	}
}

func TestAssetIndexSerialMasked(t *testing.T) {
	idx := NewAssetIndex(KindImage, 0xFFFFFFFF)
	if got, want := idx.Serial(), uint32(0xFFFFFF); got != want {
		t.Errorf("Serial = %#x, want %#x (low 24 bits only)", got, want)
	}
}

func TestAssetAllocatorMonotonic(t *testing.T) {
	var alloc AssetAllocator
	first := alloc.Allocate(KindModel)
	second := alloc.Allocate(KindModel)
	if first.Serial() != 0 || second.Serial() != 1 {
		t.Errorf("expected serials 0,1, got %d,%d", first.Serial(), second.Serial())
	}
	if first.Kind() != KindModel || second.Kind() != KindModel {
		t.Errorf("expected both allocations to keep kind %d", KindModel)
	}
}

func TestAssetAllocatorPerKindCounters(t *testing.T) {
	var alloc AssetAllocator
	m := alloc.Allocate(KindModel)
	i := alloc.Allocate(KindImage)
	if m.Serial() != 0 || i.Serial() != 0 {
		t.Errorf("expected independent per-kind counters, got model=%d image=%d", m.Serial(), i.Serial())
	}
}

func TestNewComponentUUIDUnique(t *testing.T) {
	a := NewComponentUUID()
	b := NewComponentUUID()
	if a == b {
		t.Error("expected two random ComponentUUIDs to differ")
	}
}

func TestDeadAssetSentinel(t *testing.T) {
	if DeadAsset != 0xDEAD {
		t.Errorf("DeadAsset = %#x, want 0xdead", uint32(DeadAsset))
	}
}
