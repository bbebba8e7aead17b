package runtime

import (
	"github.com/proverbiallemon/pyrite64/math/lin"
)

// ComponentKind mirrors build.ComponentKind; the two packages stay
// independent (the runtime never imports the build pipeline) but must
// agree on the numeric tag, the same way the original's asset builder
// and engine runtime are separate binaries sharing only a wire format.
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

// ComponentInstance is a loaded component: its kind tag plus whatever
// in-memory value that kind's Init function produced.
type ComponentInstance struct {
	Kind ComponentKind
	Data any
}

// Object flag bits, read from the wire header's flags word.
// FlagIsGroup marks an object as a group controller: its GroupID names
// the group, and FlagSelfEnabled carries whether that group starts
// active. Plain (non-group) objects never set FlagIsGroup, and their
// own GroupID only says which group they belong to, not one they
// control.
const (
	FlagIsGroup     uint16 = 1 << 0
	FlagSelfEnabled uint16 = 1 << 1
)

// Object is the runtime's in-memory form of a scene object. Parent is
// the index of the owning object within the owning Scene's Objects
// slice, or -1 for a top-level object.
type Object struct {
	ID         uint16
	GroupID    uint16
	Flags      uint16
	Pos        lin.V3
	Scale      lin.V3
	Rot        lin.Q
	Components []ComponentInstance
	Parent     int

	// Enabled is resolved by the group-reconciliation pass that runs
	// after every object in a scene has been decoded: it reflects the
	// controlling group object's FlagSelfEnabled state, or true for an
	// object whose GroupID has no controller.
	Enabled bool
}

// IsGroup reports whether o is a group controller.
func (o Object) IsGroup() bool { return o.Flags&FlagIsGroup != 0 }

// SelfEnabled reports a group controller's own starting active state.
func (o Object) SelfEnabled() bool { return o.Flags&FlagSelfEnabled != 0 }
