package runtime

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

// Debug enables assertion-style panics on malformed object data,
// mirroring original_source's `assertf` debug-build behavior. Left
// false by default; set true in debug builds of a consumer binary.
var Debug = false

// objectHeaderSize is the fixed prefix before an object's component
// stream: u16 flags, u16 id, u16 group, u16 reserved, vec3 pos, vec3
// scale, u32 packedRot.
const objectHeaderSize = 2 + 2 + 2 + 2 + 12 + 12 + 4

// LoadObjects decodes the object stream produced by build.Scene.Build.
// In release mode (Debug == false) a malformed object is logged and
// decoding stops there: the objects decoded before it are returned,
// and the malformed object and everything after it in the stream are
// dropped. In debug mode a malformed object panics, matching the
// original's assertion-style failure.
func LoadObjects(data []byte, log *slog.Logger) []Object {
	if log == nil {
		log = slog.Default()
	}

	var objects []Object
	pos := 0
	for pos < len(data) {
		obj, next, err := decodeObject(data, pos)
		if err != nil {
			if Debug {
				panic(fmt.Sprintf("runtime: malformed object at offset %d: %v", pos, err))
			}
			log.Error("malformed scene object, skipping", "offset", pos, "error", err)
			break
		}
		objects = append(objects, obj)
		pos = next
	}
	reconcileGroups(objects)
	return objects
}

// reconcileGroups runs after every object in the stream has been
// decoded, mirroring the original loader's final "update groups" pass:
// a group-controller object's own starting state decides whether every
// object sharing its GroupID starts enabled. An object whose GroupID
// has no matching controller is left enabled.
func reconcileGroups(objects []Object) {
	active := make(map[uint16]bool)
	for _, obj := range objects {
		if obj.IsGroup() {
			active[obj.ID] = obj.SelfEnabled()
		}
	}
	for i := range objects {
		enabled, controlled := active[objects[i].GroupID]
		if !controlled {
			enabled = true
		}
		objects[i].Enabled = enabled
	}
}

func decodeObject(data []byte, pos int) (Object, int, error) {
	if pos+objectHeaderSize > len(data) {
		return Object{}, 0, fmt.Errorf("object header truncated")
	}

	p := data[pos:]
	flags := binary.BigEndian.Uint16(p[0:2])
	id := binary.BigEndian.Uint16(p[2:4])
	group := binary.BigEndian.Uint16(p[4:6])
	px, py, pz := beF32(p[8:12]), beF32(p[12:16]), beF32(p[16:20])
	sx, sy, sz := beF32(p[20:24]), beF32(p[24:28]), beF32(p[28:32])
	packedRot := be32(p[32:36])

	obj := Object{
		ID:      id,
		GroupID: group,
		Flags:   flags,
		Pos:     lin.V3{X: px, Y: py, Z: pz},
		Scale:   lin.V3{X: sx, Y: sy, Z: sz},
		Rot:     lin.Unpack(packedRot),
		Parent:  -1,
	}

	cursor := pos + objectHeaderSize
	for {
		if cursor+4 > len(data) {
			return Object{}, 0, fmt.Errorf("component record truncated for object %d", id)
		}
		kind := data[cursor]
		words := int(data[cursor+1])
		if kind == 0 && words == 0 {
			cursor += 4
			break
		}

		// words is the whole record's size, the 4-byte header included.
		if words < 1 {
			return Object{}, 0, fmt.Errorf("component record for object %d has word count 0", id)
		}
		payloadStart := cursor + 4
		payloadEnd := cursor + words*4
		if payloadEnd > len(data) {
			return Object{}, 0, fmt.Errorf("component payload for object %d overruns stream", id)
		}

		if int(kind) >= len(registry) || registry[kind] == nil {
			return Object{}, 0, fmt.Errorf("object %d references unknown component kind %d", id, kind)
		}
		value, err := registry[kind](data[payloadStart:payloadEnd])
		if err != nil {
			return Object{}, 0, fmt.Errorf("object %d component kind %d: %w", id, kind, err)
		}
		obj.Components = append(obj.Components, ComponentInstance{Kind: ComponentKind(kind), Data: value})

		cursor = payloadEnd
	}

	return obj, cursor, nil
}
