// Package runtime implements the scene loader side of the build
// pipeline: decoding the three sibling files a scene
// build emits back into an in-memory object tree and dispatching each
// component's payload to its Init function.
package runtime

import (
	"encoding/binary"
	"fmt"
)

// Scene config flags, mirroring build.Flag*.
const (
	FlagClearDepth uint32 = 1 << iota
	FlagClearColor
	FlagFramebuffer32
)

// SceneConf is the runtime's view of a scene's 16-byte config header.
// Its field order and size are exactly what the writer emits: no
// hidden padding, no extra fields.
type SceneConf struct {
	ScreenWidth  uint16
	ScreenHeight uint16
	Flags        uint32
	Clear        [4]uint8
	ObjectCount  uint32
}

// SceneConfSize is the fixed, authoritative byte size of SceneConf on
// disk.
const SceneConfSize = 16

// DecodeSceneConf parses the scene config file. A length other than
// SceneConfSize is a malformed-binary error: the reader
// reads exactly sizeof(SceneConf) and no more, so any mismatch means
// the file was built by a different writer revision.
func DecodeSceneConf(data []byte) (SceneConf, error) {
	if len(data) != SceneConfSize {
		return SceneConf{}, fmt.Errorf("runtime: scene conf is %d bytes, want %d", len(data), SceneConfSize)
	}
	var c SceneConf
	c.ScreenWidth = binary.BigEndian.Uint16(data[0:2])
	c.ScreenHeight = binary.BigEndian.Uint16(data[2:4])
	c.Flags = binary.BigEndian.Uint32(data[4:8])
	copy(c.Clear[:], data[8:12])
	c.ObjectCount = binary.BigEndian.Uint32(data[12:16])
	return c, nil
}
