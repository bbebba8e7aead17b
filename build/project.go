package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/proverbiallemon/pyrite64/idhash"
	"github.com/proverbiallemon/pyrite64/math/lin"
)

// ProjectConf is the deserialized form of a project's root
// `project.json`, grounded on
// `original_source/src/project/project.h`'s ProjectConf fields.
type ProjectConf struct {
	Name          string `json:"name"`
	RomName       string `json:"romName"`
	PathEmu       string `json:"pathEmu"`
	PathN64Inst   string `json:"pathN64Inst"`
	SceneIDOnBoot uint32 `json:"sceneIdOnBoot"`
}

// Project is a loaded project directory: its config plus the asset and
// scene sets discovered on disk.
type Project struct {
	Path string
	Conf ProjectConf
}

// LoadProject reads path/project.json. A missing project.json is
// fatal — unlike an asset's sidecar config, the project root config is
// not optional.
func LoadProject(path string) (*Project, error) {
	confPath := filepath.Join(path, "project.json")
	data, err := os.ReadFile(confPath)
	if err != nil {
		return nil, fmt.Errorf("build: read %s: %w", confPath, err)
	}
	var conf ProjectConf
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("build: parse %s: %w", confPath, err)
	}
	return &Project{Path: path, Conf: conf}, nil
}

// assetExtKinds maps a source file extension to the AssetKind the
// build pipeline assigns it. Anything unlisted is idhash.KindUnknown
// and is skipped by AssetTable.Build.
var assetExtKinds = map[string]idhash.AssetKind{
	".png":  idhash.KindImage,
	".tga":  idhash.KindImage,
	".wav":  idhash.KindAudio,
	".ogg":  idhash.KindAudio,
	".ttf":  idhash.KindFont,
	".otf":  idhash.KindFont,
	".gltf": idhash.KindModel,
	".glb":  idhash.KindModel,
	".pfab": idhash.KindPrefab,
}

// discoverAssets walks path/assets, inferring each file's kind from
// its extension and pairing it with an optional `<name>.meta.yaml`
// sidecar. Files with no recognized extension are
// still listed with idhash.KindUnknown so AssetTable.Build's "skip
// unknown kinds" rule is visible in one place rather than filtered out
// here.
func (p *Project) discoverAssets() ([]Asset, error) {
	root := filepath.Join(p.Path, "assets")
	var assets []Asset
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta.yaml") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		sidecar := strings.TrimSuffix(path, ext) + ".meta.yaml"
		cfg, err := LoadAssetConfig(sidecar)
		if err != nil {
			return err
		}
		assets = append(assets, Asset{
			Path:    path,
			RomPath: RomPath(filepath.ToSlash(rel)),
			Kind:    assetExtKinds[strings.ToLower(filepath.Ext(path))],
			Exclude: cfg.Exclude,
		})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build: scan assets: %w", err)
	}
	return assets, nil
}

// discoverScripts walks path/src/user for *.cpp files, each of which
// becomes a Script asset keyed by path and content.
func (p *Project) discoverScripts() ([]string, error) {
	root := filepath.Join(p.Path, "src", "user")
	var scripts []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cpp") {
			scripts = append(scripts, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build: scan scripts: %w", err)
	}
	sort.Strings(scripts)
	return scripts, nil
}

// sceneDoc is the editor-facing JSON shape of a scene file
// (`data/scenes/<id>/conf.json`), distinct from the packed binary
// Scene.EncodeConf layout: this is what a human or the GUI edits, the
// binary is what the build pipeline emits from it.
type sceneDoc struct {
	ID            uint32      `json:"id"`
	ScreenWidth   uint16      `json:"screenWidth"`
	ScreenHeight  uint16      `json:"screenHeight"`
	ClearDepth    bool        `json:"clearDepth"`
	ClearColor    bool        `json:"clearColor"`
	Framebuffer32 bool        `json:"framebuffer32"`
	Clear         [4]uint8    `json:"clear"`
	Objects       []objectDoc `json:"objects"`
}

type objectDoc struct {
	ID         uint16    `json:"id"`
	GroupID    uint16    `json:"groupId"`
	Flags      uint16    `json:"flags"`
	Pos        lin.V3    `json:"pos"`
	Scale      lin.V3    `json:"scale"`
	Rot        lin.Q     `json:"rot"`
	Parent     int       `json:"parent"`
	Components []compDoc `json:"components"`
}

// compDoc carries every component kind's fields flattened into one
// struct; json.Unmarshal leaves the fields a given kind doesn't use at
// their zero value, and toComponent only reads the ones that apply.
type compDoc struct {
	Kind string `json:"kind"`

	ScriptUUID string `json:"scriptUUID"`
	Flags      uint16 `json:"flags"`
	Args       []byte `json:"args"`

	AssetUUID   string   `json:"assetUUID"`
	Layer       uint8    `json:"layer"`
	Material    [4]byte  `json:"material"`
	MeshIndices []uint8  `json:"meshIndices"`

	Color [4]uint8 `json:"color"`
	Index uint8    `json:"index"`
	Type  uint8    `json:"type"`
	Dir   lin.V3   `json:"dir"`

	VPOffset [2]int32 `json:"vpOffset"`
	VPSize   [2]int32 `json:"vpSize"`
	Fov      float32  `json:"fov"`
	Near     float32  `json:"near"`
	Far      float32  `json:"far"`

	HalfExtent lin.V3 `json:"halfExtent"`
	Offset     lin.V3 `json:"offset"`
	MaskRead   uint8  `json:"maskRead"`
	MaskWrite  uint8  `json:"maskWrite"`

	Volume uint16 `json:"volume"`
}

func (d compDoc) toComponent() (Component, error) {
	uuid := func(s string) idhash.AssetUUID {
		var v uint64
		fmt.Sscanf(s, "%x", &v)
		return idhash.AssetUUID(v)
	}
	switch d.Kind {
	case "code":
		return Component{Kind: KindCode, Code: &CodeData{ScriptUUID: uuid(d.ScriptUUID), Flags: d.Flags, Args: d.Args}}, nil
	case "model":
		return Component{Kind: KindModel, Model: &ModelData{AssetUUID: uuid(d.AssetUUID), Layer: d.Layer, Flags: uint8(d.Flags), Material: d.Material, MeshIndices: d.MeshIndices}}, nil
	case "light":
		return Component{Kind: KindLight, Light: &LightData{Color: d.Color, Index: d.Index, Type: d.Type, Dir: d.Dir}}, nil
	case "camera":
		return Component{Kind: KindCamera, Camera: &CameraData{VPOffset: d.VPOffset, VPSize: d.VPSize, Fov: d.Fov, Near: d.Near, Far: d.Far}}, nil
	case "collMesh":
		return Component{Kind: KindCollMesh, CollMesh: &CollMeshData{AssetUUID: uuid(d.AssetUUID)}}, nil
	case "collBody":
		return Component{Kind: KindCollBody, CollBody: &CollBodyData{HalfExtent: d.HalfExtent, Offset: d.Offset, Flags: uint8(d.Flags), MaskRead: d.MaskRead, MaskWrite: d.MaskWrite}}, nil
	case "audio2d":
		return Component{Kind: KindAudio2D, Audio2D: &Audio2DData{AssetUUID: uuid(d.AssetUUID), Volume: d.Volume}}, nil
	default:
		return Component{}, fmt.Errorf("build: unknown component kind %q", d.Kind)
	}
}

// loadSceneDoc decodes one data/scenes/<id>/conf.json into a build
// Scene ready for EncodeObjects/EncodeConf.
func loadSceneDoc(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("build: read scene %s: %w", path, err)
	}
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("build: parse scene %s: %w", path, err)
	}

	objects := make([]Object, len(doc.Objects))
	for i, od := range doc.Objects {
		comps := make([]Component, len(od.Components))
		for j, cd := range od.Components {
			c, err := cd.toComponent()
			if err != nil {
				return nil, fmt.Errorf("build: scene %s object %d: %w", path, od.ID, err)
			}
			comps[j] = c
		}
		objects[i] = Object{
			ID:         idhash.ObjectID(od.ID),
			GroupID:    od.GroupID,
			Flags:      od.Flags,
			Pos:        od.Pos,
			Scale:      od.Scale,
			Rot:        od.Rot,
			Components: comps,
			Parent:     od.Parent,
		}
	}

	return &Scene{
		ID:            doc.ID,
		ScreenWidth:   doc.ScreenWidth,
		ScreenHeight:  doc.ScreenHeight,
		ClearDepth:    doc.ClearDepth,
		ClearColor:    doc.ClearColor,
		Framebuffer32: doc.Framebuffer32,
		Clear:         doc.Clear,
		Objects:       objects,
	}, nil
}

// discoverScenes lists every data/scenes/*/conf.json under the
// project, sorted for a deterministic build order.
func (p *Project) discoverScenes() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.Path, "data", "scenes", "*", "conf.json"))
	if err != nil {
		return nil, fmt.Errorf("build: scan scenes: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Build runs a full project build:
// discover assets and scripts, assign the asset table, build every
// scene, and write the generated glue files under
// filesystem/p64 and src/p64. It returns the list of output paths
// written, mirroring the original's sceneCtx.files accumulation.
func (p *Project) Build(log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.Default()
	}
	fsDir := filepath.Join(p.Path, "filesystem", "p64")
	if err := os.MkdirAll(fsDir, 0o755); err != nil {
		return nil, fmt.Errorf("build: create %s: %w", fsDir, err)
	}
	srcDir := filepath.Join(p.Path, "src", "p64")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, fmt.Errorf("build: create %s: %w", srcDir, err)
	}

	assets, err := p.discoverAssets()
	if err != nil {
		return nil, err
	}
	scripts, err := p.discoverScripts()
	if err != nil {
		return nil, err
	}

	table := NewAssetTable(log)
	table.Build(assets)

	var scriptEntries []ScriptEntry
	for _, s := range scripts {
		data, err := os.ReadFile(s)
		if err != nil {
			return nil, fmt.Errorf("build: read script %s: %w", s, err)
		}
		romPath := RomPath(filepath.ToSlash(s))
		nonce := string(data)
		table.AddScript(s, nonce, romPath, idhash.KindScript)
		scriptEntries = append(scriptEntries, ScriptEntry{UUID: idhash.ScriptAssetUUID(s, nonce)})
	}

	var outputs []string

	ctx := &BuildContext{Assets: table, Log: log}
	sceneDocPaths, err := p.discoverScenes()
	if err != nil {
		return nil, err
	}
	for _, docPath := range sceneDocPaths {
		scene, err := loadSceneDoc(docPath)
		if err != nil {
			return nil, err
		}
		log.Info("building scene", "id", scene.ID, "source", docPath)
		if err := scene.Build(ctx, fsDir); err != nil {
			return nil, fmt.Errorf("build: scene %d: %w", scene.ID, err)
		}
		confName, objName, strName := scene.FileNames()
		outputs = append(outputs, filepath.Join(fsDir, confName), filepath.Join(fsDir, objName), filepath.Join(fsDir, strName))
	}

	tablePath := filepath.Join(fsDir, "a")
	if err := writeBytes(tablePath, table.Encode()); err != nil {
		return nil, err
	}
	outputs = append(outputs, tablePath)

	headerPath := filepath.Join(srcDir, "assetTable.h")
	if err := os.WriteFile(headerPath, []byte(GenerateAssetTableHeader(table)), 0o644); err != nil {
		return nil, fmt.Errorf("build: write %s: %w", headerPath, err)
	}
	outputs = append(outputs, headerPath)

	scriptTablePath := filepath.Join(srcDir, "scriptTable.cpp")
	if err := os.WriteFile(scriptTablePath, []byte(GenerateScriptTable(scriptEntries)), 0o644); err != nil {
		return nil, fmt.Errorf("build: write %s: %w", scriptTablePath, err)
	}
	outputs = append(outputs, scriptTablePath)

	log.Info("build done", "project", p.Conf.Name, "outputs", len(outputs))
	return outputs, nil
}

// CleanOptions selects which generated output categories CleanProject
// removes, matching `original_source/src/build/projectBuilder.h`'s
// CleanArgs{code, assets, engine}.
type CleanOptions struct {
	Code   bool
	Assets bool
	Engine bool
}

// Clean removes the generated output directories selected by opts.
// "Engine" output is out of scope for this module (no engine binary is
// produced here), so Engine is accepted for interface parity with the
// original but currently a no-op.
func (p *Project) Clean(opts CleanOptions) error {
	if opts.Code {
		if err := os.RemoveAll(filepath.Join(p.Path, "src", "p64")); err != nil {
			return fmt.Errorf("build: clean generated code: %w", err)
		}
	}
	if opts.Assets {
		if err := os.RemoveAll(filepath.Join(p.Path, "filesystem", "p64")); err != nil {
			return fmt.Errorf("build: clean built assets: %w", err)
		}
	}
	return nil
}
