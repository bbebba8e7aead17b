package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

func writeProjectFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

// minimalProject lays out a project directory with one camera scene,
// one image asset, and one user script, enough to exercise a full
// Project.Build pass.
func minimalProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	conf := ProjectConf{Name: "demo", RomName: "demo.z64", PathEmu: "", PathN64Inst: ""}
	confBytes, err := json.Marshal(conf)
	if err != nil {
		t.Fatalf("marshal project conf: %v", err)
	}
	writeProjectFile(t, root, "project.json", confBytes)

	writeProjectFile(t, root, "assets/sky.png", []byte("fake-png"))
	writeProjectFile(t, root, "src/user/player.cpp", []byte("void update() {}"))

	scene := sceneDoc{
		ID:           1,
		ScreenWidth:  320,
		ScreenHeight: 240,
		Objects: []objectDoc{
			{
				ID:     1,
				Scale:  lin.V3{X: 1, Y: 1, Z: 1},
				Rot:    lin.QI,
				Parent: -1,
				Components: []compDoc{
					{Kind: "camera", VPSize: [2]int32{320, 240}, Fov: 75, Near: 10, Far: 10000},
				},
			},
		},
	}
	sceneBytes, err := json.Marshal(scene)
	if err != nil {
		t.Fatalf("marshal scene doc: %v", err)
	}
	writeProjectFile(t, root, "data/scenes/0001/conf.json", sceneBytes)

	return root
}

func TestProjectBuildWritesExpectedOutputs(t *testing.T) {
	root := minimalProject(t)
	project, err := LoadProject(root)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if project.Conf.Name != "demo" {
		t.Fatalf("expected project name 'demo', got %q", project.Conf.Name)
	}

	outputs, err := project.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(outputs) == 0 {
		t.Fatal("expected at least one output file")
	}

	for _, want := range []string{
		filepath.Join(root, "filesystem", "p64", "a"),
		filepath.Join(root, "src", "p64", "assetTable.h"),
		filepath.Join(root, "src", "p64", "scriptTable.cpp"),
		filepath.Join(root, "filesystem", "p64", "s0001"),
		filepath.Join(root, "filesystem", "p64", "s0001o"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("expected %s to exist: %v", want, err)
		}
	}
}

func TestProjectBuildDeterministic(t *testing.T) {
	root := minimalProject(t)
	project, err := LoadProject(root)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}

	if _, err := project.Build(nil); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(root, "filesystem", "p64", "s0001o"))
	if err != nil {
		t.Fatalf("read first object stream: %v", err)
	}

	if _, err := project.Build(nil); err != nil {
		t.Fatalf("second Build: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(root, "filesystem", "p64", "s0001o"))
	if err != nil {
		t.Fatalf("read second object stream: %v", err)
	}

	if string(first) != string(second) {
		t.Error("expected rebuilds to produce a byte-identical object stream")
	}
}

func TestProjectCleanRemovesGeneratedOutput(t *testing.T) {
	root := minimalProject(t)
	project, err := LoadProject(root)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if _, err := project.Build(nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := project.Clean(CleanOptions{Code: true, Assets: true}); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "filesystem", "p64")); !os.IsNotExist(err) {
		t.Error("expected filesystem/p64 to be removed")
	}
	if _, err := os.Stat(filepath.Join(root, "src", "p64")); !os.IsNotExist(err) {
		t.Error("expected src/p64 to be removed")
	}
}

func TestLoadProjectMissingConfigFails(t *testing.T) {
	root := t.TempDir()
	if _, err := LoadProject(root); err == nil {
		t.Fatal("expected an error loading a project with no project.json")
	}
}
