package build

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AssetConfig is the per-asset build-flag sidecar, loaded from a `<name>.meta.yaml` next to the asset source.
// It never reaches the runtime. Project asset discovery reads only its
// Exclude field; Compression, ResampleRate and Charset are parsed but
// no code in this module turns them into a converter argument list.
type AssetConfig struct {
	Exclude      bool   `yaml:"exclude"`
	Compression  int    `yaml:"compression"`
	ResampleRate int    `yaml:"resample_rate"`
	Charset      string `yaml:"charset"`
}

// LoadAssetConfig reads and parses the sidecar at path. A missing file
// is not an error: it returns the zero-value AssetConfig, matching the
// original's "asset config is optional, defaults apply" convention.
func LoadAssetConfig(path string) (AssetConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return AssetConfig{}, nil
	}
	if err != nil {
		return AssetConfig{}, fmt.Errorf("build: read asset config %s: %w", path, err)
	}

	var cfg AssetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AssetConfig{}, fmt.Errorf("build: parse asset config %s: %w", path, err)
	}
	return cfg, nil
}
