package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// ConvertJob describes one external asset conversion:
// the source file, the expected output path, and the tool-specific
// argument list derived from the asset's AssetConfig.
type ConvertJob struct {
	Kind       Asset
	OutputPath string
	Tool       string
	Args       []string
}

// NeedsBuild reports whether job's source is newer than (or its output
// is missing relative to) its output: rebuild if
// mtime(source) >= mtime(output) or the output is absent.
func NeedsBuild(sourcePath, outputPath string) (bool, error) {
	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false, fmt.Errorf("build: stat source %s: %w", sourcePath, err)
	}
	dstInfo, err := os.Stat(outputPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("build: stat output %s: %w", outputPath, err)
	}
	return !srcInfo.ModTime().Before(dstInfo.ModTime()), nil
}

// Run invokes job's external converter, appending outputPath to files
// on success. A non-zero exit is fatal for this asset's kind; the
// caller decides whether to abort the whole build or only this
// asset's kind.
func Run(ctx context.Context, job ConvertJob, files *[]string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	cmd := exec.CommandContext(ctx, job.Tool, job.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Info("building asset", "tool", job.Tool, "source", job.Kind.Path, "output", job.OutputPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build: %s failed converting %s: %w", job.Tool, job.Kind.Path, err)
	}
	*files = append(*files, job.OutputPath)
	return nil
}
