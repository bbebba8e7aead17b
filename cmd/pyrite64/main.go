// Command pyrite64 is the non-GUI build driver for a project directory:
// `pyrite64 build <path>` runs the asset/scene build pipeline,
// `pyrite64 clean <path>` removes its generated output. This is the
// Go-idiomatic rendering of `original_source/src/cli.cpp`'s
// argparse-based `--cli --cmd {build|clean} <path>` contract; the GUI
// branch that argparse contract also supports is out of scope here.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/proverbiallemon/pyrite64/build"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pyrite64",
		Short:         "Build driver for pyrite64 projects",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newBuildCmd(), newCleanCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <project>",
		Short: "Build a project's assets, scenes, and generated glue code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(os.Stdout, nil))
			project, err := build.LoadProject(args[0])
			if err != nil {
				return err
			}
			log.Info("building project", "name", project.Conf.Name, "path", project.Path)
			outputs, err := project.Build(log)
			if err != nil {
				return fmt.Errorf("build failed: %w", err)
			}
			log.Info("build done", "files", len(outputs))
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <project>",
		Short: "Remove a project's generated code and built assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(os.Stdout, nil))
			project, err := build.LoadProject(args[0])
			if err != nil {
				return err
			}
			log.Info("cleaning project", "name", project.Conf.Name, "path", project.Path)
			return project.Clean(build.CleanOptions{Code: true, Assets: true, Engine: true})
		},
	}
}
