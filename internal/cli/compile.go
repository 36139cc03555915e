package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxonhq/taxon/internal/compiler"
	"github.com/taxonhq/taxon/internal/snapshot"
)

// CompileSummary is the success payload of the compile command.
type CompileSummary struct {
	Version       string `json:"version"`
	Classes       int    `json:"classes"`
	Objects       int    `json:"objects"`
	Categories    int    `json:"categories"`
	Dictionary    int    `json:"dictionary"`
	SnapshotBuild string `json:"snapshot_build,omitempty"`
}

func (s CompileSummary) String() string {
	out := fmt.Sprintf("schema %s: %d classes, %d objects, %d categories, %d dictionary entries",
		s.Version, s.Classes, s.Objects, s.Categories, s.Dictionary)
	if s.SnapshotBuild != "" {
		out += fmt.Sprintf("\nsnapshot build %s", s.SnapshotBuild)
	}
	return out
}

// NewCompileCommand creates the compile command: build the full model
// from a descriptor tree and optionally export it as a sqlite snapshot.
func NewCompileCommand(opts *RootOptions) *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "compile <descriptor-root>",
		Short: "Compile a descriptor tree into a resolved schema model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			model, err := compiler.Compile(compiler.Options{Root: args[0], ExtensionsDir: opts.Extensions})
			if err != nil {
				out.Error(err.Error(), nil)
				return WrapExitError(ExitFailure, "compilation failed", err)
			}

			summary := CompileSummary{
				Version:    model.Version(),
				Classes:    len(model.Classes()),
				Objects:    len(model.Objects()),
				Categories: len(model.Categories()),
				Dictionary: len(model.Dictionary()),
			}

			if snapshotPath != "" {
				snap, err := snapshot.Open(snapshotPath)
				if err != nil {
					out.Error(err.Error(), nil)
					return WrapExitError(ExitCommandError, "opening snapshot", err)
				}
				defer snap.Close()
				buildID, err := snap.Write(model)
				if err != nil {
					out.Error(err.Error(), nil)
					return WrapExitError(ExitCommandError, "writing snapshot", err)
				}
				summary.SnapshotBuild = buildID
			}

			return out.Success(summary)
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "write the compiled model to a sqlite snapshot file")
	return cmd
}
