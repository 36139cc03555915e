package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxonhq/taxon/internal/compiler"
	"github.com/taxonhq/taxon/internal/loader"
)

// NewValidateCommand creates the validate command. By default it stops
// at the first structural error, exactly as a compile would; with
// --collect-all it vets every descriptor file first and reports all
// file-level problems at once before attempting graph resolution.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	var collectAll bool

	cmd := &cobra.Command{
		Use:   "validate <descriptor-root>",
		Short: "Validate a descriptor tree without serving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			errs := ValidateTree(args[0], opts.Extensions, collectAll)
			if len(errs) == 0 {
				return out.Success("descriptor tree is valid")
			}

			details := make([]string, len(errs))
			for i, err := range errs {
				details[i] = err.Error()
			}
			out.Error(fmt.Sprintf("%d problem(s) found", len(errs)), details)
			return WrapExitError(ExitFailure, "validation failed", errs[0])
		},
	}

	cmd.Flags().BoolVar(&collectAll, "collect-all", false, "report all file-level errors instead of stopping at the first")
	return cmd
}

// ValidateTree checks a descriptor tree. Fail-fast mode is a plain
// compile; collect-all mode vets every discovered file individually and
// only attempts whole-graph resolution when all files decode.
func ValidateTree(root, extensionsDir string, collectAll bool) []error {
	if !collectAll {
		if _, err := compiler.Compile(compiler.Options{Root: root, ExtensionsDir: extensionsDir}); err != nil {
			return []error{err}
		}
		return nil
	}

	set, err := loader.Discover(root, extensionsDir)
	if err != nil {
		return []error{err}
	}

	var errs []error
	check := func(paths []string, kind loader.Kind) {
		for _, p := range paths {
			if err := loader.CheckFile(p, kind); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if set.Version != "" {
		check([]string{set.Version}, loader.KindVersion)
	}
	check(set.Categories, loader.KindCategories)
	check(set.Dictionary, loader.KindDictionary)
	check(set.Classes, loader.KindClass)
	check(set.Objects, loader.KindObject)

	// Graph-level errors (unknown extends, invalid category, missing
	// includes) only make sense once every file decodes.
	if len(errs) == 0 {
		if _, err := compiler.Compile(compiler.Options{Root: root, ExtensionsDir: extensionsDir}); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
