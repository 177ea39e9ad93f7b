package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/gitlib/pkg/layout"
	"github.com/spf13/cobra"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Verify the repository layout and the integrity of stored objects",
	Long: `Validates the repository layout, then re-hashes every stored object.

Corrupt objects are reported on stdout, and the command exits with a non-zero status.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		repo, err := openRepo(ctx)
		if err != nil {
			wrapFatalln("opening repository", err)
			return
		}
		if err = layout.Validate(appFs, repo.MetaDir()); err != nil {
			wrapFatalln("invalid repository", err)
			return
		}

		objects, err := repo.Objects()
		if err != nil {
			wrapFatalln("opening object store", err)
			return
		}
		corrupt, err := objects.Verify(ctx)
		if err != nil {
			wrapFatalln("verifying objects", err)
			return
		}
		if len(corrupt) == 0 {
			return
		}

		sortKeys(corrupt)
		for _, key := range corrupt {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "corrupt object %s\n", key)
		}
		wrapFatalWithCodef(exitFailure, "%d corrupt object(s)", len(corrupt))
	},
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}
