package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/gitlib/pkg/cafs/status"
	"github.com/oneconcern/gitlib/pkg/errors"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-t | -s | -e | -p) <object>",
	Short: "Show the kind, size or content of a stored object",
	Long: `Shows information about an object of the repository, designated by its key or an unambiguous prefix of it.

With -e, nothing is printed: the command exits with a zero status when the object exists and is valid.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		objects, err := openObjects(ctx)
		if err != nil {
			wrapFatalln("opening object store", err)
			return
		}

		key, err := resolveKey(ctx, objects, args[0])
		if err != nil {
			if gitlibFlags.catFile.exists {
				osExit(exitFailure)
				return
			}
			wrapFatalln("resolving object", err)
			return
		}

		switch {
		case gitlibFlags.catFile.exists:
			if _, err = objects.Get(ctx, key); err != nil {
				osExit(exitFailure)
			}
		case gitlibFlags.catFile.kind, gitlibFlags.catFile.size:
			info, err := objects.Stat(ctx, key)
			if err != nil {
				fatalObject(key.String(), err)
				return
			}
			if gitlibFlags.catFile.kind {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), info.Kind)
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info.Size)
		default:
			obj, err := objects.Get(ctx, key)
			if err != nil {
				fatalObject(key.String(), err)
				return
			}
			_, _ = cmd.OutOrStdout().Write(obj.Data)
		}
	},
}

func fatalObject(name string, err error) {
	switch {
	case errors.Is(err, status.ErrNotFound):
		wrapFatalWithCodef(exitFailure, "object %s not found", name)
	case errors.Is(err, status.ErrCorruptObject):
		wrapFatalWithCodef(exitFailure, "object %s is corrupt", name)
	default:
		wrapFatalln("reading object "+name, err)
	}
}

func init() {
	flags := addCatFileFlags(catFileCmd)
	catFileCmd.MarkFlagsMutuallyExclusive(flags...)
	catFileCmd.MarkFlagsOneRequired(flags...)

	rootCmd.AddCommand(catFileCmd)
}
