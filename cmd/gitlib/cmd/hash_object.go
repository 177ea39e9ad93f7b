package cmd

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/oneconcern/gitlib/pkg/cafs"
	"github.com/oneconcern/gitlib/pkg/errors"
	"github.com/oneconcern/gitlib/pkg/layout/status"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// appFs is where hash-object reads files from
var appFs = afero.NewOsFs()

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object [--stdin | file]",
	Short: "Compute the key of an object and optionally store it",
	Long: `Computes the key of the content of a file, or of the standard input, for the given object kind.

With --write, the object is stored in the repository. Storing an object already present is a no-op.
Without --write, the hashing scheme of the current repository is used when there is one.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		kind, err := cafs.ParseKind(gitlibFlags.object.kind)
		if err != nil {
			wrapFatalln("object type", err)
			return
		}

		var data []byte
		switch {
		case gitlibFlags.object.stdin && len(args) == 0:
			data, err = ioutil.ReadAll(cmd.InOrStdin())
		case !gitlibFlags.object.stdin && len(args) == 1:
			data, err = afero.ReadFile(appFs, args[0])
		default:
			wrapFatalln("either a file or --stdin must be specified", nil)
			return
		}
		if err != nil {
			wrapFatalln("reading object content", err)
			return
		}

		if !gitlibFlags.object.write {
			scheme := cafs.DefaultScheme
			repo, err := openRepo(ctx)
			switch {
			case err == nil:
				scheme = repo.Config().ObjectFormat
			case !errors.Is(err, status.ErrNotRepository):
				wrapFatalln("opening repository", err)
				return
			}

			key, err := cafs.Hash(scheme, kind, data)
			if err != nil {
				wrapFatalln("hashing object", err)
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), key.String())
			return
		}

		objects, err := openObjects(ctx)
		if err != nil {
			wrapFatalln("opening object store", err)
			return
		}
		res, err := objects.PutBytes(ctx, kind, data)
		if err != nil {
			wrapFatalln("storing object", err)
			return
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Key.String())
	},
}

func init() {
	addObjectTypeFlag(hashObjectCmd)
	addWriteFlag(hashObjectCmd)
	addStdinFlag(hashObjectCmd)

	rootCmd.AddCommand(hashObjectCmd)
}
