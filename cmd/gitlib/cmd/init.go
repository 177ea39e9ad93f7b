// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oneconcern/gitlib/pkg/cafs"
	"github.com/oneconcern/gitlib/pkg/errors"
	"github.com/oneconcern/gitlib/pkg/layout"
	"github.com/oneconcern/gitlib/pkg/layout/status"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create an empty repository",
	Long: `Creates the repository layout in the given directory, or in the current one.

The directory is created if needed. Running init on an existing repository fails with exit code 3,
unless --reinit is specified.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pth := repoPath()
		if len(args) > 0 {
			pth = args[0]
		}
		abs, err := filepath.Abs(pth)
		if err != nil {
			wrapFatalln("resolving repository path", err)
			return
		}

		repo, err := layout.Init(context.Background(), abs, append(repoOpts(), initOpts()...)...)
		if err != nil {
			if errors.Is(err, status.ErrAlreadyInitialized) {
				wrapFatalWithCodef(exitAlreadyInitialized, "repository already initialized in %s", abs)
				return
			}
			wrapFatalln("initializing repository", err)
			return
		}

		if gitlibFlags.init.reinit {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Repository in %s\n", repo.MetaDir())
			return
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty repository in %s\n", repo.MetaDir())
	},
}

func initOpts() []layout.Option {
	var opts []layout.Option
	if gitlibFlags.init.initialBranch != "" {
		opts = append(opts, layout.DefaultBranch(gitlibFlags.init.initialBranch))
	}
	if gitlibFlags.init.objectFormat != "" {
		opts = append(opts, layout.ObjectFormat(cafs.Scheme(gitlibFlags.init.objectFormat)))
	}
	if gitlibFlags.init.compression != "" {
		opts = append(opts, layout.Compression(cafs.Compression(gitlibFlags.init.compression)))
	}
	if gitlibFlags.init.description != "" {
		opts = append(opts, layout.Description(gitlibFlags.init.description))
	}
	if gitlibFlags.init.reinit {
		opts = append(opts, layout.Reinit())
	}
	return opts
}

func init() {
	addInitialBranchFlag(initCmd)
	addObjectFormatFlag(initCmd)
	addCompressionFlag(initCmd)
	addDescriptionFlag(initCmd)
	addReinitFlag(initCmd)

	rootCmd.AddCommand(initCmd)
}
