package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var lsObjectsCmd = &cobra.Command{
	Use:   "ls-objects",
	Short: "List the keys of stored objects",
	Long:  `Lists the keys of all objects stored in the repository, one per line, in lexicographic order.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		objects, err := openObjects(ctx)
		if err != nil {
			wrapFatalln("opening object store", err)
			return
		}
		keys, err := objects.Keys(ctx)
		if err != nil {
			wrapFatalln("listing objects", err)
			return
		}
		sortKeys(keys)

		for _, key := range keys {
			if !gitlibFlags.object.long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), key.String())
				continue
			}
			info, err := objects.Stat(ctx, key)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %-6s %s\n", key, "?", "?")
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %-6s %d\n", key, info.Kind, info.Size)
		}
	},
}

func init() {
	addLongFlag(lsObjectsCmd)

	rootCmd.AddCommand(lsObjectsCmd)
}
