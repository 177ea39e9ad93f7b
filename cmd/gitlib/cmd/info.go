package cmd

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/gitlib/pkg/layout"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// RepoInfo describes a repository
type RepoInfo struct {
	Path        string        `json:"path" yaml:"path"`
	MetaDir     string        `json:"metaDir" yaml:"metaDir"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Head        string        `json:"head" yaml:"head"`
	Config      layout.Config `json:"config" yaml:"config"`
	Objects     int           `json:"objects" yaml:"objects"`
	Size        int64         `json:"size" yaml:"size"`
	StoredSize  int64         `json:"storedSize" yaml:"storedSize"`
	HumanSize   string        `json:"humanSize" yaml:"humanSize"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the repository",
	Long: `Prints the repository descriptor: location, HEAD, settings and object statistics.

Sizes are the total payload size of objects, and the space they use once encoded.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if gitlibFlags.info.output != "yaml" && gitlibFlags.info.output != "json" {
			wrapFatalln(fmt.Sprintf("unsupported output format %q", gitlibFlags.info.output), nil)
			return
		}

		repo, err := openRepo(ctx)
		if err != nil {
			wrapFatalln("opening repository", err)
			return
		}
		info, err := describeRepo(ctx, repo)
		if err != nil {
			wrapFatalln("describing repository", err)
			return
		}

		var out []byte
		if gitlibFlags.info.output == "json" {
			out, err = jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(info, "", "  ")
			out = append(out, '\n')
		} else {
			out, err = yaml.Marshal(info)
		}
		if err != nil {
			wrapFatalln("rendering repository info", err)
			return
		}
		_, _ = cmd.OutOrStdout().Write(out)
	},
}

func describeRepo(ctx context.Context, repo *layout.Repository) (RepoInfo, error) {
	info := RepoInfo{
		Path:    repo.Path(),
		MetaDir: repo.MetaDir(),
		Config:  repo.Config(),
	}

	head, err := repo.Head()
	if err != nil {
		return RepoInfo{}, err
	}
	info.Head = head.String()

	if info.Description, err = repo.Description(); err != nil {
		return RepoInfo{}, err
	}

	objects, err := repo.Objects()
	if err != nil {
		return RepoInfo{}, err
	}
	keys, err := objects.Keys(ctx)
	if err != nil {
		return RepoInfo{}, err
	}
	info.Objects = len(keys)
	for _, key := range keys {
		stat, err := objects.Stat(ctx, key)
		if err != nil {
			return RepoInfo{}, fmt.Errorf("object %v: %w", key, err)
		}
		info.Size += stat.Size
		info.StoredSize += stat.StoredSize
	}
	info.HumanSize = fmt.Sprintf("%s (%s stored)",
		units.HumanSize(float64(info.Size)),
		units.HumanSize(float64(info.StoredSize)),
	)
	return info, nil
}

func init() {
	addOutputFlag(infoCmd)

	rootCmd.AddCommand(infoCmd)
}
