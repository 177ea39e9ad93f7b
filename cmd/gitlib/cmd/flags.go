// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/gitlib/pkg/cafs"
	"github.com/oneconcern/gitlib/pkg/dlogger"
	"github.com/oneconcern/gitlib/pkg/layout"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagsT struct {
	root struct {
		repo     string
		logLevel string
		trace    bool
	}
	init struct {
		initialBranch string
		objectFormat  string
		compression   string
		description   string
		reinit        bool
	}
	object struct {
		kind  string
		write bool
		stdin bool
		long  bool
	}
	catFile struct {
		kind   bool
		size   bool
		exists bool
		pretty bool
	}
	info struct {
		output string
	}
}

var gitlibFlags = flagsT{}

func addRepoFlag(flags *pflag.FlagSet) string {
	repo := "repo"
	flags.StringVarP(&gitlibFlags.root.repo, repo, "C", "", "Path to the repository (defaults to the current directory)")
	return repo
}

func addLogLevelFlag(flags *pflag.FlagSet) string {
	logLevel := "loglevel"
	flags.StringVar(&gitlibFlags.root.logLevel, logLevel, dlogger.LogLevelNone, "The logging level: debug, info or none")
	return logLevel
}

func addTraceFlag(flags *pflag.FlagSet) string {
	trace := "trace"
	flags.BoolVar(&gitlibFlags.root.trace, trace, false, "Trace every object store backend call")
	return trace
}

func addInitialBranchFlag(cmd *cobra.Command) string {
	initialBranch := "initial-branch"
	cmd.Flags().StringVarP(&gitlibFlags.init.initialBranch, initialBranch, "b", "", "The name of the branch HEAD refers to (defaults to "+layout.DefaultBranchName+")")
	return initialBranch
}

func addObjectFormatFlag(cmd *cobra.Command) string {
	objectFormat := "object-format"
	cmd.Flags().StringVar(&gitlibFlags.init.objectFormat, objectFormat, "", "The hashing scheme for objects: blake2b or blake3 (defaults to "+cafs.DefaultScheme.String()+")")
	return objectFormat
}

func addCompressionFlag(cmd *cobra.Command) string {
	compression := "compression"
	cmd.Flags().StringVar(&gitlibFlags.init.compression, compression, "", "The compression of stored objects: zstd or none (defaults to "+cafs.DefaultCompression.String()+")")
	return compression
}

func addDescriptionFlag(cmd *cobra.Command) string {
	description := "description"
	cmd.Flags().StringVar(&gitlibFlags.init.description, description, "", "A one-line description of the repository")
	return description
}

func addReinitFlag(cmd *cobra.Command) string {
	reinit := "reinit"
	cmd.Flags().BoolVar(&gitlibFlags.init.reinit, reinit, false, "Succeed without change when the repository is already initialized")
	return reinit
}

func addObjectTypeFlag(cmd *cobra.Command) string {
	objectType := "type"
	cmd.Flags().StringVarP(&gitlibFlags.object.kind, objectType, "t", cafs.KindBlob.String(), "The kind of object: blob, tree, commit or tag")
	return objectType
}

func addWriteFlag(cmd *cobra.Command) string {
	write := "write"
	cmd.Flags().BoolVarP(&gitlibFlags.object.write, write, "w", false, "Store the object into the repository")
	return write
}

func addStdinFlag(cmd *cobra.Command) string {
	stdin := "stdin"
	cmd.Flags().BoolVar(&gitlibFlags.object.stdin, stdin, false, "Read the object from the standard input")
	return stdin
}

func addLongFlag(cmd *cobra.Command) string {
	long := "long"
	cmd.Flags().BoolVarP(&gitlibFlags.object.long, long, "l", false, "Show the kind and size of each object")
	return long
}

func addCatFileFlags(cmd *cobra.Command) []string {
	flags := []struct {
		target    *bool
		name      string
		shorthand string
		usage     string
	}{
		{target: &gitlibFlags.catFile.kind, name: "type", shorthand: "t", usage: "Show the object kind"},
		{target: &gitlibFlags.catFile.size, name: "size", shorthand: "s", usage: "Show the object size"},
		{target: &gitlibFlags.catFile.exists, name: "exists", shorthand: "e", usage: "Exit with zero status if the object exists"},
		{target: &gitlibFlags.catFile.pretty, name: "print", shorthand: "p", usage: "Print the object content"},
	}
	names := make([]string, 0, len(flags))
	for _, flag := range flags {
		cmd.Flags().BoolVarP(flag.target, flag.name, flag.shorthand, false, flag.usage)
		names = append(names, flag.name)
	}
	return names
}

func addOutputFlag(cmd *cobra.Command) string {
	output := "output"
	cmd.Flags().StringVarP(&gitlibFlags.info.output, output, "o", "yaml", "The output format: yaml or json")
	return output
}
