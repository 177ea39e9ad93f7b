// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/oneconcern/gitlib/pkg/dlogger"
	"github.com/oneconcern/gitlib/pkg/layout"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitlib",
	Short: "gitlib manages content-addressable repositories",
	Long: `gitlib manages the storage foundation of a git-like version control system.

It initializes repository layouts and stores immutable objects (blobs, trees, commits and tags)
under the hash of their content.
`,
	SilenceUsage: true,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(exitFailure)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addRepoFlag(rootCmd.PersistentFlags())
	addLogLevelFlag(rootCmd.PersistentFlags())
	addTraceFlag(rootCmd.PersistentFlags())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("gitlib")
	if os.Getenv("GITLIB_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("GITLIB_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.gitlib")
		viper.SetConfigName("gitlib")
	}

	viper.AutomaticEnv() // read in environment variables that match
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("config", err)
		return
	}
	config.setGitlibParams(&gitlibFlags)
}

func logger() *zap.Logger {
	l, err := dlogger.GetLogger(gitlibFlags.root.logLevel)
	if err != nil {
		wrapFatalln("failed to set log level", err)
		return zap.NewNop()
	}
	return l
}

func repoPath() string {
	if gitlibFlags.root.repo == "" {
		return "."
	}
	return gitlibFlags.root.repo
}

func repoOpts() []layout.Option {
	opts := []layout.Option{layout.WithFs(appFs), layout.Logger(logger())}
	if gitlibFlags.root.trace {
		opts = append(opts, layout.Tracer(opentracing.GlobalTracer()))
	}
	return opts
}

func openRepo(ctx context.Context) (*layout.Repository, error) {
	return layout.Open(ctx, repoPath(), repoOpts()...)
}
