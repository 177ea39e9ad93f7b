package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
//
// Settings are read from gitlib.yaml or from GITLIB_* environment variables.
// Command line flags take precedence.
type CLIConfig struct {
	Repo          string `json:"repo" yaml:"repo" mapstructure:"repo"`                            // Default repository path
	LogLevel      string `json:"loglevel" yaml:"loglevel" mapstructure:"loglevel"`                // Logging level
	InitialBranch string `json:"initialbranch" yaml:"initialbranch" mapstructure:"initialbranch"` // Branch of new repositories
	ObjectFormat  string `json:"objectformat" yaml:"objectformat" mapstructure:"objectformat"`    // Hashing scheme of new repositories
	Compression   string `json:"compression" yaml:"compression" mapstructure:"compression"`       // Object compression of new repositories
}

var configKeys = []string{"repo", "loglevel", "initialbranch", "objectformat", "compression"}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) setGitlibParams(flags *flagsT) {
	if flags.root.repo == "" {
		flags.root.repo = c.Repo
	}
	if c.LogLevel != "" && !rootCmd.PersistentFlags().Changed("loglevel") {
		flags.root.logLevel = c.LogLevel
	}
	if flags.init.initialBranch == "" {
		flags.init.initialBranch = c.InitialBranch
	}
	if flags.init.objectFormat == "" {
		flags.init.objectFormat = c.ObjectFormat
	}
	if flags.init.compression == "" {
		flags.init.compression = c.Compression
	}
}
