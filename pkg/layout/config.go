// Copyright © 2018 One Concern

package layout

import (
	"bytes"
	"fmt"

	"github.com/go-ini/ini"
	"github.com/oneconcern/gitlib/pkg/cafs"
	"github.com/oneconcern/gitlib/pkg/layout/status"
)

// FormatVersion is the only supported repository format version
const FormatVersion = 0

const (
	sectionCore = "core"
	sectionInit = "init"

	keyFormatVersion = "repositoryformatversion"
	keyObjectFormat  = "objectformat"
	keyCompression   = "compression"
	keyBare          = "bare"
	keyDefaultBranch = "defaultbranch"
)

// Config holds the settings stored in the config file of a repository
type Config struct {
	FormatVersion int              `json:"formatVersion" yaml:"formatVersion"`
	ObjectFormat  cafs.Scheme      `json:"objectFormat" yaml:"objectFormat"`
	Compression   cafs.Compression `json:"compression" yaml:"compression"`
	Bare          bool             `json:"bare" yaml:"bare"`
	DefaultBranch string           `json:"defaultBranch" yaml:"defaultBranch"`
}

func newConfig(o *options) Config {
	return Config{
		FormatVersion: FormatVersion,
		ObjectFormat:  o.objectFormat,
		Compression:   o.compression,
		DefaultBranch: o.defaultBranch,
	}
}

// Marshal renders the config as an INI file
func (c Config) Marshal() ([]byte, error) {
	f := ini.Empty()

	core := f.Section(sectionCore)
	core.Key(keyFormatVersion).SetValue(fmt.Sprintf("%d", c.FormatVersion))
	core.Key(keyObjectFormat).SetValue(c.ObjectFormat.String())
	core.Key(keyCompression).SetValue(c.Compression.String())
	core.Key(keyBare).SetValue(fmt.Sprintf("%t", c.Bare))

	f.Section(sectionInit).Key(keyDefaultBranch).SetValue(c.DefaultBranch)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseConfig reads and checks a config file
func ParseConfig(data []byte) (Config, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Config{}, status.ErrInvalidLayout.Wrap(err)
	}

	core, err := f.GetSection(sectionCore)
	if err != nil {
		return Config{}, status.ErrInvalidLayout.WrapMessage("config has no [core] section")
	}

	var c Config
	if !core.HasKey(keyFormatVersion) {
		return Config{}, status.ErrInvalidLayout.WrapMessage("config has no " + keyFormatVersion)
	}
	if c.FormatVersion, err = core.Key(keyFormatVersion).Int(); err != nil {
		return Config{}, status.ErrInvalidLayout.Wrap(err)
	}
	if c.FormatVersion != FormatVersion {
		return Config{}, status.ErrInvalidLayout.WrapMessage(
			fmt.Sprintf("unsupported repository format version %d", c.FormatVersion),
		)
	}

	if c.ObjectFormat, err = cafs.ParseScheme(core.Key(keyObjectFormat).MustString(cafs.DefaultScheme.String())); err != nil {
		return Config{}, status.ErrInvalidLayout.Wrap(err)
	}
	if c.Compression, err = cafs.ParseCompression(core.Key(keyCompression).MustString(cafs.DefaultCompression.String())); err != nil {
		return Config{}, status.ErrInvalidLayout.Wrap(err)
	}
	c.Bare = core.Key(keyBare).MustBool(false)
	c.DefaultBranch = f.Section(sectionInit).Key(keyDefaultBranch).MustString(DefaultBranchName)

	return c, nil
}
