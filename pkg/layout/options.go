// Copyright © 2018 One Concern

package layout

import (
	"github.com/oneconcern/gitlib/pkg/cafs"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option to configure repository initialization and opening
type Option func(*options)

type options struct {
	fs            afero.Fs
	l             *zap.Logger
	tracer        opentracing.Tracer
	defaultBranch string
	objectFormat  cafs.Scheme
	compression   cafs.Compression
	description   string
	reinit        bool
}

func defaultOptions() *options {
	return &options{
		fs:            afero.NewOsFs(),
		l:             zap.NewNop(),
		defaultBranch: DefaultBranchName,
		objectFormat:  cafs.DefaultScheme,
		compression:   cafs.DefaultCompression,
		description:   defaultDescription,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// DefaultBranch sets the branch HEAD points to in a new repository
func DefaultBranch(name string) Option {
	return func(o *options) {
		o.defaultBranch = name
	}
}

// ObjectFormat sets the hashing scheme of the object store
func ObjectFormat(scheme cafs.Scheme) Option {
	return func(o *options) {
		o.objectFormat = scheme
	}
}

// Compression sets the compression of newly written objects
func Compression(c cafs.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// Description sets the content of the description file
func Description(text string) Option {
	return func(o *options) {
		o.description = text
	}
}

// Reinit makes Init succeed on an already initialized repository, leaving it untouched
func Reinit() Option {
	return func(o *options) {
		o.reinit = true
	}
}

// WithFs sets the file system paths are resolved against. Defaults to the OS file system.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// Logger sets a logger
func Logger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// Tracer instruments the object store backend with tracing spans
func Tracer(tr opentracing.Tracer) Option {
	return func(o *options) {
		o.tracer = tr
	}
}
