// Copyright © 2018 One Concern

package cafs

import (
	"github.com/oneconcern/gitlib/pkg/storage"
	"go.uber.org/zap"
)

// Option to configure content addressable store components
type Option func(*defaultFs)

// Backend specifies the backend store
func Backend(store storage.Store) Option {
	return func(w *defaultFs) {
		w.backend = store
	}
}

// WithScheme sets the hashing scheme used to compute keys
func WithScheme(scheme Scheme) Option {
	return func(w *defaultFs) {
		w.scheme = scheme
	}
}

// WithCompression sets the compression applied to newly written objects
func WithCompression(c Compression) Option {
	return func(w *defaultFs) {
		w.compression = c
	}
}

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(w *defaultFs) {
		if l != nil {
			w.l = l
		}
	}
}

// VerifyHash enables hash verification on read objects
func VerifyHash(enabled bool) Option {
	return func(w *defaultFs) {
		w.withVerifyHash = enabled
	}
}

// VerifyWrites reads back and verifies every newly written object
func VerifyWrites(enabled bool) Option {
	return func(w *defaultFs) {
		w.withVerifyWrites = enabled
	}
}

// MaxObjectSize sets the largest payload accepted in memory, in bytes
func MaxObjectSize(size int64) Option {
	return func(w *defaultFs) {
		if size > 0 {
			w.maxObjectSize = size
		}
	}
}
