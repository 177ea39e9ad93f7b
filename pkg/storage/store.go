// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"io/ioutil"
	"time"
)

// PutOpt tells a Store what to do when the key to write already exists
type PutOpt bool

const (
	// OverWrite replaces any existing object under the same key
	OverWrite PutOpt = false

	// NoOverWrite fails with status.ErrExists if the key is already present
	NoOverWrite PutOpt = true
)

// Attributes of a stored object
type Attributes struct {
	Updated time.Time
	Size    int64
}

// Store implementations know how to write entries to a K/V model.
//
// Typically this is something file system-like.
// Implementations of this interface are assumed to be fairly simple.
//
// Keys are slash-separated relative paths.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	GetAttr(context.Context, string) (Attributes, error)
	Put(context.Context, string, io.Reader, PutOpt) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	Clear(context.Context) error
}

// ReadAll fetches the full content of an object
func ReadAll(ctx context.Context, store Store, key string) ([]byte, error) {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return ioutil.ReadAll(reader)
}
