// Copyright © 2018 One Concern

// Package status exports errors produced by the cafs package.
package status

import "github.com/oneconcern/gitlib/pkg/errors"

var (
	// ErrNotFound indicates that no object is stored under the requested key
	ErrNotFound = errors.New("object not found")

	// ErrCorruptObject indicates that a stored object does not match its key,
	// or that its framing is invalid
	ErrCorruptObject = errors.New("corrupt object")

	// ErrObjectTooBig indicates that the payload exceeds the configured maximum object size
	ErrObjectTooBig = errors.New("object too big to be read into memory")

	// ErrUnknownKind indicates an unsupported object kind
	ErrUnknownKind = errors.New("unknown object kind")

	// ErrUnknownScheme indicates an unsupported hashing scheme
	ErrUnknownScheme = errors.New("unknown hashing scheme")

	// ErrUnknownCompression indicates an unsupported compression setting
	ErrUnknownCompression = errors.New("unknown compression")
)
