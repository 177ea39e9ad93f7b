// Copyright © 2018 One Concern

// Package status exports errors produced by the layout package.
package status

import "github.com/oneconcern/gitlib/pkg/errors"

var (
	// ErrIO indicates a failure of the underlying file system
	ErrIO = errors.New("repository i/o error")

	// ErrAlreadyInitialized indicates that a valid repository layout already exists at the target path
	ErrAlreadyInitialized = errors.New("repository already initialized")

	// ErrInvalidLayout indicates that the metadata directory exists but is malformed
	ErrInvalidLayout = errors.New("invalid repository layout")

	// ErrNotRepository indicates that no repository layout exists at the target path
	ErrNotRepository = errors.New("not a repository")

	// ErrInvalidOption indicates an unsupported setting passed to Init
	ErrInvalidOption = errors.New("invalid repository option")
)
