// Copyright © 2018 One Concern

/*
Package gitlib provides the storage foundation of a git-like version control tool.

Repositories are laid out by package layout. Objects are stored under the hash of their content
by package cafs, on top of the key/value stores of package storage.

The gitlib command exposes these operations: see cmd/gitlib.
*/
package gitlib
