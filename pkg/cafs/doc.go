// Copyright © 2018 One Concern

// Package cafs provides a content-addressable object store.
//
// Every object is a byte payload tagged with a Kind (blob, tree, commit or tag).
// The object key is the hash of its framed form:
//
//	"<kind> <decimal length>\x00<payload>"
//
// so the same content always maps to the same key, and writing it twice is a no-op.
//
// Objects are stored on a backend storage.Store under a path derived from the hex key:
// the first two hex characters name a directory, the remaining ones the file.
// This bounds the fan-out of any single directory to 256 entries.
//
// The stored bytes are the framed form, optionally compressed as a single zstd frame.
// Reads detect the zstd magic number, so stores written with or without compression
// remain readable under either setting.
//
// Two hashing schemes are supported: BLAKE2b-512 (the default) and BLAKE3 with a 512-bit output.
// Both produce 64 bytes keys.
package cafs
