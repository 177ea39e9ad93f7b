// Copyright © 2018 One Concern

// Package storage provides interface to handle backend storage objects.
//
// This package supports the following backends:
//   - local file system (plain, or with atomic writes staged then renamed into place)
//
// Any Store may be decorated with Instrument to get tracing spans and debug logs.
package storage
