// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vfs.
//
// go-vfs is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package common

import (
	"errors"
	"fmt"
)

var (
	// Dispatch errors

	// ErrUnsupportedScheme is returned when a URI scheme is not recognized.
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")

	// ErrFeatureNotBuilt is returned when the scheme is recognized but this
	// build omits the corresponding backend.
	ErrFeatureNotBuilt = errors.New("built without backend support")

	// ErrNotInitialized is returned when an operation is attempted before
	// Init or after Terminate.
	ErrNotInitialized = errors.New("VFS not initialized")

	// ErrCrossScheme is returned when a move names URIs with differing schemes.
	ErrCrossScheme = errors.New("moving across filesystems is not supported")

	// Entity errors

	// ErrNotFound is returned when the target entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a backend surfaces an existence conflict.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAppendUnsupported is returned when a file is opened in append mode
	// on a backend that cannot append.
	ErrAppendUnsupported = errors.New("append mode not supported")

	// Operation errors

	// ErrBackend wraps any adapter-level failure (I/O, network, auth).
	ErrBackend = errors.New("backend error")

	// ErrParallelRead is the aggregate error when any sub-range of a
	// parallel read fails.
	ErrParallelRead = errors.New("parallel read error")
)

// VFSError is the status value every VFS operation returns on failure. It
// carries the error kind (one of the sentinels above), the operation name,
// the URI the operation addressed, and the underlying cause when there is
// one. Callers match kinds with errors.Is.
type VFSError struct {
	Kind  error
	Op    string
	URI   string
	Cause error
}

// NewError builds a VFSError. The cause may be nil.
func NewError(kind error, op, uri string, cause error) *VFSError {
	return &VFSError{Kind: kind, Op: op, URI: uri, Cause: cause}
}

func (e *VFSError) Error() string {
	if e.Cause != nil {
		if errors.Is(e.Cause, e.Kind) {
			return fmt.Sprintf("vfs: %s %s: %v", e.Op, e.URI, e.Cause)
		}
		return fmt.Sprintf("vfs: %s %s: %v: %v", e.Op, e.URI, e.Kind, e.Cause)
	}
	return fmt.Sprintf("vfs: %s %s: %v", e.Op, e.URI, e.Kind)
}

// Unwrap exposes both the kind and the cause so that errors.Is matches
// either.
func (e *VFSError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}
