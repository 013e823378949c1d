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

// Package backend defines the adapter contract every storage backend
// implements, and the registry that records which backends this build
// carries.
package backend

import (
	"context"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// Filesystem is the capability set a backend adapter implements. An
// adapter that cannot perform an operation returns a well-defined error
// rather than panicking; the dispatcher never calls an adapter for a
// scheme it does not own.
type Filesystem interface {
	// CreateDir creates the named directory. The local backends require
	// the parents to exist; HDFS creates missing parents.
	CreateDir(ctx context.Context, u uri.URI) error

	// Touch creates an empty file if absent. If the file exists its
	// content is left unchanged.
	Touch(ctx context.Context, u uri.URI) error

	// RemoveDir removes the named directory recursively.
	RemoveDir(ctx context.Context, u uri.URI) error

	// RemoveFile removes the named file or object.
	RemoveFile(ctx context.Context, u uri.URI) error

	// Ls returns the immediate children of parent, in no particular
	// order; the dispatcher sorts.
	Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error)

	// FileSize returns the byte size of the named file or object.
	FileSize(ctx context.Context, u uri.URI) (uint64, error)

	// IsDir reports whether u names a directory (or, on object stores,
	// a non-empty key prefix).
	IsDir(ctx context.Context, u uri.URI) (bool, error)

	// IsFile reports whether u names an existing file or exact-keyed
	// object.
	IsFile(ctx context.Context, u uri.URI) (bool, error)

	// Read fills buf from the file starting at offset. A short read is
	// an error.
	Read(ctx context.Context, u uri.URI, offset uint64, buf []byte) error

	// Write appends buf into the adapter's write path for u.
	Write(ctx context.Context, u uri.URI, buf []byte) error

	// Sync flushes pending data for u.
	Sync(ctx context.Context, u uri.URI) error

	// MovePath renames old to new within the same scheme.
	MovePath(ctx context.Context, oldURI, newURI uri.URI) error
}

// BucketFilesystem is the extended capability set of object-store
// backends: bucket management, prefix-wide moves, and the deferred write
// commit.
type BucketFilesystem interface {
	Filesystem

	// CreateBucket creates the bucket named by u.
	CreateBucket(ctx context.Context, u uri.URI) error

	// RemoveBucket deletes the bucket named by u.
	RemoveBucket(ctx context.Context, u uri.URI) error

	// EmptyBucket deletes every object in the bucket.
	EmptyBucket(ctx context.Context, u uri.URI) error

	// IsEmptyBucket reports whether the bucket holds no objects.
	IsEmptyBucket(ctx context.Context, u uri.URI) (bool, error)

	// IsBucket reports whether u names an existing bucket.
	IsBucket(ctx context.Context, u uri.URI) (bool, error)

	// MoveDir renames every object under the old prefix to the new one.
	MoveDir(ctx context.Context, oldURI, newURI uri.URI) error

	// FlushObject commits the buffered writes for u.
	FlushObject(ctx context.Context, u uri.URI) error
}

// LockFilesystem is the capability set of backends with real advisory
// locks.
type LockFilesystem interface {
	Filesystem

	// FilelockLock acquires an advisory lock on u; shared selects a
	// read lock, otherwise exclusive.
	FilelockLock(u uri.URI, shared bool) (common.FileLock, error)

	// FilelockUnlock releases a lock obtained from FilelockLock.
	FilelockUnlock(lock common.FileLock) error
}
