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

// Package common holds the types shared by the VFS façade and its backend
// adapters: the error taxonomy, backend identifiers, open modes, and the
// file lock token.
package common

// Filesystem identifies a storage backend that may be compiled into a build.
type Filesystem int

const (
	// FilesystemPosix is the local POSIX filesystem backend.
	FilesystemPosix Filesystem = iota

	// FilesystemWindows is the local Windows filesystem backend.
	FilesystemWindows

	// FilesystemHDFS is the Hadoop distributed filesystem backend.
	FilesystemHDFS

	// FilesystemS3 is the S3-compatible object store backend.
	FilesystemS3
)

// String returns the backend name used in logs and error messages.
func (f Filesystem) String() string {
	switch f {
	case FilesystemPosix:
		return "POSIX"
	case FilesystemWindows:
		return "WIN"
	case FilesystemHDFS:
		return "HDFS"
	case FilesystemS3:
		return "S3"
	default:
		return "UNKNOWN"
	}
}

// VFSMode is the mode a file is opened with.
type VFSMode int

const (
	// VFSRead opens for reading; the file must exist.
	VFSRead VFSMode = iota

	// VFSWrite opens for writing, truncating any existing file.
	VFSWrite

	// VFSAppend opens for appending. Not supported on object stores.
	VFSAppend
)

// String returns the mode name.
func (m VFSMode) String() string {
	switch m {
	case VFSRead:
		return "READ"
	case VFSWrite:
		return "WRITE"
	case VFSAppend:
		return "APPEND"
	default:
		return "UNKNOWN"
	}
}

// FileLock is an opaque lock token returned by FilelockLock. On local
// schemes it wraps a real advisory OS lock; on remote schemes it is an
// inert RemoteLock sentinel.
type FileLock interface {
	// Shared reports whether the lock was acquired shared (read) rather
	// than exclusive.
	Shared() bool
}

// RemoteLock is the inert token returned for HDFS and S3 URIs, where
// locking is a no-op by contract. It records only whether a shared lock
// was requested.
type RemoteLock struct {
	SharedLock bool
}

// Shared implements FileLock.
func (l RemoteLock) Shared() bool { return l.SharedLock }
