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

package vfs

import (
	"context"
	"sort"

	"github.com/jeremyhahn/go-vfs/pkg/backend"
	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// Operation names carried in error messages and metrics labels.
const (
	opCreateDir     = "create_dir"
	opTouch         = "touch"
	opCreateBucket  = "create_bucket"
	opRemoveBucket  = "remove_bucket"
	opEmptyBucket   = "empty_bucket"
	opIsEmptyBucket = "is_empty_bucket"
	opIsBucket      = "is_bucket"
	opRemoveDir     = "remove_dir"
	opRemoveFile    = "remove_file"
	opIsDir         = "is_dir"
	opIsFile        = "is_file"
	opFileSize      = "file_size"
	opLs            = "ls"
	opMoveFile      = "move_file"
	opMoveDir       = "move_dir"
	opRead          = "read"
	opWrite         = "write"
	opSync          = "sync"
	opOpenFile      = "open_file"
	opCloseFile     = "close_file"
	opFilelock      = "filelock_lock"
	opFileunlock    = "filelock_unlock"
)

// CreateDir creates the directory named by u. Creating an existing
// directory succeeds; on s3 the operation is a no-op because object
// stores have no directories.
func (v *VFS) CreateDir(ctx context.Context, u uri.URI) error {
	h, err := v.resolve(opCreateDir, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opCreateDir, u.Scheme())

	if u.IsS3() {
		return nil
	}
	isDir, err := h.fs.IsDir(ctx, u)
	if err != nil {
		return operr(opCreateDir, u, err)
	}
	if isDir {
		return nil
	}
	return operr(opCreateDir, u, h.fs.CreateDir(ctx, u))
}

// Touch creates an empty file or object if absent; an existing one keeps
// its content.
func (v *VFS) Touch(ctx context.Context, u uri.URI) error {
	h, err := v.resolve(opTouch, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opTouch, u.Scheme())
	return operr(opTouch, u, h.fs.Touch(ctx, u))
}

// CreateBucket creates the bucket named by u. Defined only for s3 URIs.
func (v *VFS) CreateBucket(ctx context.Context, u uri.URI) error {
	bfs, err := v.bucketFS(opCreateBucket, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opCreateBucket, u.Scheme())
	return operr(opCreateBucket, u, bfs.CreateBucket(ctx, u))
}

// RemoveBucket deletes the bucket named by u. Defined only for s3 URIs.
func (v *VFS) RemoveBucket(ctx context.Context, u uri.URI) error {
	bfs, err := v.bucketFS(opRemoveBucket, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opRemoveBucket, u.Scheme())
	return operr(opRemoveBucket, u, bfs.RemoveBucket(ctx, u))
}

// EmptyBucket deletes every object in the bucket. Defined only for s3
// URIs.
func (v *VFS) EmptyBucket(ctx context.Context, u uri.URI) error {
	bfs, err := v.bucketFS(opEmptyBucket, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opEmptyBucket, u.Scheme())
	return operr(opEmptyBucket, u, bfs.EmptyBucket(ctx, u))
}

// IsEmptyBucket reports whether the bucket holds no objects. Defined only
// for s3 URIs.
func (v *VFS) IsEmptyBucket(ctx context.Context, u uri.URI) (bool, error) {
	bfs, err := v.bucketFS(opIsEmptyBucket, u)
	if err != nil {
		return false, err
	}
	v.metrics.CountOp(opIsEmptyBucket, u.Scheme())
	empty, err := bfs.IsEmptyBucket(ctx, u)
	return empty, operr(opIsEmptyBucket, u, err)
}

// IsBucket reports whether u names an existing bucket. Defined only for
// s3 URIs.
func (v *VFS) IsBucket(ctx context.Context, u uri.URI) (bool, error) {
	bfs, err := v.bucketFS(opIsBucket, u)
	if err != nil {
		return false, err
	}
	v.metrics.CountOp(opIsBucket, u.Scheme())
	ok, err := bfs.IsBucket(ctx, u)
	return ok, operr(opIsBucket, u, err)
}

// RemoveDir destroys the named directory recursively. Removing a missing
// directory returns NotFound.
func (v *VFS) RemoveDir(ctx context.Context, u uri.URI) error {
	h, err := v.resolve(opRemoveDir, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opRemoveDir, u.Scheme())
	return operr(opRemoveDir, u, h.fs.RemoveDir(ctx, u))
}

// RemoveFile destroys the named file or object. Removing a missing file
// returns NotFound.
func (v *VFS) RemoveFile(ctx context.Context, u uri.URI) error {
	h, err := v.resolve(opRemoveFile, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opRemoveFile, u.Scheme())
	return operr(opRemoveFile, u, h.fs.RemoveFile(ctx, u))
}

// IsDir reports whether u names a directory. On s3 it is true when any
// object has u as a prefix followed by a path separator.
func (v *VFS) IsDir(ctx context.Context, u uri.URI) (bool, error) {
	h, err := v.resolve(opIsDir, u)
	if err != nil {
		return false, err
	}
	v.metrics.CountOp(opIsDir, u.Scheme())
	isDir, err := h.fs.IsDir(ctx, u)
	return isDir, operr(opIsDir, u, err)
}

// IsFile reports whether u names an existing file or exact-keyed object.
func (v *VFS) IsFile(ctx context.Context, u uri.URI) (bool, error) {
	h, err := v.resolve(opIsFile, u)
	if err != nil {
		return false, err
	}
	v.metrics.CountOp(opIsFile, u.Scheme())
	isFile, err := h.fs.IsFile(ctx, u)
	return isFile, operr(opIsFile, u, err)
}

// FileSize returns the byte size of the named file. A missing entity or a
// directory is an error.
func (v *VFS) FileSize(ctx context.Context, u uri.URI) (uint64, error) {
	h, err := v.resolve(opFileSize, u)
	if err != nil {
		return 0, err
	}
	v.metrics.CountOp(opFileSize, u.Scheme())
	size, err := h.fs.FileSize(ctx, u)
	return size, operr(opFileSize, u, err)
}

// Ls returns the immediate children of parent, sorted byte-wise
// ascending by full URI string, without duplicates.
func (v *VFS) Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error) {
	h, err := v.resolve(opLs, parent)
	if err != nil {
		return nil, err
	}
	v.metrics.CountOp(opLs, parent.Scheme())

	uris, err := h.fs.Ls(ctx, parent)
	if err != nil {
		return nil, operr(opLs, parent, err)
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i].String() < uris[j].String() })
	deduped := make([]uri.URI, 0, len(uris))
	for _, u := range uris {
		if n := len(deduped); n > 0 && u.String() == deduped[n-1].String() {
			continue
		}
		deduped = append(deduped, u)
	}
	return deduped, nil
}

// MoveFile renames oldURI to newURI within one scheme. An existing
// newURI file is removed first. Cross-scheme moves are rejected.
func (v *VFS) MoveFile(ctx context.Context, oldURI, newURI uri.URI) error {
	h, err := v.resolve(opMoveFile, oldURI)
	if err != nil {
		return err
	}
	if oldURI.Scheme() != newURI.Scheme() {
		return common.NewError(common.ErrCrossScheme, opMoveFile,
			oldURI.String()+", "+newURI.String(), nil)
	}
	v.metrics.CountOp(opMoveFile, oldURI.Scheme())

	isFile, err := h.fs.IsFile(ctx, newURI)
	if err != nil {
		return operr(opMoveFile, newURI, err)
	}
	if isFile {
		if err := h.fs.RemoveFile(ctx, newURI); err != nil {
			return operr(opMoveFile, newURI, err)
		}
	}
	return operr(opMoveFile, oldURI, h.fs.MovePath(ctx, oldURI, newURI))
}

// MoveDir renames the directory oldURI to newURI within one scheme. For
// s3 every object under the prefix is renamed; for local and hdfs it is
// a single atomic rename.
func (v *VFS) MoveDir(ctx context.Context, oldURI, newURI uri.URI) error {
	h, err := v.resolve(opMoveDir, oldURI)
	if err != nil {
		return err
	}
	if oldURI.Scheme() != newURI.Scheme() {
		return common.NewError(common.ErrCrossScheme, opMoveDir,
			oldURI.String()+", "+newURI.String(), nil)
	}
	v.metrics.CountOp(opMoveDir, oldURI.Scheme())

	if bfs, ok := h.fs.(backend.BucketFilesystem); ok && oldURI.IsS3() {
		return operr(opMoveDir, oldURI, bfs.MoveDir(ctx, oldURI, newURI))
	}
	return operr(opMoveDir, oldURI, h.fs.MovePath(ctx, oldURI, newURI))
}

// Write appends buf into the adapter's write path for u. On object
// stores the bytes accumulate in a per-object buffer committed by
// CloseFile.
func (v *VFS) Write(ctx context.Context, u uri.URI, buf []byte) error {
	h, err := v.resolve(opWrite, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opWrite, u.Scheme())
	v.metrics.AddWriteBytes(uint64(len(buf)))
	return operr(opWrite, u, h.fs.Write(ctx, u, buf))
}

// Sync flushes pending data for u. On object stores it is a no-op; the
// final flush happens on CloseFile.
func (v *VFS) Sync(ctx context.Context, u uri.URI) error {
	h, err := v.resolve(opSync, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opSync, u.Scheme())
	if u.IsS3() {
		return nil
	}
	return operr(opSync, u, h.fs.Sync(ctx, u))
}

// OpenFile validates the mode against the file's state: READ requires
// the file to exist, WRITE truncates by removing an existing file, and
// APPEND is rejected on s3.
func (v *VFS) OpenFile(ctx context.Context, u uri.URI, mode common.VFSMode) error {
	h, err := v.resolve(opOpenFile, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opOpenFile, u.Scheme())

	isFile, err := h.fs.IsFile(ctx, u)
	if err != nil {
		return operr(opOpenFile, u, err)
	}

	switch mode {
	case common.VFSRead:
		if !isFile {
			return common.NewError(common.ErrNotFound, opOpenFile, u.String(), nil)
		}
	case common.VFSWrite:
		if isFile {
			if err := h.fs.RemoveFile(ctx, u); err != nil {
				return operr(opOpenFile, u, err)
			}
		}
	case common.VFSAppend:
		if u.IsS3() {
			return common.NewError(common.ErrAppendUnsupported, opOpenFile, u.String(), nil)
		}
	}
	return nil
}

// CloseFile flushes the file: fsync on local schemes, sync on hdfs, and
// the multipart commit on s3. Writes to the same URI after CloseFile and
// before a new OpenFile are undefined.
func (v *VFS) CloseFile(ctx context.Context, u uri.URI) error {
	h, err := v.resolve(opCloseFile, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opCloseFile, u.Scheme())

	if bfs, ok := h.fs.(backend.BucketFilesystem); ok && u.IsS3() {
		return operr(opCloseFile, u, bfs.FlushObject(ctx, u))
	}
	return operr(opCloseFile, u, h.fs.Sync(ctx, u))
}

// FilelockLock acquires an advisory lock on u; shared selects a read
// lock. On hdfs and s3 locking is a no-op by contract and the returned
// token is an inert sentinel.
func (v *VFS) FilelockLock(u uri.URI, shared bool) (common.FileLock, error) {
	h, err := v.resolve(opFilelock, u)
	if err != nil {
		return nil, err
	}
	v.metrics.CountOp(opFilelock, u.Scheme())

	if lfs, ok := h.fs.(backend.LockFilesystem); ok {
		lock, err := lfs.FilelockLock(u, shared)
		return lock, operr(opFilelock, u, err)
	}
	return common.RemoteLock{SharedLock: shared}, nil
}

// FilelockUnlock releases a lock returned by FilelockLock. Remote tokens
// unlock trivially.
func (v *VFS) FilelockUnlock(u uri.URI, lock common.FileLock) error {
	h, err := v.resolve(opFileunlock, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opFileunlock, u.Scheme())

	if _, remote := lock.(common.RemoteLock); remote {
		return nil
	}
	if lfs, ok := h.fs.(backend.LockFilesystem); ok {
		return operr(opFileunlock, u, lfs.FilelockUnlock(lock))
	}
	return nil
}
