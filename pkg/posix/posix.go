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

//go:build !windows

// Package posix is the storage backend for file:// URIs on POSIX hosts.
package posix

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/pool"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

const (
	dirPermissions  = 0750
	filePermissions = 0640
)

// Posix is the local filesystem backend. It holds the VFS thread pool by
// reference; the VFS owns the pool and outlives the adapter. None of the
// adapter's operations submit work to the pool.
type Posix struct {
	pool *pool.ThreadPool
}

// New creates the POSIX backend.
func New(tp *pool.ThreadPool) *Posix {
	return &Posix{pool: tp}
}

// AbsPath returns the file:// URI string for a host path, resolving it
// against the working directory when relative.
func AbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return uri.SchemeFile + "://" + path
	}
	return uri.SchemeFile + "://" + abs
}

// CreateDir creates the named directory. Parents must exist.
func (p *Posix) CreateDir(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Mkdir(u.ToPath(), dirPermissions)
	if os.IsExist(err) {
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, u.ToPath())
	}
	return err
}

// Touch creates an empty file if absent; if present, its content is left
// unchanged and the modification time is updated.
func (p *Posix) Touch(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := u.ToPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, filePermissions) // #nosec G304 -- caller-addressed path
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}

// RemoveDir removes the directory and everything beneath it.
func (p *Posix) RemoveDir(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(u.ToPath()); err != nil {
		return mapNotExist(err)
	}
	return os.RemoveAll(u.ToPath())
}

// RemoveFile removes the named file.
func (p *Posix) RemoveFile(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapNotExist(os.Remove(u.ToPath()))
}

// Ls returns the immediate children of parent.
func (p *Posix) Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(parent.ToPath())
	if err != nil {
		return nil, mapNotExist(err)
	}
	uris := make([]uri.URI, 0, len(entries))
	for _, entry := range entries {
		uris = append(uris, parent.Join(entry.Name()))
	}
	return uris, nil
}

// FileSize returns the byte size of the named file. Directories are an
// error.
func (p *Posix) FileSize(ctx context.Context, u uri.URI) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(u.ToPath())
	if err != nil {
		return 0, mapNotExist(err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("cannot get file size of directory %s", u.ToPath())
	}
	return uint64(info.Size()), nil
}

// IsDir reports whether u names an existing directory.
func (p *Posix) IsDir(ctx context.Context, u uri.URI) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(u.ToPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// IsFile reports whether u names an existing regular file.
func (p *Posix) IsFile(ctx context.Context, u uri.URI) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(u.ToPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Read fills buf from the file starting at offset. A short read is an
// error.
func (p *Posix) Read(ctx context.Context, u uri.URI, offset uint64, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(u.ToPath()) // #nosec G304 -- caller-addressed path
	if err != nil {
		return mapNotExist(err)
	}
	defer f.Close()

	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("incomplete read of %s: read %d of %d bytes", u.ToPath(), n, len(buf))
	}
	return nil
}

// Write appends buf to the file, creating it if absent.
func (p *Posix) Write(ctx context.Context, u uri.URI, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(u.ToPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermissions) // #nosec G304 -- caller-addressed path
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Sync fsyncs the named file or directory.
func (p *Posix) Sync(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(u.ToPath()) // #nosec G304 -- caller-addressed path
	if err != nil {
		return mapNotExist(err)
	}
	defer f.Close()
	return f.Sync()
}

// MovePath renames old to new.
func (p *Posix) MovePath(ctx context.Context, oldURI, newURI uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapNotExist(os.Rename(oldURI.ToPath(), newURI.ToPath()))
}

func mapNotExist(err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return err
}
