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

//go:build windows

// Package win is the storage backend for file:// URIs on Windows hosts.
// Unlike the POSIX backend it keeps no adapter state.
package win

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

const (
	dirPermissions  = 0750
	filePermissions = 0640
)

var drivePathRe = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Win is the local filesystem backend for Windows.
type Win struct{}

// New creates the Windows backend.
func New() *Win {
	return &Win{}
}

// IsWinPath reports whether path is a bare host path such as `C:\data`
// or a relative path without a scheme.
func IsWinPath(path string) bool {
	return drivePathRe.MatchString(path) || !strings.Contains(path, "://")
}

// URIFromPath converts a host path to its file:/// URI form:
// `C:\a\b` becomes "file:///C:/a/b".
func URIFromPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uri.SchemeFile + ":///" + filepath.ToSlash(abs)
}

// CreateDir creates the named directory. Parents must exist.
func (w *Win) CreateDir(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Mkdir(u.ToPath(), dirPermissions)
	if os.IsExist(err) {
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, u.ToPath())
	}
	return err
}

// Touch creates an empty file if absent; an existing file keeps its
// content and gets a fresh modification time.
func (w *Win) Touch(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := u.ToPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}

// RemoveDir removes the directory recursively.
func (w *Win) RemoveDir(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(u.ToPath()); err != nil {
		return mapNotExist(err)
	}
	return os.RemoveAll(u.ToPath())
}

// RemoveFile removes the named file.
func (w *Win) RemoveFile(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapNotExist(os.Remove(u.ToPath()))
}

// Ls returns the immediate children of parent.
func (w *Win) Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error) {
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

// FileSize returns the byte size of the named file.
func (w *Win) FileSize(ctx context.Context, u uri.URI) (uint64, error) {
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
func (w *Win) IsDir(ctx context.Context, u uri.URI) (bool, error) {
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
func (w *Win) IsFile(ctx context.Context, u uri.URI) (bool, error) {
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

// Read fills buf from the file starting at offset.
func (w *Win) Read(ctx context.Context, u uri.URI, offset uint64, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(u.ToPath())
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
func (w *Win) Write(ctx context.Context, u uri.URI, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(u.ToPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermissions)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Sync flushes the named file.
func (w *Win) Sync(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(u.ToPath())
	if err != nil {
		return mapNotExist(err)
	}
	defer f.Close()
	return f.Sync()
}

// MovePath renames old to new.
func (w *Win) MovePath(ctx context.Context, oldURI, newURI uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapNotExist(os.Rename(oldURI.ToPath(), newURI.ToPath()))
}

// Lock is the advisory lock token for file:// URIs; flock uses
// LockFileEx on Windows.
type Lock struct {
	flock  *flock.Flock
	shared bool
}

// Shared implements common.FileLock.
func (l *Lock) Shared() bool { return l.shared }

// FilelockLock acquires an advisory lock on the named file.
func (w *Win) FilelockLock(u uri.URI, shared bool) (common.FileLock, error) {
	fl := flock.New(u.ToPath())

	var err error
	if shared {
		err = fl.RLock()
	} else {
		err = fl.Lock()
	}
	if err != nil {
		return nil, err
	}
	return &Lock{flock: fl, shared: shared}, nil
}

// FilelockUnlock releases a lock obtained from FilelockLock.
func (w *Win) FilelockUnlock(lock common.FileLock) error {
	l, ok := lock.(*Lock)
	if !ok {
		return fmt.Errorf("not a Windows file lock: %T", lock)
	}
	return l.flock.Unlock()
}

func mapNotExist(err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return err
}
