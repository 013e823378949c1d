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

//go:build hdfs

// Package hdfs is the storage backend for hdfs:// URIs. Directory
// create/remove and rename are atomic name-node metadata operations;
// reads are range-seekable; writes are sequential appends.
package hdfs

import (
	"context"
	"fmt"
	"io"
	"os"

	gohdfs "github.com/colinmarc/hdfs/v2"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/config"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

const dirPermissions = 0755

// FileReader is the read handle the adapter needs: random-access reads
// plus close.
type FileReader interface {
	io.ReaderAt
	io.Closer
}

// FileWriter is the sequential write handle the adapter needs.
type FileWriter interface {
	io.WriteCloser
}

// Client is the subset of the HDFS API the adapter uses. Tests
// substitute a mock; production wraps *gohdfs.Client.
type Client interface {
	MkdirAll(dirname string, perm os.FileMode) error
	CreateEmptyFile(name string) error
	Remove(name string) error
	RemoveAll(name string) error
	ReadDir(dirname string) ([]os.FileInfo, error)
	Stat(name string) (os.FileInfo, error)
	Open(name string) (FileReader, error)
	Append(name string) (FileWriter, error)
	Create(name string) (FileWriter, error)
	Rename(oldpath, newpath string) error
}

// gohdfsClient adapts *gohdfs.Client to the Client interface: the
// concrete reader and writer types narrow to the handle interfaces.
type gohdfsClient struct {
	*gohdfs.Client
}

func (c gohdfsClient) Open(name string) (FileReader, error) {
	return c.Client.Open(name)
}

func (c gohdfsClient) Append(name string) (FileWriter, error) {
	return c.Client.Append(name)
}

func (c gohdfsClient) Create(name string) (FileWriter, error) {
	return c.Client.Create(name)
}

// Hdfs is the HDFS backend. It holds the single name-node connection for
// the lifetime of the VFS; the connection is intentionally not closed at
// shutdown.
type Hdfs struct {
	client Client
}

// New wraps a connected client. Production code reaches this through
// Connect; tests hand in a mock Client.
func New(client Client) *Hdfs {
	return &Hdfs{client: client}
}

// Connect dials the name node from the configured parameters.
func Connect(params *config.HDFSParams) (*Hdfs, error) {
	if params.NameNodeURI == "" {
		return nil, fmt.Errorf("hdfs: name node URI not set")
	}
	opts := gohdfs.ClientOptions{
		Addresses: []string{params.NameNodeURI},
		User:      params.Username,
	}
	client, err := gohdfs.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("hdfs: connect to %s: %w", params.NameNodeURI, err)
	}
	return New(gohdfsClient{Client: client}), nil
}

// path strips the scheme and authority: hdfs://nn:9000/a/b yields /a/b.
func path(u uri.URI) string {
	return "/" + u.Path()
}

// CreateDir creates the named directory, including missing parents.
func (h *Hdfs) CreateDir(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.client.MkdirAll(path(u), dirPermissions)
}

// Touch creates an empty file if absent; an existing file is untouched.
func (h *Hdfs) Touch(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := h.client.CreateEmptyFile(path(u))
	if os.IsExist(err) {
		return nil
	}
	return err
}

// RemoveDir removes the directory and its children.
func (h *Hdfs) RemoveDir(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := h.client.Stat(path(u)); err != nil {
		return mapNotExist(err)
	}
	return h.client.RemoveAll(path(u))
}

// RemoveFile removes the named file.
func (h *Hdfs) RemoveFile(ctx context.Context, u uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapNotExist(h.client.Remove(path(u)))
}

// Ls returns the immediate children of parent.
func (h *Hdfs) Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := h.client.ReadDir(path(parent))
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
func (h *Hdfs) FileSize(ctx context.Context, u uri.URI) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := h.client.Stat(path(u))
	if err != nil {
		return 0, mapNotExist(err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("cannot get file size of directory %s", u)
	}
	return uint64(info.Size()), nil
}

// IsDir reports whether u names an existing directory.
func (h *Hdfs) IsDir(ctx context.Context, u uri.URI) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := h.client.Stat(path(u))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// IsFile reports whether u names an existing file.
func (h *Hdfs) IsFile(ctx context.Context, u uri.URI) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := h.client.Stat(path(u))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Read fills buf from the file starting at offset.
func (h *Hdfs) Read(ctx context.Context, u uri.URI, offset uint64, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := h.client.Open(path(u))
	if err != nil {
		return mapNotExist(err)
	}
	defer f.Close()

	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("incomplete read of %s: read %d of %d bytes", u, n, len(buf))
	}
	return nil
}

// Write appends buf to the file, creating it if absent. HDFS writes are
// append-only.
func (h *Hdfs) Write(ctx context.Context, u uri.URI, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w, err := h.client.Append(path(u))
	if os.IsNotExist(err) {
		w, err = h.client.Create(path(u))
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Sync is satisfied by the write path: every Write commits its block
// pipeline on Close, so there is nothing left to flush.
func (h *Hdfs) Sync(ctx context.Context, u uri.URI) error {
	return ctx.Err()
}

// MovePath renames old to new; an atomic name-node operation.
func (h *Hdfs) MovePath(ctx context.Context, oldURI, newURI uri.URI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapNotExist(h.client.Rename(path(oldURI), path(newURI)))
}

func mapNotExist(err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return err
}
