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

// Package vfs unifies access to heterogeneous storage backends behind a
// single URI-addressed interface. Operations are routed by URI scheme to
// the backend adapter compiled into this build; large reads are
// parallelized over a shared bounded worker pool.
package vfs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-vfs/pkg/adapters"
	"github.com/jeremyhahn/go-vfs/pkg/backend"
	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/config"
	"github.com/jeremyhahn/go-vfs/pkg/metrics"
	"github.com/jeremyhahn/go-vfs/pkg/pool"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// VFS is the virtual filesystem façade. A VFS is created uninitialized;
// it records which backends are compiled in, becomes usable after Init,
// and stops accepting operations after Terminate.
type VFS struct {
	mu          sync.RWMutex
	initialized bool

	params      config.Params
	pool        *pool.ThreadPool
	filesystems map[string]backend.Filesystem
	supported   map[common.Filesystem]bool

	logger  adapters.Logger
	metrics *metrics.Metrics
}

// Option configures a VFS at construction.
type Option func(*VFS)

// WithLogger routes VFS logs into the given logger.
func WithLogger(logger adapters.Logger) Option {
	return func(v *VFS) { v.logger = logger }
}

// WithMetrics enables the operation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *VFS) { v.metrics = m }
}

// New creates an uninitialized VFS and records the backends compiled into
// this build.
func New(opts ...Option) *VFS {
	v := &VFS{
		supported: make(map[common.Filesystem]bool),
		logger:    adapters.NewNoOpLogger(),
	}
	for _, id := range backend.Supported() {
		v.supported[id] = true
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Init makes the VFS usable: it validates the parameters, sizes the
// worker pool, and connects every compiled-in backend. On failure the
// first failing error is returned and the VFS stays uninitialized.
func (v *VFS) Init(params *config.Params) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return errors.New("vfs: already initialized")
	}

	p := config.Params{}
	if params != nil {
		p = *params
	}
	config.ApplyDefaults(&p)
	if err := config.Validate(&p); err != nil {
		return err
	}

	tp := pool.New(p.MaxParallelOps)
	filesystems := make(map[string]backend.Filesystem)
	for _, scheme := range backend.Schemes() {
		fs, err := backend.New(scheme, &p, tp)
		if err != nil {
			tp.Shutdown()
			return fmt.Errorf("vfs: init %s backend: %w", scheme, err)
		}
		filesystems[scheme] = fs
	}

	v.params = p
	v.pool = tp
	v.filesystems = filesystems
	v.initialized = true

	v.logger.Info(context.Background(), "vfs initialized",
		adapters.Field{Key: "max_parallel_ops", Value: p.MaxParallelOps},
		adapters.Field{Key: "min_parallel_size", Value: p.MinParallelSize},
		adapters.Field{Key: "backends", Value: backend.Schemes()})
	return nil
}

// Terminate releases the worker pool and drops the adapter state. Remote
// backends are not disconnected; their resources go away with the adapter
// objects, which avoids teardown interaction bugs. Operations after
// Terminate fail with NotInitialized.
func (v *VFS) Terminate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return
	}
	v.pool.Shutdown()
	v.pool = nil
	v.filesystems = nil
	v.initialized = false

	v.logger.Info(context.Background(), "vfs terminated")
}

// Config returns a copy of the parameters the VFS was initialized with.
func (v *VFS) Config() config.Params {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.params
}

// SupportsFS reports whether the backend is compiled into this build.
func (v *VFS) SupportsFS(fs common.Filesystem) bool {
	return v.supported[fs]
}

// handle is the per-operation dispatch snapshot: the routed adapter plus
// the pool and parameters captured under one lock.
type handle struct {
	fs              backend.Filesystem
	pool            *pool.ThreadPool
	minParallelSize uint64
}

// resolve classifies the URI scheme and routes to the adapter. It owns
// the NotInitialized, UnsupportedScheme and FeatureNotBuilt error paths;
// no side effect happens on any of them.
func (v *VFS) resolve(op string, u uri.URI) (*handle, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.initialized {
		return nil, common.NewError(common.ErrNotInitialized, op, u.String(), nil)
	}

	scheme := u.Scheme()
	switch scheme {
	case uri.SchemeFile, uri.SchemeHDFS, uri.SchemeS3:
	default:
		return nil, common.NewError(common.ErrUnsupportedScheme, op, u.String(), nil)
	}

	fs, ok := v.filesystems[scheme]
	if !ok {
		return nil, common.NewError(common.ErrFeatureNotBuilt, op, u.String(),
			fmt.Errorf("no %s support in this build", backendName(scheme)))
	}
	return &handle{fs: fs, pool: v.pool, minParallelSize: v.params.MinParallelSize}, nil
}

// bucketFS routes a bucket operation. Bucket operations are defined only
// for the s3 scheme; any other scheme is unsupported regardless of build.
func (v *VFS) bucketFS(op string, u uri.URI) (backend.BucketFilesystem, error) {
	if !u.IsS3() {
		return nil, common.NewError(common.ErrUnsupportedScheme, op, u.String(), nil)
	}
	h, err := v.resolve(op, u)
	if err != nil {
		return nil, err
	}
	bfs, ok := h.fs.(backend.BucketFilesystem)
	if !ok {
		return nil, common.NewError(common.ErrFeatureNotBuilt, op, u.String(),
			fmt.Errorf("no %s support in this build", backendName(uri.SchemeS3)))
	}
	return bfs, nil
}

func backendName(scheme string) string {
	switch scheme {
	case uri.SchemeHDFS:
		return common.FilesystemHDFS.String()
	case uri.SchemeS3:
		return common.FilesystemS3.String()
	default:
		return strings.ToUpper(scheme)
	}
}

// operr uniformizes an adapter error into the VFS error shape, keeping
// NotFound and AlreadyExists kinds and folding everything else into
// BackendError.
func operr(op string, u uri.URI, err error) error {
	if err == nil {
		return nil
	}
	var verr *common.VFSError
	if errors.As(err, &verr) {
		return err
	}
	kind := common.ErrBackend
	switch {
	case errors.Is(err, common.ErrNotFound):
		kind = common.ErrNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		kind = common.ErrAlreadyExists
	}
	return common.NewError(kind, op, u.String(), err)
}
