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

package backend

import (
	"errors"
	"sort"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/config"
	"github.com/jeremyhahn/go-vfs/pkg/pool"
)

// ErrUnknownScheme is returned by New for a scheme no compiled-in backend
// registered.
var ErrUnknownScheme = errors.New("no backend registered for scheme")

// Creator builds a backend adapter from the VFS parameters and the shared
// thread pool. Connecting to remote services happens here; a Creator that
// cannot connect returns the error and the VFS stays uninitialized.
type Creator func(params *config.Params, tp *pool.ThreadPool) (Filesystem, error)

type registration struct {
	id      common.Filesystem
	creator Creator
}

var registry = make(map[string]registration)

// Register records a backend for a URI scheme. It is called from init
// functions in build-tag-gated files; which ones run decides the
// SupportedSet of this build.
func Register(scheme string, id common.Filesystem, creator Creator) {
	registry[scheme] = registration{id: id, creator: creator}
}

// Built reports whether this build carries a backend for the scheme.
func Built(scheme string) bool {
	_, ok := registry[scheme]
	return ok
}

// New creates the adapter registered for the scheme.
func New(scheme string, params *config.Params, tp *pool.ThreadPool) (Filesystem, error) {
	reg, ok := registry[scheme]
	if !ok {
		return nil, ErrUnknownScheme
	}
	return reg.creator(params, tp)
}

// Schemes returns the registered schemes in sorted order.
func Schemes() []string {
	schemes := make([]string, 0, len(registry))
	for s := range registry {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// Supported returns the backend identifiers compiled into this build.
func Supported() []common.Filesystem {
	ids := make([]common.Filesystem, 0, len(registry))
	for _, reg := range registry {
		ids = append(ids, reg.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
