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

package vfs

import (
	"github.com/jeremyhahn/go-vfs/pkg/posix"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// AbsPath normalizes a path to URI form. Local-filesystem paths are
// absolutized and prefixed with file://; URIs of any other scheme are
// returned unchanged. Pure: no I/O and no initialization required.
func (v *VFS) AbsPath(path string) string {
	u := uri.New(path)
	switch {
	case u.Scheme() == "":
		return posix.AbsPath(path)
	case u.IsFile():
		return posix.AbsPath(u.ToPath())
	default:
		return path
	}
}
