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

package vfs

import (
	"github.com/jeremyhahn/go-vfs/pkg/uri"
	"github.com/jeremyhahn/go-vfs/pkg/win"
)

// AbsPath normalizes a path to URI form. Bare host paths such as C:\data
// become file:///C:/data; file:// URIs are re-normalized; URIs of any
// other scheme are returned unchanged. Pure: no I/O and no
// initialization required.
func (v *VFS) AbsPath(path string) string {
	u := uri.New(path)
	switch {
	case u.IsFile():
		return win.URIFromPath(u.ToPath())
	case u.Scheme() == "" && win.IsWinPath(path):
		return win.URIFromPath(path)
	default:
		return path
	}
}
