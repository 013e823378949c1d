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

package backend

import (
	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/config"
	"github.com/jeremyhahn/go-vfs/pkg/pool"
	"github.com/jeremyhahn/go-vfs/pkg/posix"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

func init() {
	Register(uri.SchemeFile, common.FilesystemPosix,
		func(params *config.Params, tp *pool.ThreadPool) (Filesystem, error) {
			return posix.New(tp), nil
		})
}
