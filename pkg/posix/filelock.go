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

package posix

import (
	"fmt"

	"github.com/gofrs/flock"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// Lock is the advisory lock token for file:// URIs. The OS lock is held
// until FilelockUnlock.
type Lock struct {
	flock  *flock.Flock
	shared bool
}

// Shared implements common.FileLock.
func (l *Lock) Shared() bool { return l.shared }

// FilelockLock acquires an advisory flock(2) lock on the named file. Each
// call opens its own handle, so locks are not reentrant: a second
// exclusive lock on the same file from this process blocks until the
// first is released.
func (p *Posix) FilelockLock(u uri.URI, shared bool) (common.FileLock, error) {
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
func (p *Posix) FilelockUnlock(lock common.FileLock) error {
	l, ok := lock.(*Lock)
	if !ok {
		return fmt.Errorf("not a POSIX file lock: %T", lock)
	}
	return l.flock.Unlock()
}
