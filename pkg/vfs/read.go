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

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/pool"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// subRange is one contiguous byte interval of a larger read, expressed as
// inclusive offsets into the destination buffer.
type subRange struct {
	begin uint64
	end   uint64
}

// planRead decomposes a read of nbytes into equal-sized sub-ranges: each
// worker is responsible for at least minParallelSize bytes and the
// fan-out is capped at the pool size. The returned ranges are contiguous,
// pairwise disjoint, cover exactly [0, nbytes), and are never empty.
func planRead(nbytes, minParallelSize, poolSize uint64) []subRange {
	if nbytes == 0 {
		return nil
	}

	numOps := nbytes / minParallelSize
	if numOps < 1 {
		numOps = 1
	}
	if numOps > poolSize {
		numOps = poolSize
	}

	perOp := (nbytes + numOps - 1) / numOps
	ranges := make([]subRange, 0, numOps)
	for i := uint64(0); i < numOps; i++ {
		begin := i * perOp
		if begin > nbytes-1 {
			break
		}
		end := min((i+1)*perOp-1, nbytes-1)
		ranges = append(ranges, subRange{begin: begin, end: end})
	}
	return ranges
}

// Read fills buf from u starting at offset. When the request is large
// enough, the read is decomposed into sub-ranges executed concurrently on
// the worker pool; the caller blocks until every sub-task finishes. A
// zero-length buf succeeds without scheduling anything.
func (v *VFS) Read(ctx context.Context, u uri.URI, offset uint64, buf []byte) error {
	h, err := v.resolve(opRead, u)
	if err != nil {
		return err
	}
	v.metrics.CountOp(opRead, u.Scheme())
	v.metrics.AddReadBytes(uint64(len(buf)))

	if len(buf) == 0 {
		return nil
	}

	ranges := planRead(uint64(len(buf)), h.minParallelSize, h.pool.Size())
	if len(ranges) == 1 {
		return operr(opRead, u, h.fs.Read(ctx, u, offset, buf))
	}

	v.metrics.CountParallelizedRead()
	tasks := make([]*pool.Task, 0, len(ranges))
	for _, r := range ranges {
		subOffset := offset + r.begin
		subBuf := buf[r.begin : r.end+1]
		tasks = append(tasks, h.pool.Enqueue(func() error {
			return h.fs.Read(ctx, u, subOffset, subBuf)
		}))
	}

	// Every sub-task runs to completion even after a peer fails; the
	// first failure is folded into the aggregate error.
	if err := h.pool.WaitAll(tasks); err != nil {
		return common.NewError(common.ErrParallelRead, opRead, u.String(), err)
	}
	return nil
}
