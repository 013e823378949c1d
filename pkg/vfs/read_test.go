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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/config"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

func TestPlanReadSeeds(t *testing.T) {
	tests := []struct {
		name            string
		nbytes          uint64
		minParallelSize uint64
		poolSize        uint64
		want            []subRange
	}{
		{
			name: "four way split", nbytes: 10000, minParallelSize: 1000, poolSize: 4,
			want: []subRange{{0, 2499}, {2500, 4999}, {5000, 7499}, {7500, 9999}},
		},
		{
			name: "below threshold is synchronous", nbytes: 500, minParallelSize: 1000, poolSize: 4,
			want: []subRange{{0, 499}},
		},
		{
			name: "two way split", nbytes: 2000, minParallelSize: 1000, poolSize: 4,
			want: []subRange{{0, 999}, {1000, 1999}},
		},
		{
			name: "capped by pool", nbytes: 100000, minParallelSize: 1000, poolSize: 2,
			want: []subRange{{0, 49999}, {50000, 99999}},
		},
		{
			name: "zero bytes", nbytes: 0, minParallelSize: 1000, poolSize: 4,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planRead(tt.nbytes, tt.minParallelSize, tt.poolSize)
			if len(got) != len(tt.want) {
				t.Fatalf("planRead(%d, %d, %d) = %v, want %v",
					tt.nbytes, tt.minParallelSize, tt.poolSize, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("sub-range %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPlanReadFanOutLaw(t *testing.T) {
	const m = uint64(1000)
	const p = uint64(4)
	for n := uint64(1); n <= 10*m; n++ {
		want := n / m
		if want < 1 {
			want = 1
		}
		if want > p {
			want = p
		}
		got := planRead(n, m, p)
		if uint64(len(got)) != want {
			t.Fatalf("fan-out for nbytes=%d: got %d, want %d", n, len(got), want)
		}
	}
}

func TestPlanReadInvariants(t *testing.T) {
	cases := []struct{ n, m, p uint64 }{
		{1, 1, 1}, {1, 1, 8}, {7, 2, 3}, {1000, 1, 8}, {999, 100, 16},
		{4096, 512, 4}, {10000, 1000, 4}, {65536, 4096, 7},
	}
	for _, c := range cases {
		ranges := planRead(c.n, c.m, c.p)
		var next uint64
		for i, r := range ranges {
			if r.begin != next {
				t.Fatalf("n=%d m=%d p=%d: sub-range %d begins at %d, want %d", c.n, c.m, c.p, i, r.begin, next)
			}
			if r.end < r.begin {
				t.Fatalf("n=%d m=%d p=%d: empty sub-range %d", c.n, c.m, c.p, i)
			}
			next = r.end + 1
		}
		if next != c.n {
			t.Fatalf("n=%d m=%d p=%d: ranges cover %d bytes, want %d", c.n, c.m, c.p, next, c.n)
		}
	}
}

func TestParallelReadMatchesSequential(t *testing.T) {
	v, fake := newTestVFS(t, &config.Params{MaxParallelOps: 4, MinParallelSize: 1000})
	ctx := context.Background()
	u := uri.New("file:///blob")

	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	fake.objects[u.String()] = data

	buf := make([]byte, 10000)
	if err := v.Read(ctx, u, 0, buf); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatal("parallel read differs from stored data")
	}
	if len(fake.readRanges) != 4 {
		t.Fatalf("read fanned out to %d sub-ranges, want 4", len(fake.readRanges))
	}

	// Offsets other than zero translate into the sub-range offsets.
	fake.readRanges = nil
	buf = make([]byte, 2000)
	if err := v.Read(ctx, u, 500, buf); err != nil {
		t.Fatalf("Read() at offset returned error: %v", err)
	}
	if !bytes.Equal(buf, data[500:2500]) {
		t.Fatal("offset read differs from stored data")
	}
}

func TestReadZeroBytes(t *testing.T) {
	v, fake := newTestVFS(t, testParams())
	u := uri.New("file:///blob")

	if err := v.Read(context.Background(), u, 0, nil); err != nil {
		t.Fatalf("Read(nbytes=0) returned error: %v", err)
	}
	if len(fake.readRanges) != 0 {
		t.Fatal("Read(nbytes=0) scheduled work")
	}
}

func TestSmallReadIsSynchronous(t *testing.T) {
	v, fake := newTestVFS(t, &config.Params{MaxParallelOps: 4, MinParallelSize: 1000})
	u := uri.New("file:///blob")
	fake.objects[u.String()] = make([]byte, 500)

	buf := make([]byte, 500)
	if err := v.Read(context.Background(), u, 0, buf); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if len(fake.readRanges) != 1 {
		t.Fatalf("small read used %d sub-ranges, want 1", len(fake.readRanges))
	}
}

func TestParallelReadAggregateError(t *testing.T) {
	v, fake := newTestVFS(t, &config.Params{MaxParallelOps: 4, MinParallelSize: 1000})
	u := uri.New("file:///blob")
	fake.objects[u.String()] = make([]byte, 10000)

	// Fail the second of the four sub-ranges.
	fake.failReadOffsets[2500] = true

	buf := make([]byte, 10000)
	err := v.Read(context.Background(), u, 0, buf)
	if !errors.Is(err, common.ErrParallelRead) {
		t.Fatalf("Read() = %v, want ParallelReadError", err)
	}

	// No early cancellation: every sub-task ran.
	if len(fake.readRanges) != 4 {
		t.Fatalf("only %d sub-tasks ran, want 4", len(fake.readRanges))
	}

	// The first underlying failure is preserved in the aggregate.
	var verr *common.VFSError
	if !errors.As(err, &verr) || verr.Cause == nil {
		t.Fatalf("aggregate error %v does not carry the sub-task failure", err)
	}
}

func TestReadPastEndFails(t *testing.T) {
	v, fake := newTestVFS(t, testParams())
	u := uri.New("file:///short")
	fake.objects[u.String()] = []byte("tiny")

	buf := make([]byte, 64)
	if err := v.Read(context.Background(), u, 0, buf); err == nil {
		t.Fatal("Read() past end of file did not fail")
	}
}
