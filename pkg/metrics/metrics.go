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

// Package metrics exposes the VFS operation counters. A nil *Metrics is
// valid and counts nothing, so the VFS works without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the VFS counters.
type Metrics struct {
	ops               *prometheus.CounterVec
	readBytes         prometheus.Counter
	writeBytes        prometheus.Counter
	parallelizedReads prometheus.Counter
}

// New creates and registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vfs",
			Name:      "ops_total",
			Help:      "VFS operations by name and URI scheme.",
		}, []string{"op", "scheme"}),
		readBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vfs",
			Name:      "read_bytes_total",
			Help:      "Total bytes requested through VFS reads.",
		}),
		writeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vfs",
			Name:      "write_bytes_total",
			Help:      "Total bytes submitted through VFS writes.",
		}),
		parallelizedReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vfs",
			Name:      "read_parallelized_total",
			Help:      "Reads that fanned out to more than one sub-range.",
		}),
	}
	reg.MustRegister(m.ops, m.readBytes, m.writeBytes, m.parallelizedReads)
	return m
}

// CountOp increments the counter for one operation.
func (m *Metrics) CountOp(op, scheme string) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, scheme).Inc()
}

// AddReadBytes adds to the read byte counter.
func (m *Metrics) AddReadBytes(n uint64) {
	if m == nil {
		return
	}
	m.readBytes.Add(float64(n))
}

// AddWriteBytes adds to the write byte counter.
func (m *Metrics) AddWriteBytes(n uint64) {
	if m == nil {
		return
	}
	m.writeBytes.Add(float64(n))
}

// CountParallelizedRead counts one fanned-out read.
func (m *Metrics) CountParallelizedRead() {
	if m == nil {
		return
	}
	m.parallelizedReads.Inc()
}
