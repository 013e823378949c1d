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

// Package config defines the VFS configuration parameters and their
// loading and validation.
package config

import (
	"github.com/spf13/viper"
)

// Params is the VFS configuration snapshot. A VFS is initialized with one
// Params value and returns a copy of it from Config().
type Params struct {
	// MaxParallelOps is the worker pool size serving all VFS fan-out.
	MaxParallelOps uint64 `mapstructure:"max_parallel_ops" validate:"gte=1"`

	// MinParallelSize is the minimum number of bytes each parallel
	// sub-range read is responsible for.
	MinParallelSize uint64 `mapstructure:"min_parallel_size" validate:"gte=1"`

	// HDFS holds the HDFS backend parameters. Ignored when HDFS is not
	// compiled in.
	HDFS HDFSParams `mapstructure:"hdfs"`

	// S3 holds the S3 backend parameters. Ignored when S3 is not
	// compiled in.
	S3 S3Params `mapstructure:"s3"`
}

// HDFSParams configures the HDFS client. The client is connected with the
// name node address and user only; KerbTicketCachePath is not passed to
// it.
type HDFSParams struct {
	// NameNodeURI is the HDFS name node address, e.g. "localhost:9000".
	NameNodeURI string `mapstructure:"name_node_uri"`

	// Username is the user the client connects as.
	Username string `mapstructure:"username"`

	// KerbTicketCachePath points at a kerberos ticket cache, if any.
	KerbTicketCachePath string `mapstructure:"kerb_ticket_cache_path"`
}

// S3Params configures the S3 client.
type S3Params struct {
	// Region is the S3 region.
	Region string `mapstructure:"region"`

	// Scheme is the connection scheme, "http" or "https".
	Scheme string `mapstructure:"scheme" validate:"oneof=http https"`

	// EndpointOverride points the client at a non-AWS endpoint, e.g. a
	// minio or localstack instance. Empty means the AWS default.
	EndpointOverride string `mapstructure:"endpoint_override"`

	// UseVirtualAddressing selects virtual-hosted-style bucket
	// addressing; false selects path-style.
	UseVirtualAddressing bool `mapstructure:"use_virtual_addressing"`

	// FileBufferSize is the per-object write buffer size in bytes; a
	// full buffer triggers a multipart part upload.
	FileBufferSize uint64 `mapstructure:"file_buffer_size" validate:"gte=1"`

	// ConnectTimeoutMs bounds connection establishment.
	ConnectTimeoutMs uint64 `mapstructure:"connect_timeout_ms"`

	// RequestTimeoutMs bounds individual requests.
	RequestTimeoutMs uint64 `mapstructure:"request_timeout_ms"`
}

// Defaults.
const (
	DefaultMaxParallelOps   = 8
	DefaultMinParallelSize  = 10 * 1024 * 1024
	DefaultS3Scheme         = "https"
	DefaultS3Region         = "us-east-1"
	DefaultFileBufferSize   = 5 * 1024 * 1024
	DefaultConnectTimeoutMs = 3000
	DefaultRequestTimeoutMs = 3000
)

// DefaultParams returns a Params populated with the defaults.
func DefaultParams() *Params {
	p := &Params{}
	ApplyDefaults(p)
	return p
}

// ApplyDefaults fills any unspecified field with its default. Explicit
// values are preserved.
func ApplyDefaults(p *Params) {
	if p.MaxParallelOps == 0 {
		p.MaxParallelOps = DefaultMaxParallelOps
	}
	if p.MinParallelSize == 0 {
		p.MinParallelSize = DefaultMinParallelSize
	}
	if p.S3.Scheme == "" {
		p.S3.Scheme = DefaultS3Scheme
	}
	if p.S3.Region == "" {
		p.S3.Region = DefaultS3Region
	}
	if p.S3.FileBufferSize == 0 {
		p.S3.FileBufferSize = DefaultFileBufferSize
	}
	if p.S3.ConnectTimeoutMs == 0 {
		p.S3.ConnectTimeoutMs = DefaultConnectTimeoutMs
	}
	if p.S3.RequestTimeoutMs == 0 {
		p.S3.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
}

// FromViper unmarshals Params from the "vfs" key of the given viper
// instance, applies defaults and validates.
func FromViper(v *viper.Viper) (*Params, error) {
	p := &Params{}
	if err := v.UnmarshalKey("vfs", p); err != nil {
		return nil, err
	}
	ApplyDefaults(p)
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}
