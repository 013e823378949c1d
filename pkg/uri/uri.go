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

// Package uri provides the opaque address value the VFS dispatches on.
//
// A URI has the grammar `scheme "://" [authority] path`. The scheme is
// decided once at construction and never re-derived; the path is kept
// byte-for-byte as given (no percent-encoding), which is why this package
// does not use net/url.
package uri

import (
	"path"
	"strings"
)

// Recognized schemes.
const (
	SchemeFile = "file"
	SchemeHDFS = "hdfs"
	SchemeS3   = "s3"
)

// URI is an immutable address value. The zero value is an empty URI with
// no scheme.
type URI struct {
	raw    string
	scheme string
}

// New constructs a URI from its string form. The scheme is everything
// before the first "://"; a string without a scheme separator has an
// empty scheme.
func New(s string) URI {
	u := URI{raw: s}
	if idx := strings.Index(s, "://"); idx > 0 {
		u.scheme = s[:idx]
	}
	return u
}

// Scheme returns the URI scheme, or "" for a bare path.
func (u URI) Scheme() string { return u.scheme }

// IsFile reports whether the URI uses the file scheme.
func (u URI) IsFile() bool { return u.scheme == SchemeFile }

// IsHDFS reports whether the URI uses the hdfs scheme.
func (u URI) IsHDFS() bool { return u.scheme == SchemeHDFS }

// IsS3 reports whether the URI uses the s3 scheme.
func (u URI) IsS3() bool { return u.scheme == SchemeS3 }

// String returns the full URI string.
func (u URI) String() string { return u.raw }

// ToPath returns the scheme-stripped, host-native path. For file URIs the
// "file://" prefix is removed; for other schemes the full string is
// returned, since remote backends address by URI.
func (u URI) ToPath() string {
	if u.IsFile() {
		return hostPath(strings.TrimPrefix(u.raw, SchemeFile+"://"))
	}
	return u.raw
}

// Authority returns the component between "://" and the next "/": the S3
// bucket or the HDFS name node. Empty for file URIs.
func (u URI) Authority() string {
	rest, ok := strings.CutPrefix(u.raw, u.scheme+"://")
	if !ok || u.scheme == SchemeFile {
		return ""
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// Path returns the path component following the authority, without a
// leading separator. For s3://bucket/a/b it is "a/b"; for a bucket-only
// URI it is "". File URIs have no authority, so their path keeps its
// leading separator: for file:///tmp/x it is "/tmp/x".
func (u URI) Path() string {
	rest, ok := strings.CutPrefix(u.raw, u.scheme+"://")
	if !ok {
		return u.raw
	}
	if u.scheme == SchemeFile {
		return rest
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[idx+1:]
	}
	return ""
}

// Join returns the URI addressing the named child of this URI.
func (u URI) Join(name string) URI {
	return New(strings.TrimSuffix(u.raw, "/") + "/" + name)
}

// Last returns the final path segment.
func (u URI) Last() string {
	return path.Base(strings.TrimSuffix(u.raw, "/"))
}
