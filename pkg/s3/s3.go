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

//go:build awss3

// Package s3 is the storage backend for s3:// URIs. Object stores have no
// directories (prefix emulation), no rename (copy+delete emulation) and
// no append; writes accumulate in a per-URI buffer and are committed by
// FlushObject.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jeremyhahn/go-vfs/pkg/common"
	"github.com/jeremyhahn/go-vfs/pkg/config"
	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// listPageSize is the page size for ListObjectsV2 sweeps.
const listPageSize = 1000

// S3 is the object store backend.
type S3 struct {
	client         Client
	fileBufferSize uint64

	writes writeBuffers
}

// New wraps a configured client. Production code reaches this through
// Connect; tests hand in a mock Client.
func New(client Client, params *config.S3Params) *S3 {
	return &S3{
		client:         client,
		fileBufferSize: params.FileBufferSize,
		writes:         newWriteBuffers(),
	}
}

// dirKey returns the key with exactly one trailing separator, the prefix
// form a directory is emulated by.
func dirKey(u uri.URI) string {
	return strings.TrimSuffix(u.Path(), "/") + "/"
}

// CreateDir is a no-op: directories do not exist on object stores.
func (s *S3) CreateDir(ctx context.Context, u uri.URI) error {
	return ctx.Err()
}

// Touch creates a zero-length object if none exists; an existing object
// keeps its content.
func (s *S3) Touch(ctx context.Context, u uri.URI) error {
	exists, err := s.IsFile(ctx, u)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(u.Authority()),
		Key:    aws.String(u.Path()),
		Body:   strings.NewReader(""),
	})
	return err
}

// RemoveDir removes every object under the prefix.
func (s *S3) RemoveDir(ctx context.Context, u uri.URI) error {
	keys, err := s.listAll(ctx, u.Authority(), dirKey(u))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: no objects under %s", common.ErrNotFound, u)
	}
	return s.deleteKeys(ctx, u.Authority(), keys)
}

// RemoveFile removes the exact-keyed object.
func (s *S3) RemoveFile(ctx context.Context, u uri.URI) error {
	exists, err := s.IsFile(ctx, u)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", common.ErrNotFound, u)
	}
	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(u.Authority()),
		Key:    aws.String(u.Path()),
	})
	return err
}

// Ls lists the immediate children of the parent prefix: objects directly
// under it plus the common prefixes one separator deeper.
func (s *S3) Ls(ctx context.Context, parent uri.URI) ([]uri.URI, error) {
	bucket := parent.Authority()
	prefix := ""
	if parent.Path() != "" {
		prefix = dirKey(parent)
	}

	base := uri.New(uri.SchemeS3 + "://" + bucket)
	var uris []uri.URI
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			MaxKeys:           aws.Int32(listPageSize),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			uris = append(uris, base.Join(key))
		}
		for _, cp := range out.CommonPrefixes {
			key := strings.TrimSuffix(aws.ToString(cp.Prefix), "/")
			uris = append(uris, base.Join(key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return uris, nil
}

// FileSize returns the object's content length.
func (s *S3) FileSize(ctx context.Context, u uri.URI) (uint64, error) {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(u.Authority()),
		Key:    aws.String(u.Path()),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: %s", common.ErrNotFound, u)
		}
		return 0, err
	}
	return uint64(aws.ToInt64(out.ContentLength)), nil
}

// IsDir reports whether any object has this URI as a prefix followed by a
// path separator.
func (s *S3) IsDir(ctx context.Context, u uri.URI) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(u.Authority()),
		Prefix:  aws.String(dirKey(u)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return aws.ToInt32(out.KeyCount) > 0, nil
}

// IsFile reports whether an exact-keyed object exists.
func (s *S3) IsFile(ctx context.Context, u uri.URI) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(u.Authority()),
		Key:    aws.String(u.Path()),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Read fills buf from the object using a range GET starting at offset.
func (s *S3) Read(ctx context.Context, u uri.URI, offset uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	rng := fmt.Sprintf("bytes=%d-%d", offset, offset+uint64(len(buf))-1)
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(u.Authority()),
		Key:    aws.String(u.Path()),
		Range:  aws.String(rng),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, u)
		}
		return err
	}
	defer out.Body.Close()

	n, err := io.ReadFull(out.Body, buf)
	if err != nil {
		return fmt.Errorf("incomplete read of %s: read %d of %d bytes: %w", u, n, len(buf), err)
	}
	return nil
}

// Sync is a no-op; the commit point of the write path is FlushObject.
func (s *S3) Sync(ctx context.Context, u uri.URI) error {
	return ctx.Err()
}

// MovePath renames an object: S3 has no rename, so copy then delete.
func (s *S3) MovePath(ctx context.Context, oldURI, newURI uri.URI) error {
	source := oldURI.Authority() + "/" + oldURI.Path()
	_, err := s.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(newURI.Authority()),
		Key:        aws.String(newURI.Path()),
		CopySource: aws.String(source),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, oldURI)
		}
		return err
	}
	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(oldURI.Authority()),
		Key:    aws.String(oldURI.Path()),
	})
	return err
}

// MoveDir renames every object under the old prefix.
func (s *S3) MoveDir(ctx context.Context, oldURI, newURI uri.URI) error {
	oldPrefix := dirKey(oldURI)
	keys, err := s.listAll(ctx, oldURI.Authority(), oldPrefix)
	if err != nil {
		return err
	}
	newPrefix := dirKey(newURI)
	base := uri.SchemeS3 + "://"
	for _, key := range keys {
		oldObj := uri.New(base + oldURI.Authority() + "/" + key)
		newObj := uri.New(base + newURI.Authority() + "/" + newPrefix + strings.TrimPrefix(key, oldPrefix))
		if err := s.MovePath(ctx, oldObj, newObj); err != nil {
			return err
		}
	}
	return nil
}

// listAll sweeps every key under the prefix.
func (s *S3) listAll(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			MaxKeys:           aws.Int32(listPageSize),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}
