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

package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// CreateBucket creates the bucket named by u.
func (s *S3) CreateBucket(ctx context.Context, u uri.URI) error {
	_, err := s.client.CreateBucket(ctx, &awss3.CreateBucketInput{
		Bucket: aws.String(u.Authority()),
	})
	return err
}

// RemoveBucket deletes the bucket. The bucket must be empty; EmptyBucket
// first if needed.
func (s *S3) RemoveBucket(ctx context.Context, u uri.URI) error {
	_, err := s.client.DeleteBucket(ctx, &awss3.DeleteBucketInput{
		Bucket: aws.String(u.Authority()),
	})
	return err
}

// EmptyBucket deletes every object in the bucket.
func (s *S3) EmptyBucket(ctx context.Context, u uri.URI) error {
	keys, err := s.listAll(ctx, u.Authority(), "")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.deleteKeys(ctx, u.Authority(), keys)
}

// IsEmptyBucket reports whether the bucket holds no objects.
func (s *S3) IsEmptyBucket(ctx context.Context, u uri.URI) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(u.Authority()),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return aws.ToInt32(out.KeyCount) == 0, nil
}

// IsBucket reports whether u names an existing bucket.
func (s *S3) IsBucket(ctx context.Context, u uri.URI) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(u.Authority()),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// deleteKeys batch-deletes keys in DeleteObjects-sized chunks.
func (s *S3) deleteKeys(ctx context.Context, bucket string, keys []string) error {
	for len(keys) > 0 {
		batch := keys
		if len(batch) > listPageSize {
			batch = keys[:listPageSize]
		}
		keys = keys[len(batch):]

		objects := make([]types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}
		_, err := s.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
