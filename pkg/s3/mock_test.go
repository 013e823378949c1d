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
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockClient is an in-memory stand-in for the S3 API, covering exactly
// the Client surface the adapter calls.
type mockClient struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	uploads   map[string]map[int32][]byte
	uploadSeq int
}

func newMockClient(buckets ...string) *mockClient {
	m := &mockClient{
		buckets: make(map[string]map[string][]byte),
		uploads: make(map[string]map[int32][]byte),
	}
	for _, b := range buckets {
		m.buckets[b] = make(map[string][]byte)
	}
	return m
}

func (m *mockClient) bucket(name string) (map[string][]byte, error) {
	b, ok := m.buckets[name]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}
	return b, nil
}

func (m *mockClient) PutObject(ctx context.Context, in *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b[aws.ToString(in.Key)] = data
	return &awss3.PutObjectOutput{}, nil
}

func (m *mockClient) GetObject(ctx context.Context, in *awss3.GetObjectInput, opts ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	data, ok := b[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	begin, end := int64(0), int64(len(data))-1
	if rng := aws.ToString(in.Range); rng != "" {
		var a, z int64
		if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &a, &z); err != nil {
			return nil, fmt.Errorf("bad range %q", rng)
		}
		begin = a
		if z < end {
			end = z
		}
	}
	if begin > end {
		return nil, fmt.Errorf("range out of bounds")
	}
	body := make([]byte, end-begin+1)
	copy(body, data[begin:end+1])
	return &awss3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (m *mockClient) HeadObject(ctx context.Context, in *awss3.HeadObjectInput, opts ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	data, ok := b[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (m *mockClient) ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, opts ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	prefix := aws.ToString(in.Prefix)
	delimiter := aws.ToString(in.Delimiter)

	keys := make([]string, 0, len(b))
	for k := range b {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	seenPrefixes := make(map[string]bool)
	var count int32
	for _, k := range keys {
		if delimiter != "" {
			rest := strings.TrimPrefix(k, prefix)
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				cp := prefix + rest[:idx+1]
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(b[k]))),
		})
		count++
		if in.MaxKeys != nil && count >= aws.ToInt32(in.MaxKeys) {
			break
		}
	}
	out.KeyCount = aws.Int32(count)
	return out, nil
}

func (m *mockClient) DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, opts ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	delete(b, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (m *mockClient) DeleteObjects(ctx context.Context, in *awss3.DeleteObjectsInput, opts ...func(*awss3.Options)) (*awss3.DeleteObjectsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	for _, obj := range in.Delete.Objects {
		delete(b, aws.ToString(obj.Key))
	}
	return &awss3.DeleteObjectsOutput{}, nil
}

func (m *mockClient) CopyObject(ctx context.Context, in *awss3.CopyObjectInput, opts ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	source := aws.ToString(in.CopySource)
	parts := strings.SplitN(source, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("bad copy source %q", source)
	}
	src, err := m.bucket(parts[0])
	if err != nil {
		return nil, err
	}
	data, ok := src[parts[1]]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	dst, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	dst[aws.ToString(in.Key)] = copied
	return &awss3.CopyObjectOutput{}, nil
}

func (m *mockClient) CreateBucket(ctx context.Context, in *awss3.CreateBucketInput, opts ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := aws.ToString(in.Bucket)
	if _, ok := m.buckets[name]; ok {
		return nil, &types.BucketAlreadyExists{}
	}
	m.buckets[name] = make(map[string][]byte)
	return &awss3.CreateBucketOutput{}, nil
}

func (m *mockClient) DeleteBucket(ctx context.Context, in *awss3.DeleteBucketInput, opts ...func(*awss3.Options)) (*awss3.DeleteBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := aws.ToString(in.Bucket)
	if _, ok := m.buckets[name]; !ok {
		return nil, &types.NoSuchBucket{}
	}
	delete(m.buckets, name)
	return &awss3.DeleteBucketOutput{}, nil
}

func (m *mockClient) HeadBucket(ctx context.Context, in *awss3.HeadBucketInput, opts ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[aws.ToString(in.Bucket)]; !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadBucketOutput{}, nil
}

func (m *mockClient) CreateMultipartUpload(ctx context.Context, in *awss3.CreateMultipartUploadInput, opts ...func(*awss3.Options)) (*awss3.CreateMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadSeq++
	id := "upload-" + strconv.Itoa(m.uploadSeq)
	m.uploads[id] = make(map[int32][]byte)
	return &awss3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
}

func (m *mockClient) UploadPart(ctx context.Context, in *awss3.UploadPartInput, opts ...func(*awss3.Options)) (*awss3.UploadPartOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts, ok := m.uploads[aws.ToString(in.UploadId)]
	if !ok {
		return nil, &types.NoSuchUpload{}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	num := aws.ToInt32(in.PartNumber)
	parts[num] = data
	return &awss3.UploadPartOutput{
		ETag: aws.String(fmt.Sprintf("etag-%d", num)),
	}, nil
}

func (m *mockClient) CompleteMultipartUpload(ctx context.Context, in *awss3.CompleteMultipartUploadInput, opts ...func(*awss3.Options)) (*awss3.CompleteMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := aws.ToString(in.UploadId)
	parts, ok := m.uploads[id]
	if !ok {
		return nil, &types.NoSuchUpload{}
	}
	b, err := m.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	var assembled []byte
	for _, p := range in.MultipartUpload.Parts {
		assembled = append(assembled, parts[aws.ToInt32(p.PartNumber)]...)
	}
	b[aws.ToString(in.Key)] = assembled
	delete(m.uploads, id)
	return &awss3.CompleteMultipartUploadOutput{}, nil
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, in *awss3.AbortMultipartUploadInput, opts ...func(*awss3.Options)) (*awss3.AbortMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, aws.ToString(in.UploadId))
	return &awss3.AbortMultipartUploadOutput{}, nil
}
