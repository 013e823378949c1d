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
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jeremyhahn/go-vfs/pkg/uri"
)

// writeState accumulates writes for one URI. Once the buffer reaches the
// configured file buffer size a multipart upload is started and full
// buffers go out as parts; FlushObject commits whatever is left.
type writeState struct {
	buf      []byte
	uploadID string
	partNum  int32
	parts    []types.CompletedPart
}

type writeBuffers struct {
	mu     sync.Mutex
	states map[string]*writeState
}

func newWriteBuffers() writeBuffers {
	return writeBuffers{states: make(map[string]*writeState)}
}

func (w *writeBuffers) get(u uri.URI) *writeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.states[u.String()]
	if !ok {
		st = &writeState{}
		w.states[u.String()] = st
	}
	return st
}

func (w *writeBuffers) take(u uri.URI) *writeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.states[u.String()]
	delete(w.states, u.String())
	return st
}

// Write appends buf into the per-URI write buffer, shipping full
// fileBufferSize chunks as multipart parts.
func (s *S3) Write(ctx context.Context, u uri.URI, buf []byte) error {
	st := s.writes.get(u)
	st.buf = append(st.buf, buf...)

	for uint64(len(st.buf)) >= s.fileBufferSize {
		if err := s.uploadPart(ctx, u, st, st.buf[:s.fileBufferSize]); err != nil {
			return err
		}
		st.buf = st.buf[s.fileBufferSize:]
	}
	return nil
}

// FlushObject commits the buffered writes: a single PutObject when the
// buffer never reached fileBufferSize, otherwise the final multipart part
// and the completion call. Flushing a URI with no buffered writes is a
// no-op.
func (s *S3) FlushObject(ctx context.Context, u uri.URI) error {
	st := s.writes.take(u)
	if st == nil {
		return nil
	}

	if st.uploadID == "" {
		_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket: aws.String(u.Authority()),
			Key:    aws.String(u.Path()),
			Body:   bytes.NewReader(st.buf),
		})
		return err
	}

	if len(st.buf) > 0 {
		if err := s.uploadPart(ctx, u, st, st.buf); err != nil {
			s.abort(ctx, u, st)
			return err
		}
		st.buf = nil
	}

	_, err := s.client.CompleteMultipartUpload(ctx, &awss3.CompleteMultipartUploadInput{
		Bucket:   aws.String(u.Authority()),
		Key:      aws.String(u.Path()),
		UploadId: aws.String(st.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: st.parts,
		},
	})
	if err != nil {
		s.abort(ctx, u, st)
	}
	return err
}

func (s *S3) uploadPart(ctx context.Context, u uri.URI, st *writeState, part []byte) error {
	if st.uploadID == "" {
		out, err := s.client.CreateMultipartUpload(ctx, &awss3.CreateMultipartUploadInput{
			Bucket: aws.String(u.Authority()),
			Key:    aws.String(u.Path()),
		})
		if err != nil {
			return err
		}
		st.uploadID = aws.ToString(out.UploadId)
	}

	st.partNum++
	out, err := s.client.UploadPart(ctx, &awss3.UploadPartInput{
		Bucket:     aws.String(u.Authority()),
		Key:        aws.String(u.Path()),
		UploadId:   aws.String(st.uploadID),
		PartNumber: aws.Int32(st.partNum),
		Body:       bytes.NewReader(part),
	})
	if err != nil {
		return err
	}
	st.parts = append(st.parts, types.CompletedPart{
		ETag:       out.ETag,
		PartNumber: aws.Int32(st.partNum),
	})
	return nil
}

func (s *S3) abort(ctx context.Context, u uri.URI, st *writeState) {
	_, _ = s.client.AbortMultipartUpload(ctx, &awss3.AbortMultipartUploadInput{
		Bucket:   aws.String(u.Authority()),
		Key:      aws.String(u.Path()),
		UploadId: aws.String(st.uploadID),
	})
}
