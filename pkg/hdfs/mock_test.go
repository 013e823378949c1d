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

//go:build hdfs

package hdfs

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"time"
)

// mockClient is an in-memory stand-in for the HDFS name node, covering
// exactly the Client surface the adapter calls. Errors are *os.PathError
// values so the adapter's os.IsNotExist/os.IsExist checks behave as they
// do against the real client.
type mockClient struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

func newMockClient() *mockClient {
	return &mockClient{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
}

func notExist(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: os.ErrNotExist}
}

func alreadyExists(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: os.ErrExist}
}

// parentOf returns the directory containing name.
func parentOf(name string) string {
	idx := strings.LastIndexByte(name, '/')
	if idx <= 0 {
		return "/"
	}
	return name[:idx]
}

type mockFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return i.size }
func (i mockFileInfo) Mode() os.FileMode  { return 0644 }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return i.dir }
func (i mockFileInfo) Sys() any           { return nil }

type mockReader struct {
	*bytes.Reader
}

func (mockReader) Close() error { return nil }

type mockWriter struct {
	m    *mockClient
	name string
}

func (w mockWriter) Write(p []byte) (int, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.files[w.name] = append(w.m.files[w.name], p...)
	return len(p), nil
}

func (w mockWriter) Close() error { return nil }

func (m *mockClient) MkdirAll(dirname string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := dirname; dir != "/"; dir = parentOf(dir) {
		m.dirs[dir] = true
	}
	return nil
}

func (m *mockClient) CreateEmptyFile(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; ok {
		return alreadyExists("create", name)
	}
	m.files[name] = nil
	return nil
}

func (m *mockClient) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if m.dirs[name] {
		delete(m.dirs, name)
		return nil
	}
	return notExist("remove", name)
}

func (m *mockClient) RemoveAll(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := name + "/"
	for f := range m.files {
		if f == name || strings.HasPrefix(f, prefix) {
			delete(m.files, f)
		}
	}
	for d := range m.dirs {
		if d == name || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	return nil
}

func (m *mockClient) ReadDir(dirname string) ([]os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirs[dirname] {
		return nil, notExist("readdir", dirname)
	}
	var infos []os.FileInfo
	for f, data := range m.files {
		if parentOf(f) == dirname {
			infos = append(infos, mockFileInfo{name: f[strings.LastIndexByte(f, '/')+1:], size: int64(len(data))})
		}
	}
	for d := range m.dirs {
		if d != "/" && parentOf(d) == dirname {
			infos = append(infos, mockFileInfo{name: d[strings.LastIndexByte(d, '/')+1:], dir: true})
		}
	}
	return infos, nil
}

func (m *mockClient) Stat(name string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.files[name]; ok {
		return mockFileInfo{name: name[strings.LastIndexByte(name, '/')+1:], size: int64(len(data))}, nil
	}
	if m.dirs[name] {
		return mockFileInfo{name: name[strings.LastIndexByte(name, '/')+1:], dir: true}, nil
	}
	return nil, notExist("stat", name)
}

func (m *mockClient) Open(name string) (FileReader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, notExist("open", name)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return mockReader{Reader: bytes.NewReader(copied)}, nil
}

func (m *mockClient) Append(name string) (FileWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return nil, notExist("append", name)
	}
	return mockWriter{m: m, name: name}, nil
}

func (m *mockClient) Create(name string) (FileWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = nil
	return mockWriter{m: m, name: name}, nil
}

func (m *mockClient) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.files[oldpath]; ok {
		delete(m.files, oldpath)
		m.files[newpath] = data
		return nil
	}
	if m.dirs[oldpath] {
		prefix := oldpath + "/"
		for f, data := range m.files {
			if strings.HasPrefix(f, prefix) {
				delete(m.files, f)
				m.files[newpath+"/"+strings.TrimPrefix(f, prefix)] = data
			}
		}
		for d := range m.dirs {
			if strings.HasPrefix(d, prefix) {
				delete(m.dirs, d)
				m.dirs[newpath+"/"+strings.TrimPrefix(d, prefix)] = true
			}
		}
		delete(m.dirs, oldpath)
		m.dirs[newpath] = true
		return nil
	}
	return notExist("rename", oldpath)
}
