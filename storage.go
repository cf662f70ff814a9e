// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svs

import (
	"io"
	"sync"
)

const maxChunkSize = 10 << 20 // 10M

// readExact reads n bytes at off. The length comes from untrusted file
// data, so large reads are done in chunks rather than allocating the whole
// slice up front. Any failure, including a short read, is a *StorageError.
func readExact(r io.ReaderAt, n uint64, off int64) ([]byte, error) {
	if int64(n) < 0 || n != uint64(int(n)) {
		// n is too large to fit in int, so we can't allocate
		// a buffer large enough.
		return nil, &StorageError{Offset: off, Length: n, Err: io.ErrUnexpectedEOF}
	}
	if n == 0 {
		return []byte{}, nil
	}

	if n < maxChunkSize {
		buf := make([]byte, n)
		if err := readFullAt(r, buf, off); err != nil {
			return nil, err
		}
		return buf, nil
	}

	var buf []byte
	buf1 := make([]byte, maxChunkSize)
	pos, left := off, n
	for left > 0 {
		next := left
		if next > maxChunkSize {
			next = maxChunkSize
		}
		if err := readFullAt(r, buf1[:next], pos); err != nil {
			return nil, err
		}
		buf = append(buf, buf1[:next]...)
		left -= next
		pos += int64(next)
	}
	return buf, nil
}

// readFullAt fills p from off, reporting failures as *StorageError.
func readFullAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		// io.ReaderAt may report EOF together with a full read.
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return &StorageError{Offset: off, Length: uint64(len(p)), Err: err}
	}
	return nil
}

// SeekerAt adapts a cursor-based handle to io.ReaderAt. Each ReadAt does
// its seek and read under one lock, so concurrent callers never observe a
// cursor moved by someone else.
type SeekerAt struct {
	mu sync.Mutex
	rs io.ReadSeeker
}

// NewSeekerAt wraps rs. rs must not be used directly afterwards.
func NewSeekerAt(rs io.ReadSeeker) *SeekerAt {
	return &SeekerAt{rs: rs}
}

func (s *SeekerAt) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.rs, p)
}

// Close closes the wrapped handle if it is an io.Closer.
func (s *SeekerAt) Close() error {
	if c, ok := s.rs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
