//
// Copyright (c) 2018 - 2021, Přemysl Eric Janouch <p@janouch.name>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION
// OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN
// CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
//

package pdfsig

import (
	"io"
	"os"
)

// thresholdFileBuffering mirrors the original implementation's decision to
// slurp small files entirely into memory rather than keep the handle open
// for random-access reads.
const thresholdFileBuffering = 64 * 1024

// Source is a byte-addressable, random-access view over a PDF document.
// It is implemented either by an in-memory buffer or by a seekable file.
// Callers must not observe any behavioral difference between the two.
type Source interface {
	// Size returns the total length of the document in bytes.
	Size() int64

	// ReadAt reads len(p) bytes starting at off, as io.ReaderAt.
	ReadAt(p []byte, off int64) (int, error)

	// Reader returns a reader over [off, off+length) suitable for
	// streaming digest computation without buffering the whole span.
	Reader(off, length int64) io.Reader

	// Close releases any underlying resources (file handles).
	Close() error
}

type memSource struct {
	data []byte
}

func (m *memSource) Size() int64 { return int64(len(m.data)) }

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memSource) Reader(off, length int64) io.Reader {
	if off < 0 {
		off = 0
	}
	end := off + length
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	if off > end {
		off = end
	}
	return &sliceReader{data: m.data[off:end]}
}

func (m *memSource) Close() error { return nil }

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type fileSource struct {
	f    *os.File
	size int64
}

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileSource) Reader(off, length int64) io.Reader {
	return io.NewSectionReader(s.f, off, length)
}

func (s *fileSource) Close() error { return s.f.Close() }

// OpenBytes wraps an in-memory buffer as a Source. The caller retains
// ownership of data; it must not be modified while the Source is in use.
func OpenBytes(data []byte) Source {
	return &memSource{data: data}
}

// Open opens a PDF file by path. Files below thresholdFileBuffering are
// slurped into memory immediately; larger files are read randomly via the
// open handle. Either way the returned Source behaves identically.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapErr(KindIO, path, err)
	}

	size := info.Size()
	if size < thresholdFileBuffering {
		data := make([]byte, size)
		if _, err := io.ReadFull(f, data); err != nil {
			f.Close()
			return nil, wrapErr(KindIO, path, err)
		}
		f.Close()
		return &memSource{data: data}, nil
	}
	return &fileSource{f: f, size: size}, nil
}

// OpenFile adapts an already-open file handle as a Source. The handle's
// ownership (and closing it) remains the caller's responsibility; Close on
// the returned Source is a no-op.
func OpenFile(f *os.File) (Source, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, wrapErr(KindIO, "", err)
	}
	return &nonOwningFileSource{f: f, size: info.Size()}, nil
}

type nonOwningFileSource struct {
	f    *os.File
	size int64
}

func (s *nonOwningFileSource) Size() int64 { return s.size }
func (s *nonOwningFileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}
func (s *nonOwningFileSource) Reader(off, length int64) io.Reader {
	return io.NewSectionReader(s.f, off, length)
}
func (s *nonOwningFileSource) Close() error { return nil }

// readAll reads the whole span [off, off+n) or fails with KindIO.
func readAll(src Source, off, n int64) ([]byte, error) {
	if n < 0 || off < 0 || off+n > src.Size() {
		return nil, newErrAt(KindIO, off, "out of bounds read")
	}
	buf := make([]byte, n)
	if _, err := src.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, wrapErr(KindIO, "", err)
	}
	return buf, nil
}
