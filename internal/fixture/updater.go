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

// Package fixture builds small, self-consistent PDF documents in memory
// for the pdfsig and verify packages' tests. It is adapted from the teacher
// implementation's incremental-update writer (Updater/Update/FlushUpdates/
// Allocate): instead of updating a parsed pre-existing file, it builds a
// document from scratch, one object at a time, tracking each object's
// offset as it's written so the final cross-reference table is always
// correct by construction rather than hand-computed.
package fixture

import (
	"bytes"
	"fmt"
	"sort"
)

// Builder assembles a PDF document across one or more incremental
// revisions. The zero value is not usable; use NewBuilder.
type Builder struct {
	buf     bytes.Buffer
	offsets map[uint]int64
	size    uint
	touched map[uint]bool
	lastRef int64 // startxref of the previous revision, 0 if none yet
	root    uint
}

// NewBuilder starts a new document with the given PDF header line. Object
// number 0 is reserved as the free-list head, as the cross-reference table
// format requires; the first number handed out by Allocate is 1.
func NewBuilder(version string) *Builder {
	b := &Builder{offsets: make(map[uint]int64), touched: make(map[uint]bool), size: 1}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	return b
}

// Allocate reserves a fresh object number.
func (b *Builder) Allocate() uint {
	n := b.size
	b.size++
	return n
}

// SetRoot records which object number is the document Catalog, used when
// writing the trailer.
func (b *Builder) SetRoot(n uint) { b.root = n }

// WriteObject appends object n's body ("n 0 obj\n<body>\nendobj\n") at the
// document's current end and records its offset for the next Flush.
func (b *Builder) WriteObject(n uint, body string) {
	b.offsets[n] = int64(b.buf.Len())
	b.touched[n] = true
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", n, body)
}

// Len returns the document's current length, for computing signing windows
// before the trailing cross-reference section is appended.
func (b *Builder) Len() int64 { return int64(b.buf.Len()) }

// Bytes returns the document's current raw bytes. Only valid for read-only
// inspection; callers must go through WriteObject/Flush to extend it.
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// Overwrite replaces the bytes at [off, off+len(data)) in place, used to
// backfill a reserved placeholder (ByteRange, Contents) once the final
// document length is known.
func (b *Builder) Overwrite(off int64, data []byte) {
	copy(b.buf.Bytes()[off:], data)
}

// Flush appends a classic cross-reference table covering every object
// touched since the previous Flush, plus a trailer. It returns the
// startxref offset of this revision.
func (b *Builder) Flush() int64 {
	touched := make([]uint, 0, len(b.touched))
	for n := range b.touched {
		touched = append(touched, n)
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i] < touched[j] })

	startxref := int64(b.buf.Len())
	b.buf.WriteString("xref\n")

	if b.lastRef == 0 {
		// First revision: object 0 is the conventional free-list head,
		// plus every live object gets its own single-entry subsection
		// unless contiguous (kept simple: one subsection per run).
		touched = append([]uint{0}, touched...)
	}

	for i := 0; i < len(touched); {
		start, stop := touched[i], touched[i]+1
		for i++; i < len(touched) && touched[i] == stop; i++ {
			stop++
		}
		fmt.Fprintf(&b.buf, "%d %d\n", start, stop-start)
		for n := start; n < stop; n++ {
			if n == 0 {
				b.buf.WriteString("0000000000 65535 f \n")
				continue
			}
			fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[n])
		}
	}

	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root %d 0 R",
		b.size, b.root)
	if b.lastRef != 0 {
		fmt.Fprintf(&b.buf, " /Prev %d", b.lastRef)
	}
	fmt.Fprintf(&b.buf, " >>\nstartxref\n%d\n%%%%EOF\n", startxref)

	b.lastRef = startxref
	b.touched = make(map[uint]bool)
	return startxref
}
