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
	"bytes"
	"strings"
	"testing"
)

func TestScanHeaderAtOffsetZero(t *testing.T) {
	src := OpenBytes([]byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n"))
	h, err := scanHeader(src, defaultHeaderSearchOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Major != 1 || h.Minor != 4 || h.Offset != 0 {
		t.Fatalf("got %+v", h)
	}
}

func TestScanHeaderWithPrefix(t *testing.T) {
	prefix := strings.Repeat("x", 50)
	src := OpenBytes([]byte(prefix + "%PDF-1.7\n"))
	h, err := scanHeader(src, defaultHeaderSearchOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Offset != 50 || h.Major != 1 || h.Minor != 7 {
		t.Fatalf("got %+v", h)
	}
}

func TestScanHeaderAtExactBoundary(t *testing.T) {
	searchOffset := int64(16)
	prefix := strings.Repeat("y", int(searchOffset))
	src := OpenBytes([]byte(prefix + "%PDF-1.4\n"))
	h, err := scanHeader(src, searchOffset)
	if err != nil {
		t.Fatalf("unexpected error at exact boundary: %v", err)
	}
	if h.Offset != searchOffset {
		t.Fatalf("got offset %d, want %d", h.Offset, searchOffset)
	}
}

func TestScanHeaderPastBoundaryFails(t *testing.T) {
	searchOffset := int64(16)
	prefix := strings.Repeat("y", int(searchOffset)+1)
	src := OpenBytes([]byte(prefix + "%PDF-1.4\n"))
	if _, err := scanHeader(src, searchOffset); err == nil {
		t.Fatal("expected failure when header starts past the search offset")
	}
}

func TestScanStartXrefLiteral(t *testing.T) {
	data := []byte("abcdefghi\nstartxref\n1234567890\n%%EOF")
	src := OpenBytes(data)
	off, err := scanStartXref(src, int64(len(data)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off != 1234567890 {
		t.Fatalf("got %d, want 1234567890", off)
	}
}

func TestScanStartXrefZeroOffsetRejected(t *testing.T) {
	data := []byte("startxref\n0\n%%EOF")
	src := OpenBytes(data)
	if _, err := scanStartXref(src, int64(len(data))); err == nil {
		t.Fatal("expected a zero startxref offset to be rejected")
	}
}

func TestScanStartXrefMissing(t *testing.T) {
	data := []byte("no such keyword here")
	src := OpenBytes(data)
	if _, err := scanStartXref(src, int64(len(data))); err == nil {
		t.Fatal("expected failure without a startxref keyword")
	}
}

func TestClassifySectionTable(t *testing.T) {
	src := OpenBytes([]byte("   xref\n0 1\n0000000000 65535 f \n"))
	kind, err := classifySection(src, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != sectionTable {
		t.Fatalf("got %v, want sectionTable", kind)
	}
}

func TestClassifySectionStream(t *testing.T) {
	src := OpenBytes([]byte("7 0 obj\n<< /Type /XRef >>\nstream\nendstream\nendobj\n"))
	kind, err := classifySection(src, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != sectionStream {
		t.Fatalf("got %v, want sectionStream", kind)
	}
}

func TestClassifySectionInvalid(t *testing.T) {
	src := OpenBytes([]byte("!!! not a section"))
	if _, err := classifySection(src, 0); err == nil {
		t.Fatal("expected failure on an invalid section header")
	}
}

// chainedXref builds a minimal self-referential document whose xref
// sections form a Prev chain of the given length, to exercise the
// MaxFileUpdates bound.
func chainedXref(t *testing.T, length int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")

	var offsets []int64
	for i := 0; i < length; i++ {
		offsets = append(offsets, int64(buf.Len()))
		buf.WriteString("xref\n0 1\n0000000000 65535 f \n")
		buf.WriteString("trailer\n<< /Size 1 /Root 1 0 R")
		if i > 0 {
			buf.WriteString(" /Prev " + itoa(offsets[i-1]))
		}
		buf.WriteString(" >>\n")
	}

	final := offsets[len(offsets)-1]
	buf.WriteString("startxref\n" + itoa(final) + "\n%%EOF\n")
	return buf.Bytes()
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

func TestResolveXrefMaxFileUpdatesBoundary(t *testing.T) {
	data := chainedXref(t, defaultMaxFileUpdates)
	src := OpenBytes(data)
	if _, _, err := resolveXref(src, ResolveOptions{}.withDefaults()); err != nil {
		t.Fatalf("expected success at the MaxFileUpdates bound, got: %v", err)
	}
}

func TestResolveXrefExceedsMaxFileUpdates(t *testing.T) {
	data := chainedXref(t, defaultMaxFileUpdates+1)
	src := OpenBytes(data)
	_, _, err := resolveXref(src, ResolveOptions{}.withDefaults())
	if err == nil {
		t.Fatal("expected failure past the MaxFileUpdates bound")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != KindPDFMalformed {
		t.Fatalf("got %v, want KindPDFMalformed", err)
	}
}
