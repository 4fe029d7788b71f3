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
	"strconv"
	"strings"
)

// ResolveOptions bounds the search windows and the incremental-update walk.
// Zero value yields sane defaults via withDefaults.
type ResolveOptions struct {
	// HeaderSearchOffset is how far into the file the "%PDF-X.Y" magic
	// may be found.
	HeaderSearchOffset int64
	// XrefSearchOffset is how far from the end of the file "startxref"
	// may be found.
	XrefSearchOffset int64
	// MaxFileUpdates bounds the number of xref sections walked via Prev,
	// guarding against circular chains.
	MaxFileUpdates int
}

const (
	defaultHeaderSearchOffset = 1024
	defaultXrefSearchOffset   = 1024
	defaultMaxFileUpdates     = 32
)

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.HeaderSearchOffset <= 0 {
		o.HeaderSearchOffset = defaultHeaderSearchOffset
	}
	if o.XrefSearchOffset <= 0 {
		o.XrefSearchOffset = defaultXrefSearchOffset
	}
	if o.MaxFileUpdates <= 0 {
		o.MaxFileUpdates = defaultMaxFileUpdates
	}
	return o
}

// Header describes the PDF version comment found near the start of file.
type Header struct {
	Major, Minor int
	Offset       int64
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// scanHeader looks for the literal "%PDF-X.Y" within [0, searchOffset],
// byte by byte, matching the original implementation's state machine.
func scanHeader(src Source, searchOffset int64) (Header, error) {
	readLen := searchOffset + 8
	if readLen > src.Size() {
		readLen = src.Size()
	}
	buf, err := readAll(src, 0, readLen)
	if err != nil {
		return Header{}, err
	}

	for i := int64(0); i <= searchOffset && i+8 <= int64(len(buf)); i++ {
		if string(buf[i:i+5]) == "%PDF-" &&
			isDigit(buf[i+5]) && buf[i+6] == '.' && isDigit(buf[i+7]) {
			return Header{
				Major:  int(buf[i+5] - '0'),
				Minor:  int(buf[i+7] - '0'),
				Offset: i,
			}, nil
		}
	}
	return Header{}, newErr(KindPDFMalformed, "missing %PDF- header")
}

// scanStartXref finds the literal "startxref" within the last searchOffset
// bytes of the file and parses the offset that follows it.
func scanStartXref(src Source, searchOffset int64) (int64, error) {
	size := src.Size()
	start := size - searchOffset
	if start < 0 {
		start = 0
	}
	buf, err := readAll(src, start, size-start)
	if err != nil {
		return 0, err
	}

	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx < 0 {
		return 0, newErr(KindPDFMalformed, "missing startxref")
	}

	j := idx + len("startxref")
	for j < len(buf) && indexByte(whitespace, buf[j]) >= 0 {
		j++
	}
	k := j
	for k < len(buf) && indexByte(decAlphabet, buf[k]) >= 0 {
		k++
	}
	if k == j {
		return 0, newErr(KindPDFMalformed, "invalid startxref offset")
	}

	off, convErr := strconv.ParseInt(string(buf[j:k]), 10, 64)
	if convErr != nil || off == 0 {
		return 0, newErr(KindPDFMalformed, "invalid startxref offset")
	}
	return off, nil
}

// XrefEntry is one cross-reference table row.
type XrefEntry struct {
	Offset int64
	Gen    uint
	InUse  bool
}

// XrefTable is the resolved, flattened cross-reference table: for every
// object number the entry from the most recent xref section that mentions
// it, per the tie-break rule (newest section wins).
type XrefTable struct {
	current map[uint]XrefEntry
	size    uint
}

// Lookup returns the current entry for obj, if any.
func (x *XrefTable) Lookup(obj uint) (XrefEntry, bool) {
	e, ok := x.current[obj]
	return e, ok
}

// Size returns the declared cross-reference table size (highest object
// number + 1, per the trailer's /Size).
func (x *XrefTable) Size() uint { return x.size }

type sectionKind int

const (
	sectionTable sectionKind = iota
	sectionStream
)

// classifySection inspects the first non-whitespace byte at a section
// offset: 'x' begins the "xref" keyword of a classic table; a digit begins
// an indirect object header, i.e. a cross-reference stream.
func classifySection(src Source, off int64) (sectionKind, error) {
	lex := newLexer(src, off, src.Size())
	for {
		ch, ok := lex.c.peek()
		if !ok {
			return 0, newErrAt(KindPDFMalformed, off, "empty xref section")
		}
		if indexByte(whitespace, ch) >= 0 {
			lex.c.read()
			continue
		}
		if ch == 'x' {
			return sectionTable, nil
		}
		if isDigit(ch) {
			return sectionStream, nil
		}
		return 0, newErrAt(KindPDFMalformed, off, "invalid xref section")
	}
}

func skipLineEnd(lex *Lexer) {
	for {
		ch, ok := lex.c.peek()
		if !ok {
			return
		}
		if ch == ' ' {
			lex.c.read()
			continue
		}
		if ch == '\r' {
			lex.c.read()
			if ch2, ok2 := lex.c.peek(); ok2 && ch2 == '\n' {
				lex.c.read()
			}
			return
		}
		if ch == '\n' {
			lex.c.read()
			return
		}
		return
	}
}

// readXrefEntry reads one fixed 20-byte classic xref entry:
// "oooooooooo ggggg n \n" or "... f \n" (or \r\n).
func readXrefEntry(lex *Lexer) (XrefEntry, error) {
	buf := make([]byte, 20)
	for i := 0; i < 20; i++ {
		ch, ok := lex.c.read()
		if !ok {
			return XrefEntry{}, newErrAt(KindPDFMalformed, lex.pos(), "truncated xref entry")
		}
		buf[i] = ch
	}

	offset, err1 := strconv.ParseInt(strings.TrimSpace(string(buf[0:10])), 10, 64)
	gen, err2 := strconv.ParseUint(strings.TrimSpace(string(buf[11:16])), 10, 32)
	if err1 != nil || err2 != nil || offset < 0 {
		return XrefEntry{}, newErrAt(KindPDFMalformed, lex.pos(), "invalid xref entry")
	}

	switch buf[17] {
	case 'n':
		return XrefEntry{Offset: offset, Gen: uint(gen), InUse: true}, nil
	case 'f':
		return XrefEntry{Offset: offset, Gen: uint(gen), InUse: false}, nil
	default:
		return XrefEntry{}, newErrAt(KindPDFMalformed, lex.pos(), "invalid xref entry type")
	}
}

// parseXrefSection parses a classic "xref" table: the keyword, zero or more
// subsections, and the trailer dictionary that follows. Newly seen object
// numbers are recorded into current; numbers already present (from a more
// recent section walked earlier) are left untouched, implementing the
// newest-shadows-oldest tie-break rule.
func parseXrefSection(
	lex *Lexer, current map[uint]XrefEntry, seen map[uint]bool,
) (map[string]Object, error) {
	if err := expectKeyword(lex, "xref"); err != nil {
		return nil, err
	}

	for {
		var stack []Object
		tok, err := parseInto(lex, &stack)
		if err != nil {
			return nil, err
		}
		if tok.Kind == Keyword && tok.String == "trailer" {
			break
		}
		if !tok.IsUint() {
			return nil, newErrAt(KindPDFMalformed, lex.pos(), "invalid xref subsection header")
		}

		countObj, err := parseInto(lex, &stack)
		if err != nil {
			return nil, err
		}
		if !countObj.IsUint() {
			return nil, newErrAt(KindPDFMalformed, lex.pos(), "invalid xref subsection header")
		}

		first, count := uint(tok.Number), uint(countObj.Number)
		skipLineEnd(lex)
		for i := uint(0); i < count; i++ {
			entry, err := readXrefEntry(lex)
			if err != nil {
				return nil, err
			}
			n := first + i
			if !seen[n] {
				seen[n] = true
				current[n] = entry
			}
		}
	}

	var stack []Object
	trailer, err := parseInto(lex, &stack)
	if err != nil {
		return nil, err
	}
	if trailer.Kind != Dict {
		return nil, newErrAt(KindPDFMalformed, lex.pos(), "invalid trailer dictionary")
	}
	return trailer.Dict, nil
}

// resolveXref walks the startxref -> xref -> Prev chain and returns the
// flattened cross-reference table together with the trailer's Root
// reference (kept from the first, i.e. newest, section that defines it).
func resolveXref(src Source, opts ResolveOptions) (*XrefTable, Object, error) {
	sectionOff, err := scanStartXref(src, opts.XrefSearchOffset)
	if err != nil {
		return nil, Object{}, err
	}

	current := make(map[uint]XrefEntry)
	seenObjs := make(map[uint]bool)
	seenSections := make(map[int64]bool)

	var rootRef Object
	var size uint
	haveRoot, haveSize := false, false

	for i := 0; ; i++ {
		if i >= opts.MaxFileUpdates {
			return nil, Object{}, newErrAt(KindPDFMalformed, sectionOff, "too many incremental updates")
		}
		if sectionOff < 0 || sectionOff >= src.Size() {
			return nil, Object{}, newErrAt(KindPDFMalformed, sectionOff, "invalid xref offset")
		}
		if seenSections[sectionOff] {
			return nil, Object{}, newErrAt(KindPDFMalformed, sectionOff, "circular xref offsets")
		}
		seenSections[sectionOff] = true

		kind, err := classifySection(src, sectionOff)
		if err != nil {
			return nil, Object{}, err
		}
		if kind == sectionStream {
			return nil, Object{}, newErrAt(KindUnsupported, sectionOff, "cross-reference streams")
		}

		lex := newLexer(src, sectionOff, src.Size())
		trailer, err := parseXrefSection(lex, current, seenObjs)
		if err != nil {
			return nil, Object{}, err
		}

		if !haveRoot {
			if r, ok := trailer["Root"]; ok && r.Kind == Reference {
				rootRef = r
				haveRoot = true
			}
		}
		if !haveSize {
			if s, ok := trailer["Size"]; ok && s.IsUint() {
				size = uint(s.Number)
				haveSize = true
			}
		}

		prev, ok := trailer["Prev"]
		if !ok {
			break
		}
		if !prev.IsInteger() {
			return nil, Object{}, newErr(KindPDFMalformed, "invalid Prev offset")
		}
		sectionOff = int64(prev.Number)
	}

	if !haveRoot {
		return nil, Object{}, newErr(KindPDFContent, "trailer missing Root")
	}
	if !haveSize {
		return nil, Object{}, newErr(KindPDFContent, "trailer missing Size")
	}
	return &XrefTable{current: current, size: size}, rootRef, nil
}
