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

// gotoObject positions a fresh Lexer at the body of object (n, gen),
// having consumed and validated its "N G obj" header.
func gotoObject(src Source, xref *XrefTable, n, gen uint) (*Lexer, error) {
	entry, ok := xref.Lookup(n)
	if !ok || !entry.InUse {
		return nil, newErr(KindPDFContent, "object not found")
	}
	if entry.Gen != gen {
		return nil, newErr(KindPDFContent, "object generation mismatch")
	}
	if entry.Offset < 0 || entry.Offset >= src.Size() {
		return nil, newErrAt(KindPDFMalformed, entry.Offset, "xref entry out of bounds")
	}

	lex := newLexer(src, entry.Offset, src.Size())
	gotN, gotGen, err := parseTwoUints(lex)
	if err != nil {
		return nil, err
	}
	if gotN != n || gotGen != gen {
		return nil, newErrAt(KindPDFMalformed, entry.Offset, "object header mismatch")
	}
	if err := expectKeyword(lex, "obj"); err != nil {
		return nil, err
	}
	lex.skipTrivia()
	return lex, nil
}

// getObject parses object (n, gen) in full.
func getObject(src Source, xref *XrefTable, n, gen uint) (Object, error) {
	lex, err := gotoObject(src, xref, n, gen)
	if err != nil {
		return Object{}, err
	}
	return parseObjectBody(lex)
}

// dereference resolves a Reference object, passing any other kind through
// unchanged.
func dereference(src Source, xref *XrefTable, o Object) (Object, error) {
	if o.Kind != Reference {
		return o, nil
	}
	return getObject(src, xref, o.N, o.Generation)
}

// dereferenceDict resolves o if necessary and requires the result to be a
// dictionary.
func dereferenceDict(src Source, xref *XrefTable, o Object, what string) (Object, error) {
	v, err := dereference(src, xref, o)
	if err != nil {
		return v, err
	}
	if v.Kind != Dict {
		return v, newErr(KindPDFContent, what+" is not a dictionary")
	}
	return v, nil
}
