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

// Subfilter identifies the encoding of a signature dictionary's Contents.
type Subfilter int

const (
	// SubfilterUnknown covers every SubFilter value other than the one
	// below; verification of these is Unsupported.
	SubfilterUnknown Subfilter = iota
	// SubfilterAdbeX509RSASHA1 is a raw PKCS#1 RSA signature over a
	// SHA-1 digest -- not a PKCS#7/CMS envelope.
	SubfilterAdbeX509RSASHA1
)

const subfilterAdbeX509RSASHA1Name = "adbe.x509.rsa_sha1"

// BytePair is one (start, length) entry of a /ByteRange array.
type BytePair struct {
	Start, Length int64
}

// Certificate is one DER-encoded certificate extracted from a signature
// dictionary's /Cert entry. The first Certificate in a Signature's chain
// is the signing certificate; the rest are intermediates.
type Certificate struct {
	DER []byte
}

// Signature is the fully extracted content of a signature dictionary.
type Signature struct {
	Subfilter    Subfilter
	SubfilterRaw string
	Certificates []Certificate
	ContentsDER  []byte
	ByteRange    []BytePair

	// contentsSpan is the literal [start, end) byte offsets of the
	// /Contents hex token (including its enclosing < >) within the
	// source, used to validate it falls in the ByteRange gap.
	contentsSpan [2]int64
}

// dictEntry records a parsed dictionary value together with the literal
// byte span its token(s) occupied in the source, needed only for the
// /Contents placeholder gap check.
type dictEntry struct {
	value      Object
	start, end int64
}

// parseSigDictWithSpans parses a signature dictionary body, which must
// begin at the lexer's current position with "<<", recording byte spans
// for every value so that /Contents can later be checked against
// /ByteRange. This duplicates a slice of tokens.go's generic dictionary
// parsing because only the signature dictionary needs literal offsets.
func parseSigDictWithSpans(lex *Lexer) (map[string]dictEntry, error) {
	if err := expectToken(lex, BDict); err != nil {
		return nil, err
	}

	entries := make(map[string]dictEntry)
	for {
		var stack []Object
		keyTok, err := parseInto(lex, &stack)
		if err != nil {
			return nil, err
		}
		if keyTok.Kind == EDict {
			break
		}
		if keyTok.Kind != Name {
			return nil, newErrAt(KindPDFMalformed, lex.pos(), "invalid dictionary key type")
		}

		lex.skipTrivia()
		start := lex.pos()
		value, err := parseInto(lex, &stack)
		if err != nil {
			return nil, err
		}
		end := lex.pos()
		entries[keyTok.String] = dictEntry{value: value, start: start, end: end}
	}

	if err := expectKeyword(lex, "endobj"); err != nil {
		return nil, err
	}
	return entries, nil
}

func expectToken(lex *Lexer, kind ObjectKind) error {
	tok, err := lex.Next()
	if err != nil {
		return err
	}
	if tok.Kind != kind {
		return newErrAt(KindPDFMalformed, lex.pos(), "unexpected token")
	}
	return nil
}

// getSignatureDict fetches object (n, gen), which must be the signature
// dictionary, with span tracking enabled.
func getSignatureDict(src Source, xref *XrefTable, n, gen uint) (map[string]dictEntry, error) {
	lex, err := gotoObject(src, xref, n, gen)
	if err != nil {
		return nil, err
	}
	return parseSigDictWithSpans(lex)
}

func decodeHexString(o Object) ([]byte, error) {
	if o.Kind != String {
		return nil, newErr(KindPDFContent, "expected a hex string")
	}
	return []byte(o.String), nil
}

func parseCertEntry(src Source, xref *XrefTable, o Object) ([]Certificate, error) {
	o, err := dereference(src, xref, o)
	if err != nil {
		return nil, err
	}
	switch o.Kind {
	case String:
		return []Certificate{{DER: []byte(o.String)}}, nil
	case Array:
		var certs []Certificate
		for _, item := range o.Array {
			item, err := dereference(src, xref, item)
			if err != nil {
				return nil, err
			}
			if item.Kind != String {
				return nil, newErr(KindPDFContent, "invalid Cert array entry")
			}
			certs = append(certs, Certificate{DER: []byte(item.String)})
		}
		if len(certs) == 0 {
			return nil, newErr(KindPDFContent, "empty Cert array")
		}
		return certs, nil
	default:
		return nil, newErr(KindPDFContent, "invalid Cert value")
	}
}

func parseByteRangeEntry(src Source, xref *XrefTable, o Object) ([]BytePair, error) {
	o, err := dereference(src, xref, o)
	if err != nil {
		return nil, err
	}
	if o.Kind == Array && len(o.Array) == 0 {
		return nil, newErr(KindPDFMalformed, "empty ByteRange")
	}
	if o.Kind != Array || len(o.Array)%2 != 0 {
		return nil, newErr(KindPDFContent, "invalid ByteRange")
	}
	pairs := make([]BytePair, 0, len(o.Array)/2)
	for i := 0; i < len(o.Array); i += 2 {
		s, l := o.Array[i], o.Array[i+1]
		if !s.IsInteger() || !l.IsInteger() || s.Number < 0 || l.Number < 0 {
			return nil, newErr(KindPDFContent, "invalid ByteRange entry")
		}
		pairs = append(pairs, BytePair{Start: int64(s.Number), Length: int64(l.Number)})
	}
	return pairs, nil
}

// validateByteRange enforces: ascending, non-overlapping pairs within
// [0, size), with exactly one gap, which must equal the /Contents token
// span exactly (including its enclosing < >), and together they must
// cover [0, size) in full.
func validateByteRange(pairs []BytePair, size, contentsStart, contentsEnd int64) error {
	if len(pairs) == 0 {
		return newErr(KindPDFMalformed, "empty ByteRange")
	}

	var cursor int64
	gapFound := false
	for _, p := range pairs {
		if p.Length <= 0 || p.Start < 0 || p.Start+p.Length > size {
			return newErr(KindPDFMalformed, "ByteRange entry out of bounds")
		}
		if p.Start < cursor {
			return newErr(KindPDFMalformed, "ByteRange entries overlap or are out of order")
		}
		if p.Start > cursor {
			if gapFound || p.Start != contentsEnd || cursor != contentsStart {
				return newErr(KindPDFMalformed, "ByteRange gap does not match Contents placeholder")
			}
			gapFound = true
		}
		cursor = p.Start + p.Length
	}
	if cursor < size {
		if gapFound || size != contentsEnd || cursor != contentsStart {
			return newErr(KindPDFMalformed, "ByteRange gap does not match Contents placeholder")
		}
		gapFound = true
	}
	if !gapFound {
		return newErr(KindPDFMalformed, "ByteRange does not exclude Contents")
	}
	return nil
}

// extractSignature parses the signature dictionary (n, gen) into a
// Signature record and validates its ByteRange against the source size.
func extractSignature(src Source, xref *XrefTable, n, gen uint) (Signature, error) {
	entries, err := getSignatureDict(src, xref, n, gen)
	if err != nil {
		return Signature{}, err
	}

	var sig Signature
	if sf, ok := entries["SubFilter"]; ok && sf.value.Kind == Name {
		sig.SubfilterRaw = sf.value.String
		if sf.value.String == subfilterAdbeX509RSASHA1Name {
			sig.Subfilter = SubfilterAdbeX509RSASHA1
		} else {
			sig.Subfilter = SubfilterUnknown
		}
	} else {
		return Signature{}, newErr(KindPDFContent, "signature dictionary missing SubFilter")
	}

	contents, ok := entries["Contents"]
	if !ok {
		return Signature{}, newErr(KindPDFContent, "signature dictionary missing Contents")
	}
	der, err := decodeHexString(contents.value)
	if err != nil {
		return Signature{}, err
	}
	if len(der) == 0 {
		return Signature{}, newErr(KindPDFMalformed, "empty Contents")
	}
	sig.ContentsDER = der
	sig.contentsSpan = [2]int64{contents.start, contents.end}

	certsEntry, ok := entries["Cert"]
	if ok {
		certs, err := parseCertEntry(src, xref, certsEntry.value)
		if err != nil {
			return Signature{}, err
		}
		sig.Certificates = certs
	}

	brEntry, ok := entries["ByteRange"]
	if !ok {
		return Signature{}, newErr(KindPDFContent, "signature dictionary missing ByteRange")
	}
	pairs, err := parseByteRangeEntry(src, xref, brEntry.value)
	if err != nil {
		return Signature{}, err
	}
	sig.ByteRange = pairs

	if err := validateByteRange(pairs, src.Size(),
		sig.contentsSpan[0], sig.contentsSpan[1]); err != nil {
		return Signature{}, err
	}

	return sig, nil
}
