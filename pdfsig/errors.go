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

// Package pdfsig parses the object graph of a PDF file well enough to
// locate a digital signature and extract its certificate chain, Contents
// and ByteRange for a verifier, which recomputes the byte-range digest.
package pdfsig

import "fmt"

// Kind is a closed set of reasons verification can fail to complete.
type Kind int

const (
	// KindBadParameter indicates invalid arguments to an API call.
	KindBadParameter Kind = iota
	// KindIO indicates a failure of the underlying Source.
	KindIO
	// KindPDFMalformed indicates a structural violation of the file format.
	KindPDFMalformed
	// KindPDFContent indicates a well-formed but semantically invalid
	// document (missing required key, inconsistent ByteRange, etc.).
	KindPDFContent
	// KindNoSignature indicates a well-formed document without a
	// signature field.
	KindNoSignature
	// KindUnsupported indicates a recognized but unimplemented feature,
	// such as cross-reference streams or a signature SubFilter other
	// than adbe.x509.rsa_sha1.
	KindUnsupported
	// KindCrypto indicates a digest mismatch or certificate chain
	// validation failure.
	KindCrypto
	// KindAlloc indicates a memory allocation failure. No code path in
	// this module returns it.
	KindAlloc
)

func (k Kind) String() string {
	switch k {
	case KindBadParameter:
		return "bad parameter"
	case KindIO:
		return "i/o error"
	case KindPDFMalformed:
		return "malformed pdf"
	case KindPDFContent:
		return "invalid pdf content"
	case KindNoSignature:
		return "no signature"
	case KindUnsupported:
		return "unsupported"
	case KindCrypto:
		return "crypto failure"
	case KindAlloc:
		return "allocation failure"
	default:
		return "unknown"
	}
}

// Error carries a Kind plus diagnostic context about where parsing failed.
type Error struct {
	Kind   Kind
	Offset int64  // byte offset where the error was detected, or -1
	Token  string // offending token or field name, if any
	Err    error  // wrapped underlying error, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Token != "" {
		msg += ": " + e.Token
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (at offset %d)", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, token string) error {
	return &Error{Kind: kind, Offset: -1, Token: token}
}

func newErrAt(kind Kind, offset int64, token string) error {
	return &Error{Kind: kind, Offset: offset, Token: token}
}

func wrapErr(kind Kind, token string, err error) error {
	return &Error{Kind: kind, Offset: -1, Token: token, Err: err}
}
