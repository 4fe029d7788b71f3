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

// State is the Document lifecycle stage.
//
//	SourceSet --Parse()--> Parsed
//	                 \---> Failed
//
// Transitions are one-way; to retry, open a fresh Document.
type State int

const (
	StateSourceSet State = iota
	StateParsed
	StateFailed
)

// Document is a single PDF under examination: its Source plus whatever the
// Walker has extracted so far. Not safe for concurrent use; independent
// Documents may be driven from separate goroutines freely.
type Document struct {
	src  Source
	opts ResolveOptions

	state    State
	failKind Kind

	Header Header
	xref   *XrefTable

	sigFieldRef Object
	sigDictRef  Object
	Signature   Signature
}

// NewDocument wraps an already-open Source. Most callers want OpenDocument
// or OpenDocumentBytes instead.
func NewDocument(src Source, opts ResolveOptions) *Document {
	return &Document{src: src, opts: opts.withDefaults(), state: StateSourceSet}
}

// OpenDocument opens path and wraps it in a fresh Document.
func OpenDocument(path string, opts ResolveOptions) (*Document, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewDocument(src, opts), nil
}

// OpenDocumentBytes wraps an in-memory buffer in a fresh Document.
func OpenDocumentBytes(data []byte, opts ResolveOptions) *Document {
	return NewDocument(OpenBytes(data), opts)
}

// State returns the document's current lifecycle stage.
func (d *Document) State() State { return d.state }

// FailKind returns the Kind of the error that made Parse fail. Valid only
// when State() == StateFailed.
func (d *Document) FailKind() Kind { return d.failKind }

// Source returns the underlying Source, for use by the verifier.
func (d *Document) Source() Source { return d.src }

// Close releases the underlying Source.
func (d *Document) Close() error { return d.src.Close() }

// Version returns the PDF version from the header comment.
func (d *Document) Version() (major, minor int) {
	return d.Header.Major, d.Header.Minor
}

// Parse runs the full Walker: header, cross-reference resolution, Catalog,
// AcroForm, signature field lookup, and signature dictionary extraction.
// It may be called exactly once per Document.
func (d *Document) Parse() error {
	if d.state != StateSourceSet {
		return newErr(KindBadParameter, "document is not in the SourceSet state")
	}
	if err := d.parse(); err != nil {
		d.state = StateFailed
		if e, ok := err.(*Error); ok {
			d.failKind = e.Kind
		} else {
			d.failKind = KindIO
		}
		return err
	}
	d.state = StateParsed
	return nil
}

func (d *Document) parse() error {
	header, err := scanHeader(d.src, d.opts.HeaderSearchOffset)
	if err != nil {
		return err
	}
	d.Header = header

	xref, rootRef, err := resolveXref(d.src, d.opts)
	if err != nil {
		return err
	}
	d.xref = xref

	catalog, err := dereferenceDict(d.src, xref, rootRef, "Root")
	if err != nil {
		return err
	}
	if t, ok := catalog.Dict["Type"]; ok && (t.Kind != Name || t.String != "Catalog") {
		return newErr(KindPDFContent, "Root is not a Catalog")
	}

	acroFormObj, ok := catalog.Dict["AcroForm"]
	if !ok {
		return newErr(KindNoSignature, "document has no AcroForm")
	}
	acroForm, err := dereferenceDict(d.src, xref, acroFormObj, "AcroForm")
	if err != nil {
		return err
	}

	var sigFlags uint
	if sf, ok := acroForm.Dict["SigFlags"]; ok && sf.IsUint() {
		sigFlags = uint(sf.Number)
	}
	if sigFlags&1 == 0 {
		return newErr(KindNoSignature, "AcroForm SigFlags does not indicate signatures")
	}

	fieldsObj, ok := acroForm.Dict["Fields"]
	if !ok {
		return newErr(KindNoSignature, "AcroForm has no Fields")
	}
	fields, err := dereference(d.src, xref, fieldsObj)
	if err != nil {
		return err
	}
	if fields.Kind != Array {
		return newErr(KindPDFContent, "AcroForm Fields is not an array")
	}

	found := false
	for _, ref := range fields.Array {
		field, err := dereferenceDict(d.src, xref, ref, "form field")
		if err != nil {
			return err
		}
		ft, ok := field.Dict["FT"]
		if !ok || ft.Kind != Name || ft.String != "Sig" {
			continue
		}
		v, ok := field.Dict["V"]
		if !ok || v.Kind != Reference {
			continue
		}
		d.sigFieldRef = ref
		d.sigDictRef = v
		found = true
		break
	}
	if !found {
		return newErr(KindNoSignature, "no populated signature field")
	}

	sig, err := extractSignature(d.src, xref, d.sigDictRef.N, d.sigDictRef.Generation)
	if err != nil {
		return err
	}
	d.Signature = sig
	return nil
}
