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
	"io/ioutil"
	"os"
	"testing"

	"github.com/pjanx/pdfsigil/internal/fixture"
)

func mustRSAFixture(t *testing.T) []byte {
	t.Helper()
	key, cert, err := fixture.GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	doc, err := fixture.NewRSASHA1Fixture(key, cert)
	if err != nil {
		t.Fatalf("NewRSASHA1Fixture: %v", err)
	}
	return doc
}

func TestDocumentParseExtractsSignature(t *testing.T) {
	data := mustRSAFixture(t)
	doc := OpenDocumentBytes(data, ResolveOptions{})
	if err := doc.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.State() != StateParsed {
		t.Fatalf("got state %v, want StateParsed", doc.State())
	}
	if doc.Signature.Subfilter != SubfilterAdbeX509RSASHA1 {
		t.Fatalf("got subfilter %v, want SubfilterAdbeX509RSASHA1", doc.Signature.Subfilter)
	}
	if len(doc.Signature.Certificates) == 0 {
		t.Fatal("expected at least one certificate")
	}
	if len(doc.Signature.ByteRange) == 0 {
		t.Fatal("expected a non-empty ByteRange")
	}
	major, minor := doc.Version()
	if major != 1 || minor != 4 {
		t.Fatalf("got version %d.%d, want 1.4", major, minor)
	}
}

func TestDocumentParseIsSingleShot(t *testing.T) {
	data := mustRSAFixture(t)
	doc := OpenDocumentBytes(data, ResolveOptions{})
	if err := doc.Parse(); err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	if err := doc.Parse(); err == nil {
		t.Fatal("expected the second Parse call to fail")
	}
}

func TestDocumentFileAndBufferSourcesAgree(t *testing.T) {
	data := mustRSAFixture(t)

	memDoc := OpenDocumentBytes(data, ResolveOptions{})
	if err := memDoc.Parse(); err != nil {
		t.Fatalf("memory-backed Parse: %v", err)
	}

	f, err := ioutil.TempFile("", "pdfsigil-fixture-*.pdf")
	if err != nil {
		t.Fatalf("TempFile: %v", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	fileDoc, err := OpenDocument(f.Name(), ResolveOptions{})
	if err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}
	defer fileDoc.Close()
	if err := fileDoc.Parse(); err != nil {
		t.Fatalf("file-backed Parse: %v", err)
	}

	if memDoc.Signature.Subfilter != fileDoc.Signature.Subfilter {
		t.Fatal("subfilter differs between memory- and file-backed sources")
	}
	if string(memDoc.Signature.ContentsDER) != string(fileDoc.Signature.ContentsDER) {
		t.Fatal("Contents differs between memory- and file-backed sources")
	}
	if len(memDoc.Signature.ByteRange) != len(fileDoc.Signature.ByteRange) {
		t.Fatal("ByteRange differs between memory- and file-backed sources")
	}
}

func TestDocumentWithoutAcroFormHasNoSignature(t *testing.T) {
	b := fixture.NewBuilder("1.4")
	catalogN := b.Allocate()
	pagesN := b.Allocate()
	b.SetRoot(catalogN)
	b.WriteObject(pagesN, "<< /Type /Pages /Kids [] /Count 0 >>")
	b.WriteObject(catalogN, "<< /Type /Catalog /Pages "+itoa(int64(pagesN))+" 0 R >>")
	b.Flush()

	doc := OpenDocumentBytes(b.Bytes(), ResolveOptions{})
	err := doc.Parse()
	if err == nil {
		t.Fatal("expected failure for a document without an AcroForm")
	}
	if doc.FailKind() != KindNoSignature {
		t.Fatalf("got %v, want KindNoSignature", doc.FailKind())
	}
}
