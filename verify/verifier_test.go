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

package verify

import (
	"context"
	"crypto/x509"
	"testing"

	"github.com/pjanx/pdfsigil/internal/fixture"
	"github.com/pjanx/pdfsigil/pdfsig"
)

func parsedRSAFixture(t *testing.T) (*pdfsig.Document, *x509.Certificate) {
	t.Helper()
	key, cert, err := fixture.GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	data, err := fixture.NewRSASHA1Fixture(key, cert)
	if err != nil {
		t.Fatalf("NewRSASHA1Fixture: %v", err)
	}
	doc := pdfsig.OpenDocumentBytes(data, pdfsig.ResolveOptions{})
	if err := doc.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc, cert
}

func trustPool(cert *x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(cert)
	return pool
}

func TestVerifySucceeds(t *testing.T) {
	doc, cert := parsedRSAFixture(t)
	result, err := Verify(context.Background(), doc, trustPool(cert), DefaultCrypto{})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Verified || !result.DigestMatch || !result.ChainValid {
		t.Fatalf("got %+v, want fully verified", result)
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	doc, cert := parsedRSAFixture(t)
	pool := trustPool(cert)
	first, err1 := Verify(context.Background(), doc, pool, DefaultCrypto{})
	second, err2 := Verify(context.Background(), doc, pool, DefaultCrypto{})
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if first.DigestMatch != second.DigestMatch || first.ChainValid != second.ChainValid ||
		first.Verified != second.Verified || !first.Signer.Equal(second.Signer) {
		t.Fatalf("got differing results across repeated Verify calls: %+v vs %+v", first, second)
	}
}

func TestVerifyDetectsDigestMismatch(t *testing.T) {
	key, cert, err := fixture.GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	data, err := fixture.NewRSASHA1Fixture(key, cert)
	if err != nil {
		t.Fatalf("NewRSASHA1Fixture: %v", err)
	}

	// Flip a byte inside the header's binary comment line (before any
	// object): the lexer ignores comment bytes entirely, so the document
	// still parses, but the recomputed digest no longer matches the
	// signature.
	tampered := append([]byte(nil), data...)
	tampered[10] ^= 0xff

	doc := pdfsig.OpenDocumentBytes(tampered, pdfsig.ResolveOptions{})
	if err := doc.Parse(); err != nil {
		t.Fatalf("Parse of tampered fixture: %v", err)
	}
	result, err := Verify(context.Background(), doc, trustPool(cert), DefaultCrypto{})
	if err == nil {
		t.Fatal("expected Verify to report a failure for a tampered document")
	}
	if result.DigestMatch {
		t.Fatal("expected DigestMatch to be false for a tampered document")
	}
}

func TestVerifyRejectsUntrustedChain(t *testing.T) {
	doc, _ := parsedRSAFixture(t)
	otherKey, otherCert, err := fixture.GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	_ = otherKey
	result, err := Verify(context.Background(), doc, trustPool(otherCert), DefaultCrypto{})
	if err == nil {
		t.Fatal("expected Verify to report a failure for an untrusted chain")
	}
	if result.ChainValid {
		t.Fatal("expected ChainValid to be false when the signer isn't in the trust store")
	}
	if !result.DigestMatch {
		t.Fatal("expected DigestMatch to remain true -- only the chain is untrusted")
	}
}

func TestVerifyRejectsUnsupportedSubfilter(t *testing.T) {
	key, cert, err := fixture.GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	data, err := fixture.NewPKCS7DetachedFixture(key, cert)
	if err != nil {
		t.Fatalf("NewPKCS7DetachedFixture: %v", err)
	}

	doc := pdfsig.OpenDocumentBytes(data, pdfsig.ResolveOptions{})
	if err := doc.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Verify(context.Background(), doc, trustPool(cert), DefaultCrypto{})
	if err == nil {
		t.Fatal("expected Verify to reject a pkcs7-detached signature")
	}
	perr, ok := err.(*pdfsig.Error)
	if !ok || perr.Kind != pdfsig.KindUnsupported {
		t.Fatalf("got %v, want KindUnsupported", err)
	}
}

func TestVerifyRequiresParsedDocument(t *testing.T) {
	doc := pdfsig.OpenDocumentBytes([]byte("%PDF-1.4\n"), pdfsig.ResolveOptions{})
	_, err := Verify(context.Background(), doc, x509.NewCertPool(), DefaultCrypto{})
	if err == nil {
		t.Fatal("expected Verify to reject an unparsed document")
	}
	perr, ok := err.(*pdfsig.Error)
	if !ok || perr.Kind != pdfsig.KindBadParameter {
		t.Fatalf("got %v, want KindBadParameter", err)
	}
}

func TestVerifyRespectsCancelledContext(t *testing.T) {
	doc, cert := parsedRSAFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Verify(ctx, doc, trustPool(cert), DefaultCrypto{})
	if err == nil {
		t.Fatal("expected Verify to fail on an already-cancelled context")
	}
}
