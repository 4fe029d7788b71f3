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

package fixture

import (
	"bytes"
	"testing"
)

func TestNewRSASHA1FixtureIsSelfConsistent(t *testing.T) {
	key, cert, err := GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	doc, err := NewRSASHA1Fixture(key, cert)
	if err != nil {
		t.Fatalf("NewRSASHA1Fixture: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-1.4\n")) {
		t.Fatal("missing PDF header")
	}
	if !bytes.Contains(doc, []byte("/adbe.x509.rsa_sha1")) {
		t.Fatal("missing SubFilter")
	}
	if bytes.Contains(doc, []byte("/Contents <00000")) {
		t.Fatal("Contents placeholder was not overwritten with the signature")
	}
}

func TestNewPKCS7DetachedFixtureIsSelfConsistent(t *testing.T) {
	key, cert, err := GenerateKeyAndCert()
	if err != nil {
		t.Fatalf("GenerateKeyAndCert: %v", err)
	}
	doc, err := NewPKCS7DetachedFixture(key, cert)
	if err != nil {
		t.Fatalf("NewPKCS7DetachedFixture: %v", err)
	}
	if !bytes.Contains(doc, []byte("/adbe.pkcs7.detached")) {
		t.Fatal("missing SubFilter")
	}
}
