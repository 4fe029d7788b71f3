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

// Package verify computes and checks the cryptographic half of PDF
// signature verification: streaming the signed byte ranges through a
// digest, checking the embedded signature against it, and validating the
// certificate chain. The actual primitives are abstracted behind Crypto so
// callers can substitute a different trust policy or a hardware-backed
// implementation.
package verify

import (
	"crypto/x509"
	"hash"
)

// Crypto is the external collaborator that performs the PDF verifier's
// actual cryptography: hashing, RSA signature verification, certificate
// parsing, and chain validation. DefaultCrypto implements it with the
// standard library.
type Crypto interface {
	// NewSHA1 returns a fresh SHA-1 hash.Hash, used to stream the signed
	// byte ranges through without buffering them in full.
	NewSHA1() hash.Hash

	// VerifyRSASHA1 checks that sig is a valid raw PKCS#1 v1.5 RSA
	// signature over digest (a SHA-1 sum), using cert's public key.
	// This is the adbe.x509.rsa_sha1 scheme: a bare signature, not a
	// PKCS#7/CMS envelope.
	VerifyRSASHA1(cert *x509.Certificate, digest, sig []byte) error

	// ParseCertificate decodes a DER-encoded X.509 certificate.
	ParseCertificate(der []byte) (*x509.Certificate, error)

	// VerifyChain validates that leaf chains, through intermediates, to
	// one of the trust anchors in roots.
	VerifyChain(leaf *x509.Certificate, intermediates []*x509.Certificate, roots *x509.CertPool) error
}
