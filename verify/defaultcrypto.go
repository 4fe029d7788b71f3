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
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"hash"
)

// DefaultCrypto implements Crypto with the standard library's crypto/x509
// and crypto/rsa packages, the same primitives digitorus-pdfsign and
// gopdfsuit both fall back to underneath their higher-level signature
// handling.
type DefaultCrypto struct{}

func (DefaultCrypto) NewSHA1() hash.Hash { return sha1.New() }

func (DefaultCrypto) VerifyRSASHA1(cert *x509.Certificate, digest, sig []byte) error {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return errNotRSA
	}
	return rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest, sig)
}

func (DefaultCrypto) ParseCertificate(der []byte) (*x509.Certificate, error) {
	return x509.ParseCertificate(der)
}

func (DefaultCrypto) VerifyChain(
	leaf *x509.Certificate, intermediates []*x509.Certificate, roots *x509.CertPool,
) error {
	pool := x509.NewCertPool()
	for _, c := range intermediates {
		pool.AddCert(c)
	}
	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: pool,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	return err
}

var errNotRSA = rsaKeyTypeError{}

type rsaKeyTypeError struct{}

func (rsaKeyTypeError) Error() string {
	return "certificate's public key is not RSA"
}
