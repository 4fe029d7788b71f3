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
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"errors"

	"golang.org/x/crypto/pkcs12"
)

// ParsePKCS12 decodes a PKCS#12 container into a private key and its
// certificate chain (signing certificate first). Adapted from the teacher
// implementation's PKCS12Parse: golang.org/x/crypto/pkcs12's Decode does
// not support bundled intermediate certificates, so the PEM blocks are
// walked manually instead.
func ParsePKCS12(p12 []byte, password string) (crypto.PrivateKey, []*x509.Certificate, error) {
	blocks, err := pkcs12.ToPEM(p12, password)
	if err != nil {
		return nil, nil, err
	}

	var allKeyBlocks [][]byte
	var allCertBlocks [][]byte
	for _, b := range blocks {
		switch b.Type {
		case "PRIVATE KEY":
			allKeyBlocks = append(allKeyBlocks, b.Bytes)
		case "CERTIFICATE":
			allCertBlocks = append(allCertBlocks, b.Bytes)
		}
	}
	switch {
	case len(allKeyBlocks) == 0:
		return nil, nil, errors.New("missing private key")
	case len(allKeyBlocks) > 1:
		return nil, nil, errors.New("more than one private key")
	case len(allCertBlocks) == 0:
		return nil, nil, errors.New("missing certificate")
	}

	var key crypto.PrivateKey
	if key, err = x509.ParsePKCS1PrivateKey(allKeyBlocks[0]); err != nil {
		if key, err = x509.ParseECPrivateKey(allKeyBlocks[0]); err != nil {
			return nil, nil, errors.New("failed to parse private key")
		}
	}

	certs, err := x509.ParseCertificates(allCertBlocks[0])
	if err != nil {
		return nil, nil, err
	}
	if len(certs) != 1 {
		return nil, nil, errors.New("expected exactly one certificate in the first bag")
	}
	for _, cb := range allCertBlocks[1:] {
		more, err := x509.ParseCertificates(cb)
		if err != nil {
			return nil, nil, err
		}
		certs = append(certs, more...)
	}

	switch pub := certs[0].PublicKey.(type) {
	case *rsa.PublicKey:
		priv, ok := key.(*rsa.PrivateKey)
		if !ok || pub.N.Cmp(priv.N) != 0 {
			return nil, nil, errors.New("private key does not match public key")
		}
	case *ecdsa.PublicKey:
		priv, ok := key.(*ecdsa.PrivateKey)
		if !ok || pub.X.Cmp(priv.X) != 0 || pub.Y.Cmp(priv.Y) != 0 {
			return nil, nil, errors.New("private key does not match public key")
		}
	default:
		return nil, nil, errors.New("unknown public key algorithm")
	}
	return key, certs, nil
}
