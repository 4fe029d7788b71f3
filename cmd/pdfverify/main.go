//
// Copyright (c) 2018 - 2020, Přemysl Eric Janouch <p@janouch.name>
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

// pdfverify checks a PDF's adbe.x509.rsa_sha1 signature against a trust
// store of root certificates, reporting the outcome as an exit code:
//
//	0  signature verified
//	1  signature present but not verified (digest mismatch or untrusted chain)
//	2  document malformed, has no signature, or the signature uses an
//	   unsupported SubFilter
//	3  I/O or usage error
package main

import (
	"context"
	"crypto/x509"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pjanx/pdfsigil/pdfsig"
	"github.com/pjanx/pdfsigil/verify"
)

func die(status int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(status)
}

func usage() {
	die(3, "Usage: %s [-roots CAFILE] PDF-FILENAME", os.Args[0])
}

var rootsPath = flag.String(
	"roots", "", "PEM file of trusted root certificates "+
		"(defaults to the system trust store)")

func loadRoots(path string) (*x509.CertPool, error) {
	if path == "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return x509.NewCertPool(), nil
		}
		return pool, nil
	}
	pem, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%s: no certificates found", path)
	}
	return pool, nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	roots, err := loadRoots(*rootsPath)
	if err != nil {
		die(3, "%s", err)
	}

	doc, err := pdfsig.OpenDocument(flag.Arg(0), pdfsig.ResolveOptions{})
	if err != nil {
		die(3, "%s", err)
	}
	defer doc.Close()

	if err := doc.Parse(); err != nil {
		switch doc.FailKind() {
		case pdfsig.KindNoSignature, pdfsig.KindUnsupported,
			pdfsig.KindPDFMalformed, pdfsig.KindPDFContent:
			die(2, "%s", err)
		default:
			die(3, "%s", err)
		}
	}

	result, err := verify.Verify(context.Background(), doc, roots, verify.DefaultCrypto{})
	if err != nil {
		if perr, ok := err.(*pdfsig.Error); ok {
			switch perr.Kind {
			case pdfsig.KindUnsupported, pdfsig.KindPDFContent:
				die(2, "%s", err)
			case pdfsig.KindIO:
				die(3, "%s", err)
			}
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		die(1, "digest match: %v, chain valid: %v",
			result.DigestMatch, result.ChainValid)
	}

	fmt.Printf("signature verified, signer: %s\n", result.Signer.Subject)
	os.Exit(0)
}
