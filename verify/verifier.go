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
	"io"

	"github.com/pjanx/pdfsigil/pdfsig"
)

// Result is the outcome of Verify.
type Result struct {
	Signer      *x509.Certificate
	DigestMatch bool
	ChainValid  bool
	Verified    bool
}

// Verify recomputes the digest over doc's signed byte ranges, checks it
// against the embedded signature, and validates the signing certificate's
// chain against roots. doc must already be Parsed.
//
// ctx is checked between ByteRange pairs, the only points where Verify
// blocks on I/O for any meaningful stretch.
func Verify(
	ctx context.Context, doc *pdfsig.Document, roots *x509.CertPool, crypt Crypto,
) (Result, error) {
	if doc.State() != pdfsig.StateParsed {
		return Result{}, &pdfsig.Error{Kind: pdfsig.KindBadParameter, Offset: -1,
			Token: "document has not been parsed"}
	}
	sig := doc.Signature
	if sig.Subfilter != pdfsig.SubfilterAdbeX509RSASHA1 {
		return Result{}, &pdfsig.Error{Kind: pdfsig.KindUnsupported, Offset: -1,
			Token: "SubFilter " + sig.SubfilterRaw}
	}
	if len(sig.Certificates) == 0 {
		return Result{}, &pdfsig.Error{Kind: pdfsig.KindPDFContent, Offset: -1,
			Token: "signature has no certificates"}
	}

	digest, err := digestByteRange(ctx, crypt, doc, sig.ByteRange)
	if err != nil {
		return Result{}, err
	}

	leaf, err := crypt.ParseCertificate(sig.Certificates[0].DER)
	if err != nil {
		return Result{}, &pdfsig.Error{Kind: pdfsig.KindCrypto, Offset: -1,
			Token: "signing certificate", Err: err}
	}
	intermediates := make([]*x509.Certificate, 0, len(sig.Certificates)-1)
	for _, c := range sig.Certificates[1:] {
		ic, err := crypt.ParseCertificate(c.DER)
		if err != nil {
			return Result{}, &pdfsig.Error{Kind: pdfsig.KindCrypto, Offset: -1,
				Token: "intermediate certificate", Err: err}
		}
		intermediates = append(intermediates, ic)
	}

	result := Result{Signer: leaf}
	result.DigestMatch = crypt.VerifyRSASHA1(leaf, digest, sig.ContentsDER) == nil
	result.ChainValid = crypt.VerifyChain(leaf, intermediates, roots) == nil
	result.Verified = result.DigestMatch && result.ChainValid

	if !result.Verified {
		return result, &pdfsig.Error{Kind: pdfsig.KindCrypto, Offset: -1,
			Token: "signature verification failed"}
	}
	return result, nil
}

// digestByteRange streams each signed span through a fresh SHA-1 hash
// without ever holding the whole signed region in memory at once.
func digestByteRange(
	ctx context.Context, crypt Crypto, doc *pdfsig.Document, byteRange []pdfsig.BytePair,
) ([]byte, error) {
	h := crypt.NewSHA1()
	src := doc.Source()
	for _, p := range byteRange {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if _, err := io.Copy(h, src.Reader(p.Start, p.Length)); err != nil {
			return nil, &pdfsig.Error{Kind: pdfsig.KindIO, Offset: p.Start, Err: err}
		}
	}
	return h.Sum(nil), nil
}
