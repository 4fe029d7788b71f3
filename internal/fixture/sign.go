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
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"go.mozilla.org/pkcs7"
)

// GenerateKeyAndCert creates a throwaway self-signed RSA certificate and
// key for use as a fixture's signing identity.
func GenerateKeyAndCert() (*rsa.PrivateKey, *x509.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "pdfsigil fixture signer"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageContentCommitment,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, err
	}
	return key, cert, nil
}

// baseDocument lays down a minimal one-page document plus a signature
// field that an object in the next revision will fill in, and returns the
// object numbers the caller needs to finish the signature.
func baseDocument() (b *Builder, sigDictN, sigFieldN uint) {
	b = NewBuilder("1.4")
	catalogN := b.Allocate()
	pagesN := b.Allocate()
	pageN := b.Allocate()
	sigFieldN = b.Allocate()
	b.SetRoot(catalogN)

	b.WriteObject(pageN, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
		pagesN))
	b.WriteObject(pagesN, fmt.Sprintf(
		"<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", pageN))
	b.WriteObject(catalogN, fmt.Sprintf(
		"<< /Type /Catalog /Pages %d 0 R /AcroForm"+
			" << /Fields [%d 0 R] /SigFlags 3 >> >>", pagesN, sigFieldN))
	b.Flush()

	sigDictN = b.Allocate()
	b.WriteObject(sigFieldN, fmt.Sprintf(
		"<< /FT /Sig /Type /Annot /Subtype /Widget /Rect [0 0 0 0] /F 2"+
			" /T (Signature1) /V %d 0 R >>", sigDictN))
	return b, sigDictN, sigFieldN
}

// NewRSASHA1Fixture builds a document whose signature uses the supported
// adbe.x509.rsa_sha1 SubFilter: a raw PKCS#1 v1.5 RSA signature over the
// SHA-1 digest of the signed byte ranges, not a PKCS#7 envelope.
func NewRSASHA1Fixture(key *rsa.PrivateKey, cert *x509.Certificate) ([]byte, error) {
	b, sigDictN, _ := baseDocument()

	certHex := hex.EncodeToString(cert.Raw)
	sigBytes := key.Size()
	contentsHexLen := sigBytes * 2

	header := fmt.Sprintf("%d 0 obj\n", sigDictN)
	objStart := b.Len() + int64(len(header))

	pre := fmt.Sprintf(
		"<< /Type /Sig /Filter /Adobe.PPKLite /SubFilter /adbe.x509.rsa_sha1"+
			" /Cert <%s> /ByteRange ", certHex)
	byteRangeOff := objStart + int64(len(pre))
	byteRangeField := bytes.Repeat([]byte{' '}, 40)

	mid := " /Contents <"
	contentsHexOff := byteRangeOff + int64(len(byteRangeField)) + int64(len(mid))
	contentsField := bytes.Repeat([]byte{'0'}, contentsHexLen)

	body := pre + string(byteRangeField) + mid + string(contentsField) + "> >>"
	b.WriteObject(sigDictN, body)
	b.Flush()

	total := int64(len(b.Bytes()))
	contentsStart := contentsHexOff - 1                            // the '<'
	contentsEnd := contentsHexOff + int64(contentsHexLen) + 1       // past the '>'
	rangeText := fmt.Sprintf("[0 %d %d %d]", contentsStart, contentsEnd, total-contentsEnd)
	if int64(len(rangeText)) > int64(len(byteRangeField)) {
		return nil, fmt.Errorf("reserved ByteRange window too small: need %d, have %d",
			len(rangeText), len(byteRangeField))
	}
	b.Overwrite(byteRangeOff, []byte(rangeText))

	doc := b.Bytes()
	h := sha1.New()
	h.Write(doc[:contentsStart])
	h.Write(doc[contentsEnd:])
	digest := h.Sum(nil)

	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, digest)
	if err != nil {
		return nil, err
	}
	if len(sig) != sigBytes {
		return nil, fmt.Errorf("unexpected signature length: got %d want %d",
			len(sig), sigBytes)
	}
	hexSig := make([]byte, contentsHexLen)
	hex.Encode(hexSig, sig)
	b.Overwrite(contentsHexOff, hexSig)

	return append([]byte(nil), b.Bytes()...), nil
}

// NewPKCS7DetachedFixture builds a document signed with the
// adbe.pkcs7.detached SubFilter -- a real CMS/PKCS#7 SignedData envelope,
// built with go.mozilla.org/pkcs7 exactly as the teacher implementation's
// FillInSignature did. The verifier recognizes this SubFilter and must
// report it Unsupported rather than attempt to parse the envelope.
func NewPKCS7DetachedFixture(key *rsa.PrivateKey, cert *x509.Certificate) ([]byte, error) {
	b, sigDictN, _ := baseDocument()

	const reservation = 4096
	header := fmt.Sprintf("%d 0 obj\n", sigDictN)
	objStart := b.Len() + int64(len(header))

	pre := "<< /Type /Sig /Filter /Adobe.PPKLite" +
		" /SubFilter /adbe.pkcs7.detached /ByteRange "
	byteRangeOff := objStart + int64(len(pre))
	byteRangeField := bytes.Repeat([]byte{' '}, 40)

	mid := " /Contents <"
	contentsHexOff := byteRangeOff + int64(len(byteRangeField)) + int64(len(mid))
	contentsHexLen := reservation * 2
	contentsField := bytes.Repeat([]byte{'0'}, contentsHexLen)

	body := pre + string(byteRangeField) + mid + string(contentsField) + "> >>"
	b.WriteObject(sigDictN, body)
	b.Flush()

	total := int64(len(b.Bytes()))
	contentsStart := contentsHexOff - 1
	contentsEnd := contentsHexOff + int64(contentsHexLen) + 1
	rangeText := fmt.Sprintf("[0 %d %d %d]", contentsStart, contentsEnd, total-contentsEnd)
	if int64(len(rangeText)) > int64(len(byteRangeField)) {
		return nil, fmt.Errorf("reserved ByteRange window too small")
	}
	b.Overwrite(byteRangeOff, []byte(rangeText))

	doc := b.Bytes()
	signedContent := make([]byte, 0, int(contentsStart)+len(doc)-int(contentsEnd))
	signedContent = append(signedContent, doc[:contentsStart]...)
	signedContent = append(signedContent, doc[contentsEnd:]...)

	signedData, err := pkcs7.NewSignedData(signedContent)
	if err != nil {
		return nil, err
	}
	signedData.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := signedData.AddSignerChain(cert, key, nil, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, err
	}
	signedData.Detach()
	sig, err := signedData.Finish()
	if err != nil {
		return nil, err
	}
	if len(sig)*2 > contentsHexLen {
		return nil, fmt.Errorf("reservation too small for pkcs7 envelope: need %d nibbles, have %d",
			len(sig)*2, contentsHexLen)
	}

	hexSig := make([]byte, len(sig)*2)
	hex.Encode(hexSig, sig)
	padded := append(hexSig, bytes.Repeat([]byte{'0'}, contentsHexLen-len(hexSig))...)
	b.Overwrite(contentsHexOff, padded)

	return append([]byte(nil), b.Bytes()...), nil
}
