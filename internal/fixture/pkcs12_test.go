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

import "testing"

func TestParsePKCS12RejectsGarbage(t *testing.T) {
	if _, _, err := ParsePKCS12([]byte("not a pkcs12 container"), "pass"); err == nil {
		t.Fatal("expected an error for a garbage PKCS#12 container")
	}
}

func TestParsePKCS12RejectsEmptyInput(t *testing.T) {
	if _, _, err := ParsePKCS12(nil, ""); err == nil {
		t.Fatal("expected an error for empty input")
	}
}
