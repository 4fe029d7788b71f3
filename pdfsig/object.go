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

import "math"

// ObjectKind discriminates the value held by an Object.
type ObjectKind int

const (
	End ObjectKind = iota
	NL
	Comment
	Nil
	Bool
	Numeric
	Keyword
	Name
	String

	// simple tokens
	BArray
	EArray
	BDict
	EDict

	// higher-level objects
	Array
	Dict
	Reference
)

// Object is a PDF token or composite object. Kept close to how the reader
// sees PDF syntax: most values are either one token or a short sequence of
// tokens assembled by the parser in tokens.go.
type Object struct {
	Kind ObjectKind

	String        string            // Comment/Keyword/Name/String
	Number        float64           // Bool, Numeric
	Array         []Object          // Array
	Dict          map[string]Object // Dict
	N, Generation uint              // Reference
}

// IsInteger reports whether the object is a whole number.
func (o *Object) IsInteger() bool {
	_, f := math.Modf(o.Number)
	return o.Kind == Numeric && f == 0
}

// IsUint reports whether the object is an integer that fits into a uint.
func (o *Object) IsUint() bool {
	return o.IsInteger() && o.Number >= 0 && o.Number <= float64(^uint(0))
}

func newObj(kind ObjectKind) Object { return Object{Kind: kind} }

func newComment(c string) Object { return Object{Kind: Comment, String: c} }
func newKeyword(k string) Object { return Object{Kind: Keyword, String: k} }

func newBool(b bool) Object {
	var b64 float64
	if b {
		b64 = 1
	}
	return Object{Kind: Bool, Number: b64}
}

func newNumeric(n float64) Object { return Object{Kind: Numeric, Number: n} }
func newName(n string) Object     { return Object{Kind: Name, String: n} }
func newString(s string) Object   { return Object{Kind: String, String: s} }

func newArray(a []Object) Object { return Object{Kind: Array, Array: a} }

func newDict(d map[string]Object) Object {
	if d == nil {
		d = make(map[string]Object)
	}
	return Object{Kind: Dict, Dict: d}
}

func newReference(n, generation uint) Object {
	return Object{Kind: Reference, N: n, Generation: generation}
}
