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

// parseInto parses a single PDF value (number, name, string, array, dict,
// or indirect reference) starting at the lexer's current position. stack
// accumulates sibling array/dict elements so that a trailing "R" keyword
// can look back two slots to assemble an indirect Reference -- the same
// trick the original monolithic parser used to fold a flat token stream
// into composite objects without a separate grammar for references.
func parseInto(lex *Lexer, stack *[]Object) (Object, error) {
	tok, err := lex.Next()
	if err != nil {
		return tok, err
	}
	switch tok.Kind {
	case NL, Comment:
		return parseInto(lex, stack)
	case BArray:
		var arr []Object
		for {
			v, err := parseInto(lex, &arr)
			if err != nil {
				return v, err
			}
			if v.Kind == End {
				return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "array doesn't end")
			}
			if v.Kind == EArray {
				break
			}
			arr = append(arr, v)
		}
		return newArray(arr), nil
	case BDict:
		var flat []Object
		for {
			v, err := parseInto(lex, &flat)
			if err != nil {
				return v, err
			}
			if v.Kind == End {
				return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "dictionary doesn't end")
			}
			if v.Kind == EDict {
				break
			}
			flat = append(flat, v)
		}
		if len(flat)%2 != 0 {
			return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "unbalanced dictionary")
		}
		dict := make(map[string]Object, len(flat)/2)
		for i := 0; i < len(flat); i += 2 {
			if flat[i].Kind != Name {
				return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "invalid dictionary key type")
			}
			dict[flat[i].String] = flat[i+1]
		}
		return newDict(dict), nil
	case Keyword:
		if tok.String == "R" {
			n := len(*stack)
			if n < 2 {
				return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "missing reference ID pair")
			}
			a, b := (*stack)[n-2], (*stack)[n-1]
			*stack = (*stack)[:n-2]
			if !a.IsUint() || !b.IsUint() {
				return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "invalid reference ID pair")
			}
			return newReference(uint(a.Number), uint(b.Number)), nil
		}
		return tok, nil
	default:
		return tok, nil
	}
}

// parseObjectBody parses the single value inside an "N G obj ... endobj"
// envelope. The caller must have already consumed the "N G obj" header.
func parseObjectBody(lex *Lexer) (Object, error) {
	var stack []Object
	value, err := parseInto(lex, &stack)
	if err != nil {
		return value, err
	}
	if value.Kind == End {
		return value, newErrAt(KindPDFMalformed, lex.pos(), "empty indirect object")
	}

	end, err := parseInto(lex, &stack)
	if err != nil {
		return end, err
	}
	switch {
	case end.Kind == Keyword && end.String == "endobj":
		return value, nil
	case end.Kind == Keyword && end.String == "stream":
		return value, newErrAt(KindUnsupported, lex.pos(), "stream object")
	default:
		return newObj(End), newErrAt(KindPDFMalformed, lex.pos(), "object not terminated by endobj")
	}
}

// parseTwoUints reads "a b" as a pair of unsigned integers, used for xref
// subsection headers ("first count") and object headers ("N G").
func parseTwoUints(lex *Lexer) (uint, uint, error) {
	var stack []Object
	a, err := parseInto(lex, &stack)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseInto(lex, &stack)
	if err != nil {
		return 0, 0, err
	}
	if !a.IsUint() || !b.IsUint() {
		return 0, 0, newErrAt(KindPDFMalformed, lex.pos(), "expected two integers")
	}
	return uint(a.Number), uint(b.Number), nil
}

// expectKeyword parses a token and requires it to be the given keyword.
func expectKeyword(lex *Lexer, word string) error {
	var stack []Object
	tok, err := parseInto(lex, &stack)
	if err != nil {
		return err
	}
	if tok.Kind != Keyword || tok.String != word {
		return newErrAt(KindPDFMalformed, lex.pos(), "expected keyword "+word)
	}
	return nil
}
