package udmf

import "fmt"

// Value is a single UDMF scalar, kept as both its original source text
// and token kind so callers can distinguish a quoted "123" from a bare
// number 123 without reparsing.
type Value struct {
	Raw      string
	IsString bool
}

// Bool reports the value interpreted as a UDMF boolean keyword.
func (v Value) Bool() bool { return v.Raw == "true" }

// Block is one brace-delimited record, e.g. "linedef { v1=0; v2=1; }".
type Block struct {
	Type   string
	Line   int
	Fields map[string]Value
}

// Document is a fully parsed TEXTMAP: top-level "namespace = ...;"
// assignments plus the ordered list of thing/vertex/linedef/sidedef/
// sector blocks.
type Document struct {
	Global map[string]Value
	Blocks []Block
}

// Parse tokenizes and parses a TEXTMAP lump body.
func Parse(data []byte) (*Document, error) {
	lx := newLexer(string(data))
	doc := &Document{Global: map[string]Value{}}

	tok, err := lx.next()
	if err != nil {
		return nil, err
	}
	for tok.kind != tokEOF {
		if tok.kind != tokIdent {
			return nil, fmt.Errorf("udmf: expected identifier at line %d, got %q", tok.line, tok.text)
		}
		name := tok.text
		lineNo := tok.line

		tok, err = lx.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokEquals:
			val, nextTok, err := parseAssignment(lx)
			if err != nil {
				return nil, err
			}
			doc.Global[name] = val
			tok = nextTok

		case tokLBrace:
			block, nextTok, err := parseBlock(lx, name, lineNo)
			if err != nil {
				return nil, err
			}
			doc.Blocks = append(doc.Blocks, block)
			tok = nextTok

		default:
			return nil, fmt.Errorf("udmf: expected '=' or '{' after %q at line %d", name, tok.line)
		}
	}

	return doc, nil
}

// parseAssignment consumes "value ;" and returns the following token.
func parseAssignment(lx *lexer) (Value, token, error) {
	tok, err := lx.next()
	if err != nil {
		return Value{}, token{}, err
	}
	if tok.kind != tokNumber && tok.kind != tokString && tok.kind != tokIdent {
		return Value{}, token{}, fmt.Errorf("udmf: expected value at line %d", tok.line)
	}
	val := Value{Raw: tok.text, IsString: tok.kind == tokString}

	semi, err := lx.next()
	if err != nil {
		return Value{}, token{}, err
	}
	if semi.kind != tokSemi {
		return Value{}, token{}, fmt.Errorf("udmf: expected ';' at line %d", semi.line)
	}

	next, err := lx.next()
	return val, next, err
}

func parseBlock(lx *lexer, typ string, line int) (Block, token, error) {
	block := Block{Type: typ, Line: line, Fields: map[string]Value{}}

	tok, err := lx.next()
	if err != nil {
		return Block{}, token{}, err
	}
	for tok.kind != tokRBrace {
		if tok.kind != tokIdent {
			return Block{}, token{}, fmt.Errorf("udmf: expected field name inside %q block at line %d", typ, tok.line)
		}
		fieldName := tok.text

		eq, err := lx.next()
		if err != nil {
			return Block{}, token{}, err
		}
		if eq.kind != tokEquals {
			return Block{}, token{}, fmt.Errorf("udmf: expected '=' after field %q at line %d", fieldName, eq.line)
		}

		val, next, err := parseAssignment(lx)
		if err != nil {
			return Block{}, token{}, err
		}
		block.Fields[fieldName] = val
		tok = next
	}

	next, err := lx.next()
	return block, next, err
}
