// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type (
	operator  string
	name      string
	delimiter string
)

// StreamText recovers the text shown by a decoded page content stream.
// Strings shown by Tj, TJ, ' and " are written in stream order; T*, Td,
// TD, Tm and ET start a new line. Kerning gaps of 250 thousandths of an em
// or more inside a TJ array become a space.
func StreamText(data []byte) string {
	s := &scanner{data: data}
	var out strings.Builder
	var operands []any

	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		op, isOp := tok.(operator)
		if !isOp {
			operands = append(operands, tok)
			continue
		}

		switch op {
		case "Tj":
			out.WriteString(lastString(operands))
		case "'", `"`:
			newline()
			out.WriteString(lastString(operands))
		case "TJ":
			if len(operands) > 0 {
				if arr, ok := operands[len(operands)-1].([]any); ok {
					for _, el := range arr {
						switch v := el.(type) {
						case string:
							out.WriteString(v)
						case float64:
							if v <= -250 {
								out.WriteByte(' ')
							}
						}
					}
				}
			}
		case "T*", "Td", "TD", "Tm", "ET":
			newline()
		case "ID":
			s.skipInlineImage()
		}
		operands = operands[:0]
	}

	return strings.TrimSpace(out.String())
}

func lastString(operands []any) string {
	if len(operands) == 0 {
		return ""
	}
	str, _ := operands[len(operands)-1].(string)
	return str
}

// maxArrayDepth bounds array nesting. Deeper '[' are returned as plain
// delimiter tokens so a hostile stream cannot exhaust the stack.
const maxArrayDepth = 64

type scanner struct {
	data  []byte
	pos   int
	depth int
}

func (s *scanner) next() (any, bool) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return nil, false
	}

	c := s.data[s.pos]
	switch c {
	case '(':
		return s.literal(), true
	case '<':
		if s.peek(1) == '<' {
			s.pos += 2
			return delimiter("<<"), true
		}
		return s.hexString(), true
	case '>':
		s.pos++
		if s.peek(0) == '>' {
			s.pos++
			return delimiter(">>"), true
		}
		return delimiter(">"), true
	case '[':
		s.pos++
		if s.depth >= maxArrayDepth {
			return delimiter("["), true
		}
		s.depth++
		defer func() { s.depth-- }()
		var arr []any
		for {
			tok, ok := s.next()
			if !ok {
				return arr, true
			}
			if d, isDelim := tok.(delimiter); isDelim && d == "]" {
				return arr, true
			}
			arr = append(arr, tok)
		}
	case ']', ')', '{', '}':
		s.pos++
		return delimiter(string(c)), true
	case '/':
		start := s.pos + 1
		s.pos++
		for s.pos < len(s.data) && isRegular(s.data[s.pos]) {
			s.pos++
		}
		return name(s.data[start:s.pos]), true
	}

	start := s.pos
	for s.pos < len(s.data) && isRegular(s.data[s.pos]) {
		s.pos++
	}
	word := string(s.data[start:s.pos])
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return f, true
	}
	return operator(word), true
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.data) {
		return s.data[s.pos+off]
	}
	return 0
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		s.pos++
	}
}

// literal reads a (string) with balanced parentheses and escapes.
func (s *scanner) literal() string {
	s.pos++
	depth := 1
	var b []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.data) {
				return decodeString(b)
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r':
				if s.peek(0) == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && s.peek(0) >= '0' && s.peek(0) <= '7'; i++ {
						val = val*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					b = append(b, byte(val))
				} else {
					b = append(b, e)
				}
			}
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeString(b)
			}
			b = append(b, c)
		default:
			b = append(b, c)
		}
	}
	return decodeString(b)
}

// hexString reads a <hex string>. A missing final digit counts as 0.
func (s *scanner) hexString() string {
	s.pos++
	var digits []byte
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		if c := s.data[s.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	s.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	b, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return decodeString(b)
}

// skipInlineImage moves past the binary data of an inline image (BI ... ID
// <data> EI).
func (s *scanner) skipInlineImage() {
	for i := s.pos; i+1 < len(s.data); i++ {
		if s.data[i] != 'E' || s.data[i+1] != 'I' {
			continue
		}
		if (i == 0 || isSpace(s.data[i-1])) && (i+2 >= len(s.data) || isSpace(s.data[i+2])) {
			s.pos = i + 2
			return
		}
	}
	s.pos = len(s.data)
}

// decodeString converts PDF string bytes to UTF-8: UTF-16BE when the bytes
// start with a byte order mark, Windows-1252 otherwise.
func decodeString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isRegular(c byte) bool {
	if isSpace(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
