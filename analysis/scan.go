package analysis

import "fmt"

// tokenKind classifies a scanned Quill token.
type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenKeyword
	tokenAttribute
	tokenString
	tokenNumber
	tokenLBrace
	tokenRBrace
	tokenPunct
)

type quillToken struct {
	kind tokenKind
	text string
	span Span
}

// declaration is an identifier introduced by a declaring keyword.
type declaration struct {
	name string
	kind string // the declaring keyword: contract, state, message, ...
	span Span
}

// quillScan is the result of a single pass over document text: the token
// stream, declarations found, and any lexical diagnostics.
type quillScan struct {
	tokens       []quillToken
	declarations []declaration
	diagnostics  []Diagnostic
}

func (s *quillScan) declarationFor(name string) (declaration, bool) {
	for _, d := range s.declarations {
		if d.name == name {
			return d, true
		}
	}
	return declaration{}, false
}

// scanQuill tokenizes text with byte-span tracking. It never fails: bytes it
// cannot classify become punct tokens, and lexical problems (unterminated
// strings, malformed attributes) become diagnostics.
func scanQuill(text string) *quillScan {
	scan := &quillScan{}
	i := 0

	for i < len(text) {
		b := text[i]
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			i++

		case b == '/' && i+1 < len(text) && text[i+1] == '/':
			// Line comment, skipped entirely.
			for i < len(text) && text[i] != '\n' {
				i++
			}

		case b == '{':
			scan.push(tokenLBrace, text, i, i+1)
			i++

		case b == '}':
			scan.push(tokenRBrace, text, i, i+1)
			i++

		case b == '"':
			start := i
			i++
			closed := false
			for i < len(text) {
				if text[i] == '\\' && i+1 < len(text) {
					i += 2
					continue
				}
				if text[i] == '"' {
					i++
					closed = true
					break
				}
				if text[i] == '\n' {
					break
				}
				i++
			}
			scan.push(tokenString, text, start, i)
			if !closed {
				scan.diagnostics = append(scan.diagnostics, Diagnostic{
					Span:     Span{Start: start, End: i},
					Severity: SeverityError,
					Message:  "unterminated string literal",
					Code:     codeUnterminatedString,
				})
			}

		case b == '#' && i+1 < len(text) && text[i+1] == '[':
			start := i
			i += 2
			for i < len(text) && text[i] != ']' && text[i] != '\n' {
				i++
			}
			if i < len(text) && text[i] == ']' {
				i++
				scan.push(tokenAttribute, text, start, i)
			} else {
				scan.push(tokenAttribute, text, start, i)
				scan.diagnostics = append(scan.diagnostics, Diagnostic{
					Span:     Span{Start: start, End: i},
					Severity: SeverityError,
					Message:  fmt.Sprintf("unclosed attribute %s", text[start:i]),
					Code:     codeUnclosedAttribute,
				})
			}

		case isIdentStartByte(b):
			start := i
			for i < len(text) && isIdentByte(text[i]) {
				i++
			}
			word := text[start:i]
			if _, isKeyword := keywordDocs[word]; isKeyword {
				scan.push(tokenKeyword, text, start, i)
			} else {
				scan.push(tokenIdent, text, start, i)
			}

		case b >= '0' && b <= '9':
			start := i
			for i < len(text) && (text[i] >= '0' && text[i] <= '9' || text[i] == '.' || text[i] == '_') {
				i++
			}
			scan.push(tokenNumber, text, start, i)

		default:
			scan.push(tokenPunct, text, i, i+1)
			i++
		}
	}

	scan.collectDeclarations()
	return scan
}

func (s *quillScan) push(kind tokenKind, text string, start, end int) {
	s.tokens = append(s.tokens, quillToken{
		kind: kind,
		text: text[start:end],
		span: Span{Start: start, End: end},
	})
}

// collectDeclarations records identifiers that directly follow a declaring
// keyword (contract Flip, state count, message transfer, ...).
func (s *quillScan) collectDeclarations() {
	for i := 0; i+1 < len(s.tokens); i++ {
		t := s.tokens[i]
		if t.kind != tokenKeyword {
			continue
		}
		kind, declares := declKeywords[t.text]
		if !declares {
			continue
		}
		next := s.tokens[i+1]
		if next.kind == tokenIdent {
			s.declarations = append(s.declarations, declaration{
				name: next.text,
				kind: kind,
				span: next.span,
			})
		}
	}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
