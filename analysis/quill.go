package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/errors"
)

// QuillEngine is the built-in semantic engine for the Quill contract DSL.
// It is stateless: every call re-scans the snapshot it is given.
type QuillEngine struct {
	maxDiagnostics int // 0 = unlimited
	maxCompletions int // 0 = unlimited
}

// NewQuillEngine creates the engine. Limits of zero disable the caps.
func NewQuillEngine(maxDiagnostics, maxCompletions int) *QuillEngine {
	return &QuillEngine{
		maxDiagnostics: maxDiagnostics,
		maxCompletions: maxCompletions,
	}
}

var _ Engine = (*QuillEngine)(nil)

// keywordDocs maps Quill keywords to their hover documentation.
var keywordDocs = map[string]string{
	"contract":    "Declares a contract. Exactly one contract is allowed per file.",
	"state":       "Declares a persistent state field of the enclosing contract.",
	"message":     "Declares a callable message (external entry point).",
	"constructor": "Declares a contract constructor, run once at instantiation.",
	"event":       "Declares an event emitted by the contract.",
	"fn":          "Declares a private helper function.",
	"let":         "Binds a local value.",
	"emit":        "Emits a declared event.",
	"return":      "Returns a value from a message or function.",
	"pub":         "Marks a declaration as externally visible.",
	"true":        "Boolean literal.",
	"false":       "Boolean literal.",
}

// attributeDocs maps recognized #[...] attributes to their documentation.
var attributeDocs = map[string]string{
	"#[contract]":    "Marks the annotated block as the contract root.",
	"#[storage]":     "Marks a struct as the contract storage layout.",
	"#[message]":     "Exposes the annotated function as a callable message.",
	"#[constructor]": "Marks the annotated function as a constructor.",
	"#[event]":       "Marks the annotated struct as an event definition.",
	"#[topic]":       "Marks an event field as indexed.",
	"#[payable]":     "Allows the annotated message to receive value transfers.",
	"#[test]":        "Marks the annotated function as a unit test.",
}

// declKeywords are the keywords whose following identifier is a declaration.
var declKeywords = map[string]string{
	"contract":    "contract",
	"state":       "state",
	"message":     "message",
	"constructor": "constructor",
	"event":       "event",
	"fn":          "fn",
}

// Diagnostic codes reported by the engine.
const (
	codeUnclosedBrace      = "syntax/unclosed-brace"
	codeStrayBrace         = "syntax/stray-brace"
	codeUnterminatedString = "syntax/unterminated-string"
	codeUnknownAttribute   = "attr/unknown"
	codeUnclosedAttribute  = "attr/unclosed"
	codeDuplicateContract  = "contract/duplicate"
	codeMissingName        = "contract/missing-name"
)

// Analyze scans the document and returns the full diagnostic set, ordered by
// span start. Malformed source degrades to diagnostics, never to an error.
func (e *QuillEngine) Analyze(snap document.Snapshot, tok CancelToken) ([]Diagnostic, error) {
	if tok.Cancelled() {
		return nil, errors.Wrap(errors.ErrRequestCancelled, "analyze")
	}

	scan := scanQuill(snap.Text)

	if tok.Cancelled() {
		return nil, errors.Wrap(errors.ErrRequestCancelled, "analyze")
	}

	diags := append([]Diagnostic(nil), scan.diagnostics...)
	diags = append(diags, e.braceDiagnostics(scan)...)
	diags = append(diags, e.attributeDiagnostics(scan)...)
	diags = append(diags, e.contractDiagnostics(scan)...)

	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.Start < diags[j].Span.Start
	})
	if e.maxDiagnostics > 0 && len(diags) > e.maxDiagnostics {
		diags = diags[:e.maxDiagnostics]
	}
	return diags, nil
}

// Complete returns keyword, attribute, and declaration candidates matching
// the identifier prefix ending at offset.
func (e *QuillEngine) Complete(snap document.Snapshot, offset int, tok CancelToken) ([]Candidate, error) {
	if tok.Cancelled() {
		return nil, errors.Wrap(errors.ErrRequestCancelled, "complete")
	}

	prefix := completionPrefix(snap.Text, offset)
	scan := scanQuill(snap.Text)

	if tok.Cancelled() {
		return nil, errors.Wrap(errors.ErrRequestCancelled, "complete")
	}

	var items []Candidate
	for word, doc := range keywordDocs {
		if strings.HasPrefix(word, prefix) {
			items = append(items, Candidate{
				Label:         word,
				Kind:          CandidateKeyword,
				Detail:        "keyword",
				Documentation: doc,
				InsertText:    word,
				SortText:      "0" + word,
			})
		}
	}
	for attr, doc := range attributeDocs {
		if prefix != "" && strings.HasPrefix(attr, prefix) {
			items = append(items, Candidate{
				Label:         attr,
				Kind:          CandidateAttribute,
				Detail:        "attribute",
				Documentation: doc,
				InsertText:    attr,
				SortText:      "1" + attr,
			})
		}
	}
	for _, decl := range scan.declarations {
		if strings.HasPrefix(decl.name, prefix) && decl.name != prefix {
			items = append(items, Candidate{
				Label:      decl.name,
				Kind:       CandidateDeclaration,
				Detail:     decl.kind,
				InsertText: decl.name,
				SortText:   "2" + decl.name,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].SortText < items[j].SortText })
	if e.maxCompletions > 0 && len(items) > e.maxCompletions {
		items = items[:e.maxCompletions]
	}
	return items, nil
}

// Hover returns documentation for the keyword, attribute, or declared
// identifier at offset. Whitespace and unknown identifiers yield nil.
func (e *QuillEngine) Hover(snap document.Snapshot, offset int) (*HoverContent, error) {
	scan := scanQuill(snap.Text)

	for _, t := range scan.tokens {
		if !t.span.Contains(offset) {
			continue
		}
		switch t.kind {
		case tokenKeyword:
			if doc, ok := keywordDocs[t.text]; ok {
				return &HoverContent{
					Markdown: fmt.Sprintf("```quill\n%s\n```\n\n%s", t.text, doc),
					Span:     t.span,
				}, nil
			}
		case tokenAttribute:
			if doc, ok := attributeDocs[t.text]; ok {
				return &HoverContent{
					Markdown: fmt.Sprintf("```quill\n%s\n```\n\n%s", t.text, doc),
					Span:     t.span,
				}, nil
			}
		case tokenIdent:
			if decl, ok := scan.declarationFor(t.text); ok {
				return &HoverContent{
					Markdown: fmt.Sprintf("```quill\n%s %s\n```\n\nDeclared in this document.", decl.kind, decl.name),
					Span:     t.span,
				}, nil
			}
		}
		return nil, nil
	}
	return nil, nil
}

// CodeActions returns quickfixes for diagnostics overlapping the span.
func (e *QuillEngine) CodeActions(snap document.Snapshot, span Span, tok CancelToken) ([]Action, error) {
	diags, err := e.Analyze(snap, tok)
	if err != nil {
		return nil, err
	}

	var actions []Action
	for _, d := range diags {
		if !d.Span.Overlaps(span) {
			continue
		}
		switch d.Code {
		case codeUnclosedBrace:
			actions = append(actions, Action{
				Title: "Add missing closing brace",
				Kind:  ActionQuickFix,
				Edits: []TextEdit{{
					Span:    Span{Start: len(snap.Text), End: len(snap.Text)},
					NewText: "\n}",
				}},
			})
		case codeUnknownAttribute:
			actions = append(actions, Action{
				Title: fmt.Sprintf("Remove unknown attribute %s", snap.Text[d.Span.Start:d.Span.End]),
				Kind:  ActionQuickFix,
				Edits: []TextEdit{{Span: d.Span, NewText: ""}},
			})
		}
	}
	return actions, nil
}

func (e *QuillEngine) braceDiagnostics(scan *quillScan) []Diagnostic {
	var diags []Diagnostic
	var open []Span

	for _, t := range scan.tokens {
		switch t.kind {
		case tokenLBrace:
			open = append(open, t.span)
		case tokenRBrace:
			if len(open) == 0 {
				diags = append(diags, Diagnostic{
					Span:     t.span,
					Severity: SeverityError,
					Message:  "unexpected closing brace",
					Code:     codeStrayBrace,
				})
			} else {
				open = open[:len(open)-1]
			}
		}
	}

	// Anything left open never got closed before end of input.
	for _, span := range open {
		diags = append(diags, Diagnostic{
			Span:     span,
			Severity: SeverityError,
			Message:  "unexpected end of input",
			Code:     codeUnclosedBrace,
		})
	}
	return diags
}

func (e *QuillEngine) attributeDiagnostics(scan *quillScan) []Diagnostic {
	var diags []Diagnostic
	for _, t := range scan.tokens {
		if t.kind != tokenAttribute {
			continue
		}
		// Unclosed attributes already carry a lexical diagnostic.
		if !strings.HasSuffix(t.text, "]") {
			continue
		}
		if _, known := attributeDocs[t.text]; !known {
			diags = append(diags, Diagnostic{
				Span:     t.span,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("unknown attribute %s", t.text),
				Code:     codeUnknownAttribute,
			})
		}
	}
	return diags
}

// contractDiagnostics enforces the at-most-one-contract rule and requires a
// name after the contract keyword.
func (e *QuillEngine) contractDiagnostics(scan *quillScan) []Diagnostic {
	var diags []Diagnostic
	seen := 0

	for i, t := range scan.tokens {
		if t.kind != tokenKeyword || t.text != "contract" {
			continue
		}
		seen++
		if seen > 1 {
			diags = append(diags, Diagnostic{
				Span:     t.span,
				Severity: SeverityError,
				Message:  "only one contract per file is supported",
				Code:     codeDuplicateContract,
			})
		}
		if i+1 >= len(scan.tokens) || scan.tokens[i+1].kind != tokenIdent {
			diags = append(diags, Diagnostic{
				Span:     t.span,
				Severity: SeverityError,
				Message:  "contract is missing a name",
				Code:     codeMissingName,
			})
		}
	}
	return diags
}

// completionPrefix extracts the word being typed at the byte offset. The "#["
// opener counts as part of an attribute prefix.
func completionPrefix(text string, offset int) string {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}

	start := offset
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	// Pull in an attribute opener immediately before the word.
	if start >= 2 && text[start-2] == '#' && text[start-1] == '[' {
		start -= 2
	}
	return text[start:offset]
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
