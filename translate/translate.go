// Package translate maps analyzer-native results into LSP wire shapes.
// Every function is a pure conversion: byte spans become line/character
// ranges through the document index, and analyzer enumerations become the
// fixed protocol enumerations. No side effects, deterministic given the
// same snapshot and result.
package translate

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/quill-lang/quill-ls/analysis"
	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/internal/util"
)

// diagnosticSource identifies this server in published diagnostics.
const diagnosticSource = "quill-ls"

// Range converts a byte span into a protocol range via the index.
func Range(ix *document.Index, span analysis.Span) protocol.Range {
	return toProtocolRange(ix.RangeFor(span.Start, span.End))
}

// FromPosition converts a protocol position into a document position.
func FromPosition(pos protocol.Position) document.Position {
	return document.Position{Line: int(pos.Line), Character: int(pos.Character)}
}

// FromRange converts a protocol range into a document range.
func FromRange(r protocol.Range) document.Range {
	return document.Range{Start: FromPosition(r.Start), End: FromPosition(r.End)}
}

// SpanFromRange converts a protocol range into a byte span via the index.
func SpanFromRange(ix *document.Index, r protocol.Range) analysis.Span {
	return analysis.Span{
		Start: ix.OffsetFor(FromPosition(r.Start)),
		End:   ix.OffsetFor(FromPosition(r.End)),
	}
}

// Severity maps analyzer severity onto the protocol enumeration.
func Severity(s analysis.Severity) protocol.DiagnosticSeverity {
	switch s {
	case analysis.SeverityError:
		return protocol.DiagnosticSeverityError
	case analysis.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case analysis.SeverityInformation:
		return protocol.DiagnosticSeverityInformation
	case analysis.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

// Diagnostics converts the full analyzer diagnostic set for one document.
// The result is never nil: publishing requires an empty array, not null.
func Diagnostics(ix *document.Index, diags []analysis.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := Severity(d.Severity)
		pd := protocol.Diagnostic{
			Range:    Range(ix, d.Span),
			Severity: &severity,
			Source:   util.Ptr(diagnosticSource),
			Message:  d.Message,
		}
		if d.Code != "" {
			pd.Code = &protocol.IntegerOrString{Value: d.Code}
		}
		out = append(out, pd)
	}
	return out
}

// completionKind maps candidate kinds onto protocol completion item kinds.
func completionKind(kind analysis.CandidateKind) protocol.CompletionItemKind {
	switch kind {
	case analysis.CandidateKeyword:
		return protocol.CompletionItemKindKeyword
	case analysis.CandidateAttribute:
		return protocol.CompletionItemKindProperty
	case analysis.CandidateDeclaration:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

// Completions converts completion candidates into protocol items.
func Completions(items []analysis.Candidate) []protocol.CompletionItem {
	out := make([]protocol.CompletionItem, len(items))
	for i, item := range items {
		kind := completionKind(item.Kind)
		out[i] = protocol.CompletionItem{
			Label:      item.Label,
			Kind:       &kind,
			Detail:     util.PtrIfNonEmpty(item.Detail),
			InsertText: util.PtrIfNonEmpty(item.InsertText),
			SortText:   util.PtrIfNonEmpty(item.SortText),
		}
		if item.Documentation != "" {
			out[i].Documentation = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: item.Documentation,
			}
		}
	}
	return out
}

// Hover converts hover content, or returns nil when there is none.
func Hover(ix *document.Index, content *analysis.HoverContent) *protocol.Hover {
	if content == nil || content.Markdown == "" {
		return nil
	}
	r := Range(ix, content.Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content.Markdown,
		},
		Range: &r,
	}
}

// actionKind maps analyzer action kinds onto protocol code-action kinds.
func actionKind(kind analysis.ActionKind) protocol.CodeActionKind {
	switch kind {
	case analysis.ActionQuickFix:
		return protocol.CodeActionKindQuickFix
	default:
		return protocol.CodeActionKindQuickFix
	}
}

// CodeActions converts action descriptors into protocol code actions whose
// edits target the given document.
func CodeActions(ix *document.Index, uri string, actions []analysis.Action) []protocol.CodeAction {
	out := make([]protocol.CodeAction, len(actions))
	for i, a := range actions {
		edits := make([]protocol.TextEdit, len(a.Edits))
		for j, e := range a.Edits {
			edits[j] = protocol.TextEdit{
				Range:   Range(ix, e.Span),
				NewText: e.NewText,
			}
		}
		kind := actionKind(a.Kind)
		out[i] = protocol.CodeAction{
			Title: a.Title,
			Kind:  &kind,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					protocol.DocumentUri(uri): edits,
				},
			},
		}
	}
	return out
}

func toProtocolRange(r document.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(r.Start.Line),
			Character: protocol.UInteger(r.Start.Character),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(r.End.Line),
			Character: protocol.UInteger(r.End.Character),
		},
	}
}
