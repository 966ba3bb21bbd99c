package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/quill-lang/quill-ls/analysis"
	"github.com/quill-lang/quill-ls/document"
)

func TestRangeConversion(t *testing.T) {
	ix := document.NewIndex("contract Flip {\n  state on bool\n}\n")

	// "Flip" occupies bytes 9..13 on line 0.
	r := Range(ix, analysis.Span{Start: 9, End: 13})
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 9},
		End:   protocol.Position{Line: 0, Character: 13},
	}, r)

	// "state" starts at byte 18 on line 1.
	r = Range(ix, analysis.Span{Start: 18, End: 23})
	assert.Equal(t, protocol.UInteger(1), r.Start.Line)
	assert.Equal(t, protocol.UInteger(2), r.Start.Character)
}

func TestSpanFromRangeRoundTrip(t *testing.T) {
	ix := document.NewIndex("contract Flip {\n  state on bool\n}\n")

	span := analysis.Span{Start: 18, End: 23}
	assert.Equal(t, span, SpanFromRange(ix, Range(ix, span)))
}

func TestSeverityMapping(t *testing.T) {
	tests := []struct {
		name string
		in   analysis.Severity
		want protocol.DiagnosticSeverity
	}{
		{"error", analysis.SeverityError, protocol.DiagnosticSeverityError},
		{"warning", analysis.SeverityWarning, protocol.DiagnosticSeverityWarning},
		{"information", analysis.SeverityInformation, protocol.DiagnosticSeverityInformation},
		{"hint", analysis.SeverityHint, protocol.DiagnosticSeverityHint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Severity(tt.in))
		})
	}
}

func TestDiagnosticsConversion(t *testing.T) {
	text := "contract Flip {"
	ix := document.NewIndex(text)

	diags := Diagnostics(ix, []analysis.Diagnostic{{
		Span:     analysis.Span{Start: 14, End: 15},
		Severity: analysis.SeverityError,
		Message:  "unexpected end of input",
		Code:     "syntax/unclosed-brace",
	}})

	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "unexpected end of input", d.Message)
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	require.NotNil(t, d.Source)
	assert.Equal(t, "quill-ls", *d.Source)
	require.NotNil(t, d.Code)
	assert.Equal(t, "syntax/unclosed-brace", d.Code.Value)
	assert.Equal(t, protocol.UInteger(14), d.Range.Start.Character)
}

func TestDiagnosticsEmptyIsNotNil(t *testing.T) {
	ix := document.NewIndex("")
	diags := Diagnostics(ix, nil)
	require.NotNil(t, diags, "publishing requires an empty array, not null")
	assert.Empty(t, diags)
}

func TestDiagnosticsOmitsEmptyCode(t *testing.T) {
	ix := document.NewIndex("x")
	diags := Diagnostics(ix, []analysis.Diagnostic{{
		Span:    analysis.Span{Start: 0, End: 1},
		Message: "no code here",
	}})
	require.Len(t, diags, 1)
	assert.Nil(t, diags[0].Code)
}

func TestCompletionsConversion(t *testing.T) {
	items := Completions([]analysis.Candidate{
		{
			Label:         "state",
			Kind:          analysis.CandidateKeyword,
			Detail:        "keyword",
			Documentation: "Declares a persistent state field.",
			InsertText:    "state",
			SortText:      "0state",
		},
		{
			Label: "balance",
			Kind:  analysis.CandidateDeclaration,
		},
	})

	require.Len(t, items, 2)

	kw := items[0]
	assert.Equal(t, "state", kw.Label)
	require.NotNil(t, kw.Kind)
	assert.Equal(t, protocol.CompletionItemKindKeyword, *kw.Kind)
	require.NotNil(t, kw.Detail)
	assert.Equal(t, "keyword", *kw.Detail)
	doc, ok := kw.Documentation.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindMarkdown, doc.Kind)

	decl := items[1]
	require.NotNil(t, decl.Kind)
	assert.Equal(t, protocol.CompletionItemKindVariable, *decl.Kind)
	assert.Nil(t, decl.Detail, "empty optional fields are omitted, not sent as empty strings")
	assert.Nil(t, decl.InsertText)
	assert.Nil(t, decl.Documentation)
}

func TestHoverConversion(t *testing.T) {
	text := "contract Flip {}"
	ix := document.NewIndex(text)

	t.Run("content present", func(t *testing.T) {
		hover := Hover(ix, &analysis.HoverContent{
			Markdown: "```quill\ncontract Flip\n```",
			Span:     analysis.Span{Start: 9, End: 13},
		})
		require.NotNil(t, hover)
		content, ok := hover.Contents.(protocol.MarkupContent)
		require.True(t, ok)
		assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
		assert.Contains(t, content.Value, "contract Flip")
		require.NotNil(t, hover.Range)
		assert.Equal(t, protocol.UInteger(9), hover.Range.Start.Character)
	})

	t.Run("nil content", func(t *testing.T) {
		assert.Nil(t, Hover(ix, nil))
	})
}

func TestCodeActionsConversion(t *testing.T) {
	text := "contract Flip {"
	ix := document.NewIndex(text)
	uri := "file:///flip.quill"

	actions := CodeActions(ix, uri, []analysis.Action{{
		Title: "Add missing closing brace",
		Kind:  analysis.ActionQuickFix,
		Edits: []analysis.TextEdit{{
			Span:    analysis.Span{Start: 15, End: 15},
			NewText: "\n}",
		}},
	}})

	require.Len(t, actions, 1)
	a := actions[0]
	assert.Equal(t, "Add missing closing brace", a.Title)
	require.NotNil(t, a.Kind)
	assert.Equal(t, protocol.CodeActionKindQuickFix, *a.Kind)
	require.NotNil(t, a.Edit)
	edits := a.Edit.Changes[protocol.DocumentUri(uri)]
	require.Len(t, edits, 1)
	assert.Equal(t, "\n}", edits[0].NewText)
	assert.Equal(t, protocol.UInteger(15), edits[0].Range.Start.Character)
}
