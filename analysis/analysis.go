// Package analysis defines the contract between the language server core and
// the semantic engine, plus the analyzer-native result shapes. Engine results
// speak in byte offsets; the translate package converts them to protocol
// positions. Results are transient: produced per call, consumed immediately,
// never retained across requests.
package analysis

import (
	"sync/atomic"

	"github.com/quill-lang/quill-ls/document"
)

// Span is a half-open [Start, End) byte range in document text.
type Span struct {
	Start int
	End   int
}

// Contains reports whether the byte offset falls inside the span. A zero
// width span contains only its own start, so cursor probes on insertion
// points still match.
func (s Span) Contains(offset int) bool {
	if s.Start == s.End {
		return offset == s.Start
	}
	return offset >= s.Start && offset < s.End
}

// Overlaps reports whether two spans share at least one offset.
func (s Span) Overlaps(other Span) bool {
	if s.Start == s.End {
		return other.Contains(s.Start)
	}
	if other.Start == other.End {
		return s.Contains(other.Start)
	}
	return s.Start < other.End && other.Start < s.End
}

// Severity is the analyzer-native diagnostic severity.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is an analyzer-native reported issue.
type Diagnostic struct {
	Span     Span
	Severity Severity
	Message  string
	// Code is an optional machine-readable identifier, e.g. "syntax/unclosed-brace".
	Code string
}

// CandidateKind classifies a completion candidate.
type CandidateKind int

const (
	CandidateKeyword CandidateKind = iota
	CandidateAttribute
	CandidateDeclaration
)

// Candidate is an analyzer-native completion item.
type Candidate struct {
	Label         string
	Kind          CandidateKind
	Detail        string
	Documentation string
	InsertText    string
	SortText      string
}

// HoverContent is documentation for the token under the cursor.
type HoverContent struct {
	// Markdown is the formatted documentation block.
	Markdown string
	// Span is the token the content applies to.
	Span Span
}

// TextEdit is an analyzer-native edit descriptor.
type TextEdit struct {
	Span    Span
	NewText string
}

// ActionKind classifies a code action.
type ActionKind int

const (
	ActionQuickFix ActionKind = iota
)

// Action is an analyzer-native code-action descriptor.
type Action struct {
	Title string
	Kind  ActionKind
	Edits []TextEdit
}

// Engine is the semantic-analysis contract. Every call is pure given the
// snapshot: no state is retained between calls. Malformed source never fails
// a call; the engine returns a degraded result (e.g. a single syntax-error
// diagnostic and empty completions) instead. The only error conditions are
// cooperative cancellation and internal faults.
type Engine interface {
	// Analyze returns the full diagnostic set for a document.
	Analyze(snap document.Snapshot, tok CancelToken) ([]Diagnostic, error)

	// Complete returns completion candidates at a byte offset.
	Complete(snap document.Snapshot, offset int, tok CancelToken) ([]Candidate, error)

	// Hover returns documentation for the token at a byte offset,
	// or nil when there is nothing to show.
	Hover(snap document.Snapshot, offset int) (*HoverContent, error)

	// CodeActions returns action descriptors applicable to a byte span.
	CodeActions(snap document.Snapshot, span Span, tok CancelToken) ([]Action, error)
}

// CancelToken is a handle over a shared atomic flag, passed by value into
// handlers and the engine. Long-running work polls Cancelled at natural
// iteration boundaries; cancellation is cooperative, never preemptive.
// The zero value is a token that can never be cancelled.
type CancelToken struct {
	flag *atomic.Bool
}

// NewCancelToken creates a cancellable token.
func NewCancelToken() CancelToken {
	return CancelToken{flag: new(atomic.Bool)}
}

// Cancel sets the flag. Safe to call from any goroutine and more than once.
func (t CancelToken) Cancel() {
	if t.flag != nil {
		t.flag.Store(true)
	}
}

// Cancelled reports whether Cancel has been called.
func (t CancelToken) Cancelled() bool {
	return t.flag != nil && t.flag.Load()
}
