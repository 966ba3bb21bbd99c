package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/errors"
)

// faultyEngine lets each test inject a specific failure mode.
type faultyEngine struct {
	panicWith any
	err       error
	diags     []Diagnostic
}

func (f *faultyEngine) Analyze(document.Snapshot, CancelToken) ([]Diagnostic, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.diags, f.err
}

func (f *faultyEngine) Complete(document.Snapshot, int, CancelToken) ([]Candidate, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return nil, f.err
}

func (f *faultyEngine) Hover(document.Snapshot, int) (*HoverContent, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return nil, f.err
}

func (f *faultyEngine) CodeActions(document.Snapshot, Span, CancelToken) ([]Action, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return nil, f.err
}

func TestBridgePassesThroughResults(t *testing.T) {
	want := []Diagnostic{{Span: Span{0, 1}, Severity: SeverityError, Message: "boom"}}
	b := NewBridge(&faultyEngine{diags: want})

	got, err := b.Analyze(snapshotOf("x"), CancelToken{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBridgeConvertsPanicToAnalyzerFault(t *testing.T) {
	b := NewBridge(&faultyEngine{panicWith: "index out of range"})

	_, err := b.Analyze(snapshotOf("x"), CancelToken{})
	assert.True(t, errors.IsAnalyzerFault(err))

	_, err = b.Complete(snapshotOf("x"), 0, CancelToken{})
	assert.True(t, errors.IsAnalyzerFault(err))

	_, err = b.Hover(snapshotOf("x"), 0)
	assert.True(t, errors.IsAnalyzerFault(err))

	_, err = b.CodeActions(snapshotOf("x"), Span{}, CancelToken{})
	assert.True(t, errors.IsAnalyzerFault(err))
}

func TestBridgeWrapsUnexpectedErrors(t *testing.T) {
	b := NewBridge(&faultyEngine{err: errors.New("disk melted")})

	_, err := b.Analyze(snapshotOf("x"), CancelToken{})
	assert.True(t, errors.IsAnalyzerFault(err))
	assert.Contains(t, err.Error(), "disk melted")
}

func TestBridgePreservesCancellation(t *testing.T) {
	b := NewBridge(&faultyEngine{err: errors.Wrap(errors.ErrRequestCancelled, "analyze")})

	_, err := b.Analyze(snapshotOf("x"), CancelToken{})
	assert.True(t, errors.IsRequestCancelled(err))
	assert.False(t, errors.IsAnalyzerFault(err))
}

func TestCancelToken(t *testing.T) {
	t.Run("zero value never cancels", func(t *testing.T) {
		var tok CancelToken
		assert.False(t, tok.Cancelled())
		tok.Cancel() // must not panic
		assert.False(t, tok.Cancelled())
	})

	t.Run("copies share the flag", func(t *testing.T) {
		tok := NewCancelToken()
		copied := tok
		assert.False(t, copied.Cancelled())
		tok.Cancel()
		assert.True(t, copied.Cancelled(), "token is a handle over shared state")
	})
}
