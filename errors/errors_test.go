package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelIdentityThroughWrapping(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
		check    func(error) bool
	}{
		{"stale version", ErrStaleVersion, IsStaleVersion},
		{"unknown document", ErrUnknownDocument, IsUnknownDocument},
		{"duplicate document", ErrDuplicateDocument, IsDuplicateDocument},
		{"analyzer fault", ErrAnalyzerFault, IsAnalyzerFault},
		{"request cancelled", ErrRequestCancelled, IsRequestCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrapf(tt.sentinel, "while handling %s", "file:///a.quill")
			assert.True(t, tt.check(wrapped), "wrapping must preserve sentinel identity")
			assert.True(t, Is(wrapped, tt.sentinel))
		})
	}
}

func TestCheckersRejectNilAndForeignErrors(t *testing.T) {
	assert.False(t, IsStaleVersion(nil))
	assert.False(t, IsAnalyzerFault(nil))

	foreign := New("some other failure")
	assert.False(t, IsStaleVersion(foreign))
	assert.False(t, IsUnknownDocument(foreign))
	assert.False(t, IsRequestCancelled(foreign))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrDuplicateDocument, ErrStaleVersion, ErrUnknownDocument,
		ErrAnalyzerFault, ErrRequestCancelled, ErrMethodNotFound,
		ErrNotInitialized, ErrShuttingDown, ErrInvalidParams,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			require.False(t, Is(a, b), "%v must not match %v", a, b)
		}
	}
}

func TestWrapPreservesMessageContext(t *testing.T) {
	err := Wrap(ErrStaleVersion, "didChange for file:///a.quill")
	assert.Contains(t, err.Error(), "didChange")
	assert.Contains(t, err.Error(), "stale document version")
}
