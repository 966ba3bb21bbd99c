// Package document is the authoritative store for open documents: their
// current version, full text, and a derived index for position conversion.
// All mutation happens on the dispatcher goroutine, so the store needs no
// locking; snapshots are immutable and safe to read concurrently.
package document

import (
	"github.com/quill-lang/quill-ls/errors"
)

// EventKind classifies a store trigger event.
type EventKind int

const (
	EventOpen EventKind = iota
	EventChange
	EventClose
)

// Event records a successful open/change/close. The diagnostics publisher
// consumes these in the order they occurred.
type Event struct {
	Kind    EventKind
	URI     string
	Version int32
}

// Edit is a single content change: a range replacement, or a full-text
// replacement when Range is nil. Ranges are in protocol positions relative
// to the document state after any preceding edits in the same batch.
type Edit struct {
	Range *Range
	Text  string
}

// Snapshot is an immutable view of a document at a specific version.
type Snapshot struct {
	URI     string
	Version int32
	Text    string
	Index   *Index
}

type doc struct {
	version int32
	text    string
	index   *Index
}

// Store maps document URIs to their current version and text.
type Store struct {
	docs map[string]*doc

	// maxOpen caps the number of simultaneously open documents.
	// A buggy client could open unlimited documents - this caps the risk.
	// Zero means unlimited.
	maxOpen int
}

// NewStore creates an empty document store.
func NewStore(maxOpen int) *Store {
	return &Store{
		docs:    make(map[string]*doc),
		maxOpen: maxOpen,
	}
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Open registers a new document. It fails with ErrDuplicateDocument if the
// URI is already open.
func (s *Store) Open(uri string, version int32, text string) (Snapshot, Event, error) {
	if _, exists := s.docs[uri]; exists {
		return Snapshot{}, Event{}, errors.Wrapf(errors.ErrDuplicateDocument, "open %s", uri)
	}
	if s.maxOpen > 0 && len(s.docs) >= s.maxOpen {
		return Snapshot{}, Event{}, errors.Newf("document limit reached (%d documents open)", s.maxOpen)
	}

	d := &doc{version: version, text: text, index: NewIndex(text)}
	s.docs[uri] = d

	return s.snapshotOf(uri, d), Event{Kind: EventOpen, URI: uri, Version: version}, nil
}

// Change applies an ordered sequence of edits to an open document. The new
// version must be exactly the successor of the stored version; otherwise the
// edit batch is discarded and ErrStaleVersion returned, leaving the stored
// document untouched.
func (s *Store) Change(uri string, version int32, edits []Edit) (Snapshot, Event, error) {
	d, exists := s.docs[uri]
	if !exists {
		return Snapshot{}, Event{}, errors.Wrapf(errors.ErrUnknownDocument, "change %s", uri)
	}
	if version != d.version+1 {
		return Snapshot{}, Event{}, errors.Wrapf(errors.ErrStaleVersion,
			"change %s: got version %d, expected %d", uri, version, d.version+1)
	}

	text := d.text
	index := d.index
	for _, edit := range edits {
		if edit.Range == nil {
			text = edit.Text
		} else {
			start := index.OffsetFor(edit.Range.Start)
			end := index.OffsetFor(edit.Range.End)
			if end < start {
				start, end = end, start
			}
			text = text[:start] + edit.Text + text[end:]
		}
		// Each subsequent edit is relative to the text produced so far.
		index = NewIndex(text)
	}

	d.version = version
	d.text = text
	d.index = index

	return s.snapshotOf(uri, d), Event{Kind: EventChange, URI: uri, Version: version}, nil
}

// Close removes a document. It fails with ErrUnknownDocument if absent.
func (s *Store) Close(uri string) (Event, error) {
	d, exists := s.docs[uri]
	if !exists {
		return Event{}, errors.Wrapf(errors.ErrUnknownDocument, "close %s", uri)
	}
	version := d.version
	delete(s.docs, uri)
	return Event{Kind: EventClose, URI: uri, Version: version}, nil
}

// Snapshot returns an immutable view of an open document for concurrent read.
func (s *Store) Snapshot(uri string) (Snapshot, error) {
	d, exists := s.docs[uri]
	if !exists {
		return Snapshot{}, errors.Wrapf(errors.ErrUnknownDocument, "snapshot %s", uri)
	}
	return s.snapshotOf(uri, d), nil
}

func (s *Store) snapshotOf(uri string, d *doc) Snapshot {
	return Snapshot{URI: uri, Version: d.version, Text: d.text, Index: d.index}
}
