package server

import (
	"reflect"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/quill-lang/quill-ls/analysis"
	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/logger"
	"github.com/quill-lang/quill-ls/translate"
)

// Publisher turns document events into publishDiagnostics notifications.
// It remembers the last set sent per document and skips the notification
// when a reanalysis produced an identical set. Runs on the dispatcher
// goroutine; no locking.
type Publisher struct {
	store  *document.Store
	bridge *analysis.Bridge
	send   func(method string, params any)

	// last maps URI to the most recently published diagnostic set. A
	// missing entry means nothing has been published for that document,
	// which is distinct from an empty published set.
	last map[string][]protocol.Diagnostic
}

// NewPublisher creates a publisher that emits notifications through send.
func NewPublisher(store *document.Store, bridge *analysis.Bridge, send func(method string, params any)) *Publisher {
	return &Publisher{
		store:  store,
		bridge: bridge,
		send:   send,
		last:   make(map[string][]protocol.Diagnostic),
	}
}

// HandleEvent reacts to a successful store mutation. Opens and changes
// trigger reanalysis; closes clear client-side diagnostics.
func (p *Publisher) HandleEvent(event document.Event) {
	switch event.Kind {
	case document.EventOpen, document.EventChange:
		p.refresh(event.URI)
	case document.EventClose:
		p.clear(event.URI)
	}
}

func (p *Publisher) refresh(uri string) {
	snap, err := p.store.Snapshot(uri)
	if err != nil {
		logger.Warnw("cannot analyze unknown document",
			logger.FieldURI, uri,
			logger.FieldError, err)
		return
	}

	diags, err := p.bridge.Analyze(snap, analysis.CancelToken{})
	if err != nil {
		// Keep whatever was published before; a fault must not blank out
		// diagnostics the client is already showing.
		logger.Errorw("analysis failed, keeping previous diagnostics",
			logger.FieldURI, uri,
			logger.FieldVersion, snap.Version,
			logger.FieldError, err)
		return
	}

	wire := translate.Diagnostics(snap.Index, diags)
	if prev, published := p.last[uri]; published && reflect.DeepEqual(prev, wire) {
		logger.Debugw("diagnostics unchanged",
			logger.FieldURI, uri,
			logger.FieldVersion, snap.Version)
		return
	}

	version := protocol.UInteger(snap.Version)
	p.send(MethodPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Version:     &version,
		Diagnostics: wire,
	})
	p.last[uri] = wire

	logger.Debugw("diagnostics published",
		logger.FieldURI, uri,
		logger.FieldVersion, snap.Version,
		logger.FieldCount, len(wire))
}

// clear publishes an empty set for a closed document, unless the last
// published set was already empty, then drops the tracking entry.
func (p *Publisher) clear(uri string) {
	prev, published := p.last[uri]
	delete(p.last, uri)

	if !published || len(prev) == 0 {
		return
	}

	p.send(MethodPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: []protocol.Diagnostic{},
	})
	logger.Debugw("diagnostics cleared", logger.FieldURI, uri)
}
