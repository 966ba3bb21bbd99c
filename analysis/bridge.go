package analysis

import (
	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/errors"
	"github.com/quill-lang/quill-ls/logger"
)

// Bridge wraps an Engine and enforces the failure contract: a panic or
// unexpected internal error inside the engine surfaces as ErrAnalyzerFault,
// which the dispatcher converts to an InternalError response. Cancellation
// errors pass through untouched.
type Bridge struct {
	engine Engine
}

// NewBridge creates a bridge over the given engine.
func NewBridge(engine Engine) *Bridge {
	return &Bridge{engine: engine}
}

// Analyze runs whole-file analysis on a snapshot.
func (b *Bridge) Analyze(snap document.Snapshot, tok CancelToken) (diags []Diagnostic, err error) {
	defer b.recoverFault(&err, "analyze", snap.URI)
	diags, err = b.engine.Analyze(snap, tok)
	return diags, b.classify(err)
}

// Complete returns completion candidates at a byte offset.
func (b *Bridge) Complete(snap document.Snapshot, offset int, tok CancelToken) (items []Candidate, err error) {
	defer b.recoverFault(&err, "complete", snap.URI)
	items, err = b.engine.Complete(snap, offset, tok)
	return items, b.classify(err)
}

// Hover returns hover content at a byte offset, or nil.
func (b *Bridge) Hover(snap document.Snapshot, offset int) (content *HoverContent, err error) {
	defer b.recoverFault(&err, "hover", snap.URI)
	content, err = b.engine.Hover(snap, offset)
	return content, b.classify(err)
}

// CodeActions returns action descriptors for a byte span.
func (b *Bridge) CodeActions(snap document.Snapshot, span Span, tok CancelToken) (actions []Action, err error) {
	defer b.recoverFault(&err, "codeActions", snap.URI)
	actions, err = b.engine.CodeActions(snap, span, tok)
	return actions, b.classify(err)
}

// classify maps engine errors onto the bridge contract. Cancellation is the
// only error an engine may legitimately return; anything else is a fault.
func (b *Bridge) classify(err error) error {
	if err == nil || errors.IsRequestCancelled(err) || errors.IsAnalyzerFault(err) {
		return err
	}
	return errors.Wrap(errors.ErrAnalyzerFault, err.Error())
}

func (b *Bridge) recoverFault(err *error, operation, uri string) {
	if r := recover(); r != nil {
		logger.Errorw("Panic in analyzer engine",
			"panic", r,
			"operation", operation,
			logger.FieldURI, uri,
		)
		*err = errors.Wrapf(errors.ErrAnalyzerFault, "panic in %s: %v", operation, r)
	}
}
