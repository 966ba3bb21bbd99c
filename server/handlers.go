package server

import (
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/quill-lang/quill-ls/analysis"
	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/errors"
	"github.com/quill-lang/quill-ls/internal/util"
	"github.com/quill-lang/quill-ls/logger"
	"github.com/quill-lang/quill-ls/translate"
	"github.com/quill-lang/quill-ls/version"
)

// handleInitialize records the handshake and advertises capabilities.
// The state advances to running only after the initialized notification.
func (d *Dispatcher) handleInitialize(req *jsonrpc2.Request) (any, error) {
	var params protocol.InitializeParams
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidParams, "initialize: %v", err)
		}
	}

	d.state = stateInitializing
	if params.ClientInfo != nil {
		logger.Infow("client initializing",
			"client", params.ClientInfo.Name,
			"client_version", util.Deref(params.ClientInfo.Version, ""))
	} else {
		logger.Infow("client initializing")
	}

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: util.Ptr(true),
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"#", "["},
		},
		HoverProvider: &protocol.HoverOptions{},
		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "Quill Language Server",
			Version: util.Ptr(version.Version),
		},
	}, nil
}

// handleShutdown accepts the shutdown request. Documents stay open until
// exit; only new requests are refused from here on.
func (d *Dispatcher) handleShutdown() (any, error) {
	d.state = stateShuttingDown
	d.shutdownSeen = true
	logger.Infow("shutdown accepted", logger.FieldCount, d.store.Len())
	return nil, nil
}

func (d *Dispatcher) handleCompletion(req *jsonrpc2.Request, tok analysis.CancelToken) (any, error) {
	var params protocol.CompletionParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	snap, err := d.store.Snapshot(string(params.TextDocument.URI))
	if err != nil {
		return nil, err
	}

	offset := snap.Index.OffsetFor(translate.FromPosition(params.Position))
	candidates, err := d.bridge.Complete(snap, offset, tok)
	if err != nil {
		return nil, err
	}

	items := translate.Completions(candidates)
	logger.Debugw("completion",
		logger.FieldURI, snap.URI,
		logger.FieldCount, len(items))
	return items, nil
}

func (d *Dispatcher) handleHover(req *jsonrpc2.Request) (any, error) {
	var params protocol.HoverParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	snap, err := d.store.Snapshot(string(params.TextDocument.URI))
	if err != nil {
		return nil, err
	}

	offset := snap.Index.OffsetFor(translate.FromPosition(params.Position))
	content, err := d.bridge.Hover(snap, offset)
	if err != nil {
		return nil, err
	}

	hover := translate.Hover(snap.Index, content)
	if hover == nil {
		// Null result: nothing to show at this position.
		return nil, nil
	}
	return hover, nil
}

func (d *Dispatcher) handleCodeAction(req *jsonrpc2.Request, tok analysis.CancelToken) (any, error) {
	var params protocol.CodeActionParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	snap, err := d.store.Snapshot(string(params.TextDocument.URI))
	if err != nil {
		return nil, err
	}

	span := translate.SpanFromRange(snap.Index, params.Range)
	actions, err := d.bridge.CodeActions(snap, span, tok)
	if err != nil {
		return nil, err
	}

	return translate.CodeActions(snap.Index, snap.URI, actions), nil
}

func (d *Dispatcher) handleDidOpen(req *jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	td := params.TextDocument
	snap, event, err := d.store.Open(string(td.URI), int32(td.Version), td.Text)
	if err != nil {
		return err
	}

	logger.Debugw("document opened",
		logger.FieldURI, snap.URI,
		logger.FieldVersion, snap.Version,
		logger.FieldLength, len(snap.Text),
		logger.FieldCount, d.store.Len())

	d.publisher.HandleEvent(event)
	return nil
}

func (d *Dispatcher) handleDidChange(req *jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	edits := make([]document.Edit, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				edits = append(edits, document.Edit{Text: c.Text})
			} else {
				r := translate.FromRange(*c.Range)
				edits = append(edits, document.Edit{Range: &r, Text: c.Text})
			}
		case protocol.TextDocumentContentChangeEventWhole:
			edits = append(edits, document.Edit{Text: c.Text})
		default:
			return errors.Wrapf(errors.ErrInvalidParams, "unsupported content change %T", change)
		}
	}

	uri := string(params.TextDocument.URI)
	snap, event, err := d.store.Change(uri, int32(params.TextDocument.Version), edits)
	if err != nil {
		// A stale version discards the whole batch; the stored document is
		// untouched and previously published diagnostics remain valid.
		return err
	}

	logger.Debugw("document changed",
		logger.FieldURI, snap.URI,
		logger.FieldVersion, snap.Version,
		"changes", len(edits))

	d.publisher.HandleEvent(event)
	return nil
}

func (d *Dispatcher) handleDidClose(req *jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	uri := string(params.TextDocument.URI)
	event, err := d.store.Close(uri)
	if err != nil {
		return err
	}

	logger.Debugw("document closed",
		logger.FieldURI, uri,
		logger.FieldCount, d.store.Len())

	d.publisher.HandleEvent(event)
	return nil
}

// decodeParams unmarshals request params, mapping failures onto the
// invalid-params taxonomy member.
func decodeParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return errors.Wrapf(errors.ErrInvalidParams, "%s: missing params", req.Method)
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return errors.Wrapf(errors.ErrInvalidParams, "%s: %v", req.Method, err)
	}
	return nil
}

// cancelTarget extracts the request id a cancel notification refers to.
// The id is decoded as a jsonrpc2.ID, which handles both the numeric and
// the string form; glsp's CancelParams does not survive unmarshalling.
func cancelTarget(req *jsonrpc2.Request) (jsonrpc2.ID, error) {
	if req.Params == nil {
		return jsonrpc2.ID{}, errors.Wrap(errors.ErrInvalidParams, "cancel: missing params")
	}
	var params struct {
		ID jsonrpc2.ID `json:"id"`
	}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return jsonrpc2.ID{}, errors.Wrapf(errors.ErrInvalidParams, "cancel: %v", err)
	}
	return params.ID, nil
}
