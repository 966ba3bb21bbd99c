package server

import (
	"runtime/debug"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/quill-lang/quill-ls/analysis"
	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/errors"
	"github.com/quill-lang/quill-ls/logger"
)

// serverState tracks the protocol lifecycle.
type serverState int

const (
	stateUninitialized serverState = iota
	stateInitializing
	stateRunning
	stateShuttingDown
	stateExited
)

func (s serverState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitializing:
		return "initializing"
	case stateRunning:
		return "running"
	case stateShuttingDown:
		return "shutting_down"
	case stateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// maxTrackedCancels bounds the set of cancel ids recorded before their
// request arrives.
const maxTrackedCancels = 256

// maxTrackedCompletions bounds the memory of recently answered request ids.
// When the map fills it is reset wholesale; ids that old are no longer
// plausible cancellation targets.
const maxTrackedCompletions = 256

// Dispatcher routes inbound messages on a single goroutine. All handler
// execution, store mutation, and diagnostic publishing happen here, so
// nothing downstream needs locking.
type Dispatcher struct {
	transport *Transport
	store     *document.Store
	bridge    *analysis.Bridge
	publisher *Publisher

	state        serverState
	shutdownSeen bool

	// pending maps in-flight request ids to their cancellation tokens.
	pending map[jsonrpc2.ID]analysis.CancelToken
	// cancelled records cancel notifications that arrived before their
	// target request was dispatched.
	cancelled map[jsonrpc2.ID]struct{}
	// completed records recently answered ids so a late cancel is a no-op
	// instead of priming cancelled for an id the client may reuse.
	completed map[jsonrpc2.ID]struct{}
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(t *Transport, store *document.Store, bridge *analysis.Bridge, pub *Publisher) *Dispatcher {
	return &Dispatcher{
		transport: t,
		store:     store,
		bridge:    bridge,
		publisher: pub,
		state:     stateUninitialized,
		pending:   make(map[jsonrpc2.ID]analysis.CancelToken),
		cancelled: make(map[jsonrpc2.ID]struct{}),
		completed: make(map[jsonrpc2.ID]struct{}),
	}
}

// Run consumes inbound messages until exit or transport termination and
// returns the process exit code. Zero requires shutdown before exit; every
// other way out is non-zero.
func (d *Dispatcher) Run() int {
	for msg := range d.transport.Inbound() {
		switch {
		case msg.Request != nil && msg.Request.Notif:
			d.dispatchNotification(msg.Request)
		case msg.Request != nil:
			d.dispatchRequest(msg.Request)
		case msg.Response != nil:
			logger.Debugw("ignoring unsolicited response",
				logger.FieldRequestID, msg.Response.ID.String())
		}
		if d.state == stateExited {
			break
		}
	}

	if d.state != stateExited {
		if err := d.transport.Err(); err != nil {
			logger.Errorw("transport failed",
				logger.FieldState, d.state.String(),
				logger.FieldError, err)
			return ExitCodeTransportFailure
		}
		logger.Warnw("connection closed without exit notification",
			logger.FieldState, d.state.String())
		return ExitCodeProtocolViolation
	}

	if d.shutdownSeen {
		return ExitCodeClean
	}
	logger.Warnw("exit received without prior shutdown")
	return ExitCodeProtocolViolation
}

func (d *Dispatcher) dispatchRequest(req *jsonrpc2.Request) {
	logger.Debugw("request",
		logger.FieldMethod, req.Method,
		logger.FieldRequestID, req.ID.String(),
		logger.FieldState, d.state.String())

	// A reused id is outstanding again; every exit below answers it.
	delete(d.completed, req.ID)
	defer d.markCompleted(req.ID)

	// A cancel can outrun its target through the inbound queue.
	if _, ok := d.cancelled[req.ID]; ok {
		delete(d.cancelled, req.ID)
		d.replyError(req.ID, errors.Wrapf(errors.ErrRequestCancelled,
			"%s cancelled before dispatch", req.Method))
		return
	}

	if err := d.checkRequestState(req.Method); err != nil {
		d.replyError(req.ID, err)
		return
	}

	tok := analysis.NewCancelToken()
	d.pending[req.ID] = tok

	result, err := d.invoke(req, tok)

	delete(d.pending, req.ID)
	delete(d.cancelled, req.ID)

	if err != nil {
		d.replyError(req.ID, err)
		return
	}
	d.reply(req.ID, result)
}

// checkRequestState enforces the lifecycle rules for requests.
func (d *Dispatcher) checkRequestState(method string) error {
	switch d.state {
	case stateUninitialized:
		if method != MethodInitialize {
			return errors.Wrapf(errors.ErrNotInitialized, "request %q before initialize", method)
		}
	case stateInitializing:
		if method == MethodInitialize {
			return errors.Wrap(errors.ErrAlreadyInitialized, "initialize sent twice")
		}
		return errors.Wrapf(errors.ErrNotInitialized, "request %q before initialized notification", method)
	case stateRunning:
		if method == MethodInitialize {
			return errors.Wrap(errors.ErrAlreadyInitialized, "initialize sent twice")
		}
	case stateShuttingDown:
		return errors.Wrapf(errors.ErrShuttingDown, "request %q after shutdown", method)
	}
	return nil
}

// invoke runs the request handler with panic containment: a handler fault
// becomes an InternalError response, never a dead connection.
func (d *Dispatcher) invoke(req *jsonrpc2.Request, tok analysis.CancelToken) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("request handler panic",
				logger.FieldMethod, req.Method,
				logger.FieldRequestID, req.ID.String(),
				"panic", r,
				"stack", string(debug.Stack()))
			result = nil
			err = errors.Newf("internal error handling %s", req.Method)
		}
	}()

	switch req.Method {
	case MethodInitialize:
		return d.handleInitialize(req)
	case MethodShutdown:
		return d.handleShutdown()
	case MethodCompletion:
		return d.handleCompletion(req, tok)
	case MethodHover:
		return d.handleHover(req)
	case MethodCodeAction:
		return d.handleCodeAction(req, tok)
	case MethodInitialized, MethodExit, MethodCancelRequest,
		MethodDidOpen, MethodDidChange, MethodDidClose:
		return nil, errors.Wrapf(errors.ErrMethodNotFound, "%s is a notification, not a request", req.Method)
	default:
		return nil, errors.Wrapf(errors.ErrMethodNotFound, "%s", req.Method)
	}
}

func (d *Dispatcher) dispatchNotification(req *jsonrpc2.Request) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("notification handler panic",
				logger.FieldMethod, req.Method,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	switch req.Method {
	case MethodExit:
		d.state = stateExited
		logger.Infow("exit received", "clean", d.shutdownSeen)

	case MethodCancelRequest:
		d.handleCancel(req)

	case MethodInitialized:
		if d.state != stateInitializing {
			logger.Warnw("unexpected initialized notification",
				logger.FieldState, d.state.String())
			return
		}
		d.state = stateRunning
		logger.Infow("server running")

	case MethodDidOpen, MethodDidChange, MethodDidClose:
		if d.state != stateRunning {
			logger.Debugw("dropping document notification",
				logger.FieldMethod, req.Method,
				logger.FieldState, d.state.String())
			return
		}
		var err error
		switch req.Method {
		case MethodDidOpen:
			err = d.handleDidOpen(req)
		case MethodDidChange:
			err = d.handleDidChange(req)
		case MethodDidClose:
			err = d.handleDidClose(req)
		}
		if err != nil {
			// Notifications have no response; the failure is logged and the
			// stored document keeps its previous consistent state.
			logger.Warnw("document sync failed",
				logger.FieldMethod, req.Method,
				logger.FieldError, err)
		}

	default:
		logger.Debugw("ignoring unknown notification", logger.FieldMethod, req.Method)
	}
}

// handleCancel marks an in-flight request's token, or records the id when the
// target has not been dispatched yet.
func (d *Dispatcher) handleCancel(req *jsonrpc2.Request) {
	id, err := cancelTarget(req)
	if err != nil {
		logger.Warnw("ignoring malformed cancel", logger.FieldError, err)
		return
	}
	if tok, ok := d.pending[id]; ok {
		tok.Cancel()
		return
	}
	if _, done := d.completed[id]; done {
		logger.Debugw("ignoring cancel for completed request",
			logger.FieldRequestID, id.String())
		return
	}
	if len(d.cancelled) >= maxTrackedCancels {
		logger.Warnw("cancel tracking full, dropping",
			logger.FieldRequestID, id.String())
		return
	}
	d.cancelled[id] = struct{}{}
}

func (d *Dispatcher) markCompleted(id jsonrpc2.ID) {
	if len(d.completed) >= maxTrackedCompletions {
		d.completed = make(map[jsonrpc2.ID]struct{}, maxTrackedCompletions)
	}
	d.completed[id] = struct{}{}
}

func (d *Dispatcher) reply(id jsonrpc2.ID, result any) {
	resp := &jsonrpc2.Response{ID: id}
	if err := resp.SetResult(result); err != nil {
		d.replyError(id, errors.Wrap(err, "failed to encode result"))
		return
	}
	d.transport.Send(resp)
}

func (d *Dispatcher) replyError(id jsonrpc2.ID, err error) {
	code := errorCode(err)
	logger.Debugw("request failed",
		logger.FieldRequestID, id.String(),
		logger.FieldErrorCode, code,
		logger.FieldError, err)
	d.transport.Send(&jsonrpc2.Response{
		ID:    id,
		Error: &jsonrpc2.Error{Code: code, Message: err.Error()},
	})
}

// errorCode maps the error taxonomy onto JSON-RPC error codes. Anything
// unrecognized, including analyzer faults, is an internal error.
func errorCode(err error) int64 {
	switch {
	case errors.IsRequestCancelled(err):
		return CodeRequestCancelled
	case errors.Is(err, errors.ErrNotInitialized):
		return CodeServerNotInitialized
	case errors.Is(err, errors.ErrMethodNotFound):
		return jsonrpc2.CodeMethodNotFound
	case errors.Is(err, errors.ErrAlreadyInitialized), errors.Is(err, errors.ErrShuttingDown):
		return jsonrpc2.CodeInvalidRequest
	case errors.Is(err, errors.ErrInvalidParams), errors.IsUnknownDocument(err):
		return jsonrpc2.CodeInvalidParams
	default:
		return jsonrpc2.CodeInternalError
	}
}
