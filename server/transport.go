package server

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/quill-lang/quill-ls/errors"
	"github.com/quill-lang/quill-ls/logger"
)

// Message is one classified inbound wire message. Exactly one field is set.
type Message struct {
	// Request holds an incoming request or, when Notif is set, a notification.
	Request *jsonrpc2.Request
	// Response holds a response to a server-to-client request. The server
	// currently sends none, so these are logged and dropped by the dispatcher.
	Response *jsonrpc2.Response
}

// Transport pumps JSON-RPC objects between a framed object stream and the
// dispatcher. Reads and writes each run on their own goroutine so the
// single-threaded dispatcher never blocks on the wire.
//
// Inbound messages arrive on Inbound(); the channel closes when the stream
// ends, after which Err() reports whether the termination was clean EOF or
// a transport failure.
type Transport struct {
	stream    jsonrpc2.ObjectStream
	inbound   chan Message
	outbound  chan any
	writeDone chan struct{}

	mu       sync.Mutex
	readErr  error
	writeErr error
}

// NewTransport wraps a framed object stream. Buffer sizes bound the inbound
// and outbound queues; zero means unbuffered.
func NewTransport(stream jsonrpc2.ObjectStream, inboundBuffer, outboundBuffer int) *Transport {
	return &Transport{
		stream:    stream,
		inbound:   make(chan Message, inboundBuffer),
		outbound:  make(chan any, outboundBuffer),
		writeDone: make(chan struct{}),
	}
}

// Start launches the read and write pumps.
func (t *Transport) Start() {
	go t.readLoop()
	go t.writeLoop()
}

// Inbound returns the channel of classified inbound messages. It closes when
// the stream ends.
func (t *Transport) Inbound() <-chan Message {
	return t.inbound
}

// Err reports the fatal transport error, if any. Only meaningful after
// Inbound() has closed; nil means the client closed the connection cleanly.
// A write-side failure takes precedence: it is the root cause of the read
// pump seeing a closed stream.
func (t *Transport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeErr != nil {
		return t.writeErr
	}
	return t.readErr
}

// Send queues an outbound object (response or notification) for writing.
// Blocks when the outbound buffer is full.
func (t *Transport) Send(msg any) {
	t.outbound <- msg
}

// CloseSend closes the outbound queue and waits for the writer to drain it.
// Call exactly once, after the dispatcher loop has ended.
func (t *Transport) CloseSend() {
	close(t.outbound)
	<-t.writeDone
}

// Close closes the underlying stream, unblocking the read pump.
func (t *Transport) Close() error {
	return t.stream.Close()
}

func (t *Transport) readLoop() {
	defer close(t.inbound)
	for {
		var raw json.RawMessage
		if err := t.stream.ReadObject(&raw); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				// The codec consumed the declared body length before
				// unmarshalling, so framing is still intact.
				logger.Warnw("dropping frame with invalid JSON body",
					logger.FieldError, err)
				continue
			}
			if err != io.EOF {
				t.mu.Lock()
				t.readErr = err
				t.mu.Unlock()
			}
			return
		}
		msg, err := classify(raw)
		if err != nil {
			logger.Warnw("dropping malformed message",
				logger.FieldError, err,
				logger.FieldLength, len(raw))
			continue
		}
		t.inbound <- msg
	}
}

func (t *Transport) writeLoop() {
	defer close(t.writeDone)
	for msg := range t.outbound {
		if err := t.stream.WriteObject(msg); err != nil {
			logger.Errorw("failed to write message", logger.FieldError, err)
			t.mu.Lock()
			t.writeErr = err
			t.mu.Unlock()
			// Tear down the stream so the read pump unblocks and the
			// dispatcher sees the connection as terminated.
			t.stream.Close()
			// Drain so the dispatcher never blocks on a dead connection.
			for range t.outbound {
			}
			return
		}
	}
}

// classify decides whether a raw object is a request (or notification) or a
// response, and decodes it accordingly.
func classify(raw json.RawMessage) (Message, error) {
	// Result is a non-pointer RawMessage so that an explicit "result": null,
	// which is how void results travel, still registers as key-present.
	var probe struct {
		Method string           `json:"method"`
		Result json.RawMessage  `json:"result"`
		Error  *json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Message{}, errors.Wrap(err, "undecodable message")
	}
	switch {
	case probe.Method != "":
		var req jsonrpc2.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return Message{}, errors.Wrap(err, "undecodable request")
		}
		return Message{Request: &req}, nil
	case len(probe.Result) > 0 || probe.Error != nil:
		var resp jsonrpc2.Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return Message{}, errors.Wrap(err, "undecodable response")
		}
		return Message{Response: &resp}, nil
	default:
		return Message{}, errors.New("message is neither a request nor a response")
	}
}
