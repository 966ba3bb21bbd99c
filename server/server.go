// Package server is the quill-ls protocol core: a framed JSON-RPC transport,
// a single-goroutine dispatcher owning the lifecycle state machine and the
// document store, and a diagnostics publisher. The semantic engine sits
// behind the analysis bridge and never touches the wire.
package server

import (
	"github.com/sourcegraph/jsonrpc2"

	"github.com/quill-lang/quill-ls/analysis"
	"github.com/quill-lang/quill-ls/config"
	"github.com/quill-lang/quill-ls/document"
	"github.com/quill-lang/quill-ls/logger"
)

// Options configures a Server.
type Options struct {
	// Config supplies buffer sizes and limits; nil means built-in defaults.
	Config *config.Config

	// Engine is the semantic analyzer. Nil selects the Quill engine.
	Engine analysis.Engine
}

// Server ties the transport, dispatcher, store, and publisher together
// over one client connection.
type Server struct {
	transport  *Transport
	dispatcher *Dispatcher
}

// New builds a server over a framed object stream.
func New(stream jsonrpc2.ObjectStream, opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	engine := opts.Engine
	if engine == nil {
		engine = analysis.NewQuillEngine(cfg.Analyzer.MaxDiagnostics, cfg.Analyzer.MaxCompletions)
	}

	transport := NewTransport(stream, cfg.Server.InboundBuffer, cfg.Server.OutboundBuffer)
	store := document.NewStore(cfg.Server.MaxOpenDocuments)
	bridge := analysis.NewBridge(engine)
	publisher := NewPublisher(store, bridge, notifySender(transport))

	return &Server{
		transport:  transport,
		dispatcher: NewDispatcher(transport, store, bridge, publisher),
	}
}

// Run serves the connection until exit or transport termination and returns
// the process exit code.
func (s *Server) Run() int {
	s.transport.Start()

	code := s.dispatcher.Run()

	// Flush queued responses before tearing down the stream; the drain
	// unblocks the reader if it is still parked on the inbound channel.
	go func() {
		for range s.transport.Inbound() {
		}
	}()
	s.transport.CloseSend()
	s.transport.Close()

	logger.Infow("server stopped", "exit_code", code)
	return code
}

// notifySender adapts the transport into the publisher's send callback.
func notifySender(t *Transport) func(method string, params any) {
	return func(method string, params any) {
		req := &jsonrpc2.Request{Method: method, Notif: true}
		if err := req.SetParams(params); err != nil {
			logger.Errorw("failed to encode notification",
				logger.FieldMethod, method,
				logger.FieldError, err)
			return
		}
		t.Send(req)
	}
}
