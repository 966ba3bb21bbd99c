package server

// Supported method surface. The dispatcher routes over this closed set with
// an exhaustive switch; anything else is MethodNotFound for requests and
// logged-and-dropped for notifications.
const (
	// Lifecycle
	MethodInitialize    = "initialize"
	MethodInitialized   = "initialized"
	MethodShutdown      = "shutdown"
	MethodExit          = "exit"
	MethodCancelRequest = "$/cancelRequest"

	// Document sync
	MethodDidOpen   = "textDocument/didOpen"
	MethodDidChange = "textDocument/didChange"
	MethodDidClose  = "textDocument/didClose"

	// Language features
	MethodCompletion = "textDocument/completion"
	MethodHover      = "textDocument/hover"
	MethodCodeAction = "textDocument/codeAction"

	// Server-to-client notifications
	MethodPublishDiagnostics = "textDocument/publishDiagnostics"
)

// LSP-specific JSON-RPC error codes. The generic codes (MethodNotFound,
// InvalidRequest, InternalError, InvalidParams) come from the jsonrpc2
// package.
const (
	CodeServerNotInitialized int64 = -32002
	CodeRequestCancelled     int64 = -32800
)

// Exit codes for the process. The protocol requires a clean
// shutdown-then-exit sequence for a zero exit.
const (
	ExitCodeClean             = 0
	ExitCodeProtocolViolation = 1
	ExitCodeTransportFailure  = 1
)
