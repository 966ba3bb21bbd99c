// Package config loads quill-ls configuration from a TOML file, environment
// variables, and defaults, in that order of increasing precedence for env vars
// over file values. Configuration lives at ~/.config/quill-ls/config.toml by
// default; environment variables use the QUILL_LS_ prefix.
package config

// Config is the root configuration for quill-ls
type Config struct {
	Verbosity int            `mapstructure:"verbosity"`
	LogJSON   bool           `mapstructure:"log_json"`
	Server    ServerConfig   `mapstructure:"server"`
	Analyzer  AnalyzerConfig `mapstructure:"analyzer"`
}

// ServerConfig configures the dispatcher and transport
type ServerConfig struct {
	// MaxOpenDocuments caps the document store; 0 means unlimited.
	// A buggy client could open unlimited documents - this caps the risk.
	MaxOpenDocuments int `mapstructure:"max_open_documents"`

	// InboundBuffer is the capacity of the bounded inbound message channel
	// between the transport reader and the dispatcher loop.
	InboundBuffer int `mapstructure:"inbound_buffer"`

	// OutboundBuffer is the capacity of the outbound message channel.
	OutboundBuffer int `mapstructure:"outbound_buffer"`
}

// AnalyzerConfig configures the semantic engine
type AnalyzerConfig struct {
	// MaxDiagnostics caps the diagnostics reported per document; 0 means unlimited.
	MaxDiagnostics int `mapstructure:"max_diagnostics"`

	// MaxCompletions caps completion candidates per request; 0 means unlimited.
	MaxCompletions int `mapstructure:"max_completions"`
}
