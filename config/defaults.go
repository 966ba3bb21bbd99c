package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("verbosity", 0)
	v.SetDefault("log_json", false)

	// Server defaults
	v.SetDefault("server.max_open_documents", 100) // caps memory for buggy clients
	v.SetDefault("server.inbound_buffer", 64)
	v.SetDefault("server.outbound_buffer", 64)

	// Analyzer defaults
	v.SetDefault("analyzer.max_diagnostics", 200)
	v.SetDefault("analyzer.max_completions", 50)
}
