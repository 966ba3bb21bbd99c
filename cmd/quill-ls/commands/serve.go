package commands

import (
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/cobra"

	"github.com/quill-lang/quill-ls/config"
	"github.com/quill-lang/quill-ls/errors"
	"github.com/quill-lang/quill-ls/logger"
	"github.com/quill-lang/quill-ls/server"
	"github.com/quill-lang/quill-ls/version"
)

// ServeCmd runs the language server over stdio until the client disconnects
// or sends exit. The process exit code follows the protocol: zero only for
// a shutdown-then-exit sequence.
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"stdio"},
	Short:   "Serve the Language Server Protocol over stdio",
	Long: `Start the language server on stdin/stdout.

Editors spawn this command and talk LSP to it. Configuration is read from
~/.config/quill-ls/config.toml and QUILL_LS_* environment variables.`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a config file (overrides the default search path)")
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if serveConfigPath != "" {
		cfg, err = config.LoadFromFile(serveConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	// The -v flag wins; otherwise a config-file verbosity takes effect here.
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 && cfg.Verbosity > 0 {
		if err := logger.Initialize(cfg.LogJSON, cfg.Verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
	}

	logger.Infow("starting quill-ls",
		"version", version.Get().String(),
		"max_open_documents", cfg.Server.MaxOpenDocuments)

	stream := jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{})
	srv := server.New(stream, server.Options{Config: cfg})

	code := srv.Run()
	logger.Cleanup()
	os.Exit(code)
	return nil
}

// stdrwc bridges stdin/stdout into the single ReadWriteCloser the buffered
// stream codec expects.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
