package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"github.com/taxonhq/taxon/internal/compiler"
	"github.com/taxonhq/taxon/internal/server"
)

// NewServeCommand creates the serve command: compile the tree once,
// then expose the immutable model over HTTP until interrupted. Picking
// up changed descriptors means restarting; there is no partial reload.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <descriptor-root>",
		Short: "Compile a descriptor tree and serve the read API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			model, err := compiler.Compile(compiler.Options{Root: args[0], ExtensionsDir: opts.Extensions})
			if err != nil {
				out.Error(err.Error(), nil)
				return WrapExitError(ExitFailure, "compilation failed", err)
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(model).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("serving schema", model.Version(), "on", addr)
			errCh := make(chan error, 1)
			go func() { errCh <- httpServer.ListenAndServe() }()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return WrapExitError(ExitCommandError, "server failed", err)
				}
				return nil
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
