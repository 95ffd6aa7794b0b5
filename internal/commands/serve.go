package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/logging"
	"github.com/diogo/geminichat/internal/web"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat widget",
		Long: `Serve the chat widget over HTTP. Every browser tab gets its own
transcript; closing the tab cancels its outstanding request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&a.flags.addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// runServe blocks until ctx is done, then shuts the server down
func (a *app) runServe(ctx context.Context) error {
	s, err := a.loadSettings()
	if err != nil {
		return err
	}

	addr := s.cfg.ListenAddr
	if a.flags.addr != "" {
		addr = a.flags.addr
	}

	logger := logging.New(a.deps.Stderr, s.cfg.Verbose)
	if s.apiKey == "" {
		logger.Warn(missingKeyMessage())
	}

	gen, err := a.newGenerator(s)
	if err != nil {
		return err
	}
	defer gen.Close()

	model := gen.GetModel().APIID
	srv := web.NewServer(gen,
		web.WithLogger(logger),
		web.WithFailureText(s.cfg.FailureMessage),
		web.WithTitle("Gemini Chat · "+model),
	)

	logger.Info("serving chat widget", "addr", addr, "model", model)
	return srv.ListenAndServe(ctx, addr)
}
