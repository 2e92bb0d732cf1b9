package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medical-analyzer/internal/config"
	"medical-analyzer/internal/core"
	httpserver "medical-analyzer/internal/http"
	"medical-analyzer/internal/llm"
	"medical-analyzer/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "medical-analyzer",
		Short:         "Clinical extraction and prescription review backed by an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds the components built once per process and shared by every
// request.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	analyzer *core.ConversationAnalyzer
	verifier *core.PrescriptionVerifier
}

// newApp loads configuration and constructs the LLM client.  A missing API
// key is returned as *llm.ConfigError and ends the process.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	client, err := llm.NewOpenAIClient(llm.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("model", client.Model()).Msg("llm client ready")

	return &app{
		cfg:      cfg,
		logger:   logger,
		analyzer: core.NewConversationAnalyzer(client, logger),
		verifier: core.NewPrescriptionVerifier(client, logger),
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runServer(a)
		},
	}
}

func runServer(a *app) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           httpserver.NewServer(a.analyzer, a.verifier, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract clinical information from a conversation (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if err := checkFormat(format); err != nil {
				return err
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			conversation := strings.TrimSpace(string(data))
			if conversation == "" {
				return errors.New("conversation is empty")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, a.analyzer.Extract(cmd.Context(), conversation))
		},
	}
	cmd.Flags().StringP("output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <request-file>",
		Short: "Review a prescription described in a JSON or YAML file (- for JSON on stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if err := checkFormat(format); err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			req, err := parsePrescriptionRequest(data, filepath.Ext(args[0]))
			if err != nil {
				return err
			}
			if len(req.Medicines) == 0 {
				return errors.New("request lists no medicines")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, a.verifier.Verify(cmd.Context(), req))
		},
	}
	cmd.Flags().StringP("output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
