// NexoraX - dual-model AI chat for the terminal, with a browser proxy server.
//
// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/nexorax/internal/backend"
	"github.com/jeranaias/nexorax/internal/config"
	"github.com/jeranaias/nexorax/internal/orchestrator"
	"github.com/jeranaias/nexorax/internal/pipeline"
	"github.com/jeranaias/nexorax/internal/server"
	"github.com/jeranaias/nexorax/internal/storage"
	"github.com/jeranaias/nexorax/internal/ui/chat"
	"github.com/jeranaias/nexorax/internal/ui/styles"
)

// Version information (set at build time).
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "nexorax",
		Short:   "NexoraX - chat with two AI models side by side",
		Long:    "NexoraX is a chat client for multiple AI model providers.\n\nRun without arguments for the TUI. Use 'serve' to start the HTTP proxy\nthat fronts the providers for a browser client.",
		Version: Version + " (" + GitCommit + ", " + BuildDate + ")",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSessionsCmd())
	root.AddCommand(newFeedbackCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP proxy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newSessionsCmd() *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved conversations",
	}

	sessions.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			fmt.Print(storage.FormatSessionList(app.store.List()))
			return nil
		},
	})

	export := &cobra.Command{
		Use:   "export <conversation-id>",
		Short: "Export a conversation to Markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			return runExport(args[0], format, out)
		},
	}
	export.Flags().String("format", "md", "export format: md or json")
	export.Flags().String("out", "", "output file (stdout when empty)")
	sessions.AddCommand(export)

	sessions.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			count := app.store.Count()
			app.store.ClearAll()
			app.store.Persist()
			fmt.Printf("Deleted %d conversation(s).\n", count)
			return nil
		},
	})

	return sessions
}

func newFeedbackCmd() *cobra.Command {
	feedback := &cobra.Command{
		Use:   "feedback <rating> [comment...]",
		Short: "Rate NexoraX from 1 to 5, with an optional comment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("rating must be a number from 1 to 5, got %q", args[0])
			}

			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.store.AddFeedback(rating, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Println("Thanks for the feedback!")
			return nil
		},
	}

	feedback.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show recorded feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			fmt.Print(storage.FormatFeedbackList(app.store.Feedbacks()))
			return nil
		},
	})

	return feedback
}

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app holds the wired application components shared by the commands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	kv       *storage.KV
	store    *storage.Store
	pipe     *pipeline.Pipeline
	backends *backend.Registry
	orch     *orchestrator.Orchestrator
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config.SetGlobal(cfg)

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	kv, err := storage.OpenKV(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewStore(kv, log)
	pipe := pipeline.New(store.Locker(), log)
	backends := backend.NewRegistry(cfg.BackendOptions(), log)
	orch := orchestrator.New(store, pipe, backends, log)

	return &app{
		cfg:      cfg,
		log:      log,
		kv:       kv,
		store:    store,
		pipe:     pipe,
		backends: backends,
		orch:     orch,
	}, nil
}

func (a *app) close() {
	a.store.Persist()
	a.kv.Close()
	a.log.Sync()
}

// buildLogger creates the zap logger. Output goes to the log file, never to
// the terminal the TUI is drawing on.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}
	return zcfg.Build()
}

// =============================================================================
// RUNNERS
// =============================================================================

func runTUI() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	m := chat.New(a.store, a.orch, a.pipe, theme)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.Attach(p)

	_, err = p.Run()
	return err
}

func runServe() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.NewServer(server.Options{
		Addr:           a.cfg.ListenAddr(),
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
	}, a.backends, a.log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hot-reload config edits while the server runs.
	if cfgPath, err := config.ConfigPath(); err == nil {
		go func() {
			if err := config.Watch(ctx, cfgPath, a.log, nil); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Printf("NexoraX proxy listening on %s\n", a.cfg.ListenAddr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGrace())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExport(conversationID, format, out string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	conv, ok := a.store.Get(conversationID)
	if !ok {
		return fmt.Errorf("conversation %q not found", conversationID)
	}

	var data []byte
	switch format {
	case "md", "markdown":
		data = []byte(storage.ExportMarkdown(conv))
	case "json":
		data, err = storage.ExportJSON(conv)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want md or json)", format)
	}

	if out == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := storage.WriteExport(out, data); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}
