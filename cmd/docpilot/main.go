// Command docpilot is the terminal surface of the document assistant: a
// per-turn REPL over a resumable session. Startup resolves the provider
// credential from the environment and fails fast when it is absent.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/karsten42/docpilot/audit"
	"github.com/karsten42/docpilot/config"
	"github.com/karsten42/docpilot/corpus"
	"github.com/karsten42/docpilot/logging"
	"github.com/karsten42/docpilot/memory"
	"github.com/karsten42/docpilot/model"
	"github.com/karsten42/docpilot/model/anthropic"
	"github.com/karsten42/docpilot/model/openai"
	"github.com/karsten42/docpilot/runner"
	"github.com/karsten42/docpilot/session"
	"github.com/karsten42/docpilot/workflow"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "docpilot",
		Short:         "Conversational assistant over a document corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "docpilot.yaml", "path to the YAML config file")

	root.AddCommand(newChatCmd(&configPath))
	root.AddCommand(newSessionsCmd(&configPath))
	return root
}

func newChatCmd(configPath *string) *cobra.Command {
	var sessionID string
	var corpusDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start or resume an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if corpusDir != "" {
				cfg.CorpusDir = corpusDir
			}

			// Startup-fatal: no credential, no session.
			key, err := cfg.Credential()
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			r, err := buildRunner(cfg, key, logger)
			if err != nil {
				return err
			}

			sessionID, err = r.StartSession(sessionID)
			if err != nil {
				return err
			}
			fmt.Printf("session %s (type 'exit' to quit)\n", sessionID)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if input == "exit" || input == "quit" {
					break
				}
				result, err := r.ProcessMessage(cmd.Context(), sessionID, input)
				if err != nil {
					fmt.Fprintln(out, "turn failed:", err)
					continue
				}
				fmt.Fprintln(out, result.Response)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier to resume (empty mints a new one)")
	cmd.Flags().StringVar(&corpusDir, "corpus", "", "override the corpus directory")
	return cmd
}

func newSessionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List persisted sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			store, err := session.NewFileStore(filepath.Join(cfg.DataDir, "sessions"))
			if err != nil {
				return err
			}
			ids, err := store.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				rec, err := store.Load(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tactive: %s\n", id, strings.Join(rec.ActiveDocuments, ", "))
			}
			return nil
		},
	}
}

func buildRunner(cfg config.Config, key string, logger logging.Logger) (*runner.Runner, error) {
	store, err := corpus.NewDirStore(cfg.CorpusDir)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewFileStore(filepath.Join(cfg.DataDir, "sessions"))
	if err != nil {
		return nil, err
	}
	checkpoints, err := workflow.NewFileCheckpointStore(filepath.Join(cfg.DataDir, "checkpoints"))
	if err != nil {
		return nil, err
	}
	auditLog, err := audit.NewFileLog(filepath.Join(cfg.DataDir, "audit"))
	if err != nil {
		return nil, err
	}

	r, err := runner.New(newModel(cfg, key), store, func(o *runner.Options) {
		o.SessionStore = sessions
		o.Checkpoints = checkpoints
		o.Audit = auditLog
		o.Compressor = memory.NewCompressor(func(mo *memory.Options) {
			mo.SummaryBudget = cfg.SummaryBudget
			mo.ActiveDocumentCap = cfg.ActiveDocumentCap
		})
		o.TurnTimeout = cfg.TurnTimeout
		o.Logger = logger
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func newModel(cfg config.Config, key string) model.Model {
	if cfg.Provider == "anthropic" {
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			o.APIKey = key
		})
	}
	return openai.NewModel(func(o *openai.Options) {
		if cfg.Model != "" {
			o.Model = cfg.Model
		}
		o.Temperature = cfg.Temperature
		o.APIKey = key
	})
}

func newLogger(cfg config.Config) logging.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return logging.New(func(o *logging.Options) {
		o.Level = level
		o.Format = cfg.LogFormat
	})
}
