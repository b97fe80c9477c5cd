package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wemscribe/internal/assets"
	"wemscribe/internal/logging"
	"wemscribe/internal/preflight"
	"wemscribe/internal/queue"
	"wemscribe/internal/results"
	"wemscribe/internal/services/whisper"
	"wemscribe/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		dirFlag       string
		listFlag      string
		modelFlag     string
		languageFlag  string
		translateFlag string
		deviceFlag    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Locate, convert, and transcribe the requested assets",
		Long: "Reads a request list (one asset filename per line), finds each file under\n" +
			"the search directory, converts it through the external tools, transcribes\n" +
			"it, and appends a (filename, voiceline) row to the output CSV.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if modelFlag != "" {
				cfg.Whisper.Model = strings.ToLower(strings.TrimSpace(modelFlag))
			}
			if languageFlag != "" {
				cfg.Whisper.Language = strings.ToLower(strings.TrimSpace(languageFlag))
			}
			if translateFlag != "" {
				cfg.Whisper.TranslateTo = strings.ToLower(strings.TrimSpace(translateFlag))
			}
			if deviceFlag != "" {
				cfg.Whisper.Device = strings.ToLower(strings.TrimSpace(deviceFlag))
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			// One run at a time; concurrent runs would race on the
			// workspaces and the output table.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "wemscribe.lock"))
			acquired, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !acquired {
				return errors.New("another wemscribe run is already in progress")
			}
			defer func() { _ = lock.Unlock() }()

			requests, err := assets.ParseRequestFile(listFlag)
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				return fmt.Errorf("request list %s contains no asset names", listFlag)
			}

			locator, err := assets.NewLocator(dirFlag)
			if err != nil {
				return err
			}

			if failed := preflight.Failures(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				return fmt.Errorf("preflight failed:\n  %s", strings.Join(failed, "\n  "))
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := whisper.NewEngine(whisper.Config{
				Binary:         cfg.Whisper.Binary,
				Model:          cfg.Whisper.Model,
				Device:         cfg.Whisper.Device,
				TimeoutSeconds: cfg.Whisper.Timeout,
			})
			defer func() { _ = engine.Close() }()

			sink, err := results.NewSink(cfg.Paths.OutputCSV)
			if err != nil {
				return err
			}

			stages, err := workflow.NewStages(cfg, logger, engine, sink)
			if err != nil {
				return err
			}
			manager := workflow.NewManager(cfg, store, logger, stages)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, runErr := manager.Run(runCtx, uuid.NewString(), locator, requests)
			if closeErr := sink.Close(); closeErr != nil && runErr == nil {
				runErr = closeErr
			}

			if summary != nil {
				renderSummary(cmd.OutOrStdout(), summary)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", ".", "Directory tree to search for requested assets")
	cmd.Flags().StringVarP(&listFlag, "list", "l", "", "Text file naming one asset per line")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Whisper model size (tiny, base, small, medium, large-v3)")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Audio language hint (auto or a supported ISO code)")
	cmd.Flags().StringVar(&translateFlag, "translate-to", "", "Translate transcripts (only en is supported)")
	cmd.Flags().StringVar(&deviceFlag, "device", "", "Inference device (auto, cuda, cpu)")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}
