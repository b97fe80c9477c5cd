package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/results"
	"wemscribe/internal/services/whisper"
	"wemscribe/internal/workflow"
)

// The health command builds the same stage set the run command uses and
// reports each stage's readiness probe. The engine initializes lazily and
// the sink opens its file on first write, so probing touches neither the
// model nor a previous run's output table.
func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check readiness of every pipeline stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := whisper.NewEngine(whisper.Config{
				Binary: cfg.Whisper.Binary,
				Model:  cfg.Whisper.Model,
				Device: cfg.Whisper.Device,
			})
			sink, err := results.NewSink(cfg.Paths.OutputCSV)
			if err != nil {
				return err
			}

			stages, err := workflow.NewStages(cfg, logging.NewNop(), engine, sink)
			if err != nil {
				return err
			}
			manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

			var unready []string
			rows := make([][]string, 0, 5)
			for _, check := range manager.HealthChecks(cmd.Context()) {
				state := "ready"
				if !check.Ready {
					state = "not ready"
					unready = append(unready, check.Name)
				}
				rows = append(rows, []string{check.Name, state, check.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Stage", "State", "Detail"},
				rows,
			))

			if len(unready) > 0 {
				return fmt.Errorf("stages not ready: %s", strings.Join(unready, ", "))
			}
			return nil
		},
	}
}
