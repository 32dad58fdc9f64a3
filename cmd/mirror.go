package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/devserver/store"
)

const mirrorBatchSize = 500

var mirrorEvent string

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Replay analytics.json into the configured sinks",
	Long: `Copies every stored event (or only those named by --event) into the
configured ClickHouse, Postgres and SQLite sinks. Useful after enabling a sink
on an existing analytics.json. Running it twice inserts the events twice.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAnalyticsStore()
		if err != nil {
			return err
		}
		mirror, err := store.OpenSinks(cmd.Context(), cfg.Sinks, logger)
		if err != nil {
			return fmt.Errorf("opening event mirrors: %w", err)
		}
		defer func() {
			if err := mirror.Close(); err != nil {
				logger.Error("closing event mirrors", zap.Error(err))
			}
		}()
		if mirror.Len() == 0 {
			return fmt.Errorf("no sinks configured")
		}

		doc, err := s.Read()
		if err != nil {
			return err
		}

		events := doc.Events
		if mirrorEvent != "" {
			events = events[:0:0]
			for _, e := range doc.Events {
				if e.Event == mirrorEvent {
					events = append(events, e)
				}
			}
		}

		for start := 0; start < len(events); start += mirrorBatchSize {
			end := min(start+mirrorBatchSize, len(events))
			if err := mirror.Write(cmd.Context(), events[start:end]); err != nil {
				return fmt.Errorf("mirroring events %d-%d: %w", start, end, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Mirrored %d events to %d sinks\n", len(events), mirror.Len())
		return nil
	},
}

func init() {
	mirrorCmd.Flags().StringVar(&mirrorEvent, "event", "", "only mirror events with this name (e.g. page_view)")
	rootCmd.AddCommand(mirrorCmd)
}
