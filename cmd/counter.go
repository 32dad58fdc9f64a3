package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"portfolio/devserver/utils"
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Print the all-time visit counter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAnalyticsStore()
		if err != nil {
			return err
		}
		counter, err := s.Counter()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Total visits: %s\n", counter.Formatted)
		return nil
	},
}

var summaryRange string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard for a range as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsValidRange(summaryRange) {
			return fmt.Errorf("invalid range %q: must be one of 24h, 7d, 30d, 90d", summaryRange)
		}
		s, err := openAnalyticsStore()
		if err != nil {
			return err
		}
		dashboard, err := s.Dashboard(summaryRange)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dashboard)
	},
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryRange, "range", "r", utils.DefaultRange, "window: 24h, 7d, 30d or 90d")
	rootCmd.AddCommand(counterCmd, summaryCmd)
}
