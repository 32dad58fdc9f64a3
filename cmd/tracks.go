package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/devserver/store"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [tag]",
	Short: "List the music catalogue, optionally filtered by tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.TracksFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.RootDir, path)
		}
		tracks, err := store.LoadTracks(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		tag := ""
		if len(args) == 1 {
			tag = args[0]
			fmt.Fprintf(out, "Tracks with tag %q:\n\n", tag)
		} else {
			fmt.Fprintf(out, "All tracks (%d total):\n\n", len(tracks))
		}

		filtered := store.FilterByTag(tracks, tag)
		if len(filtered) == 0 {
			fmt.Fprintln(out, "No tracks found")
			return nil
		}

		for i, t := range filtered {
			fmt.Fprintf(out, "%d. %s\n", i+1, t.Title)
			fmt.Fprintf(out, "   ID: %s\n", t.ID)
			fmt.Fprintf(out, "   Artist: %s\n", orDefault(t.Artist, "Unknown"))
			fmt.Fprintf(out, "   Tags: %s\n", strings.Join(t.Tags, ", "))
			fmt.Fprintf(out, "   Year: %s\n", orDefault(t.YearString(), "Unknown"))
			fmt.Fprintf(out, "   Audio: %s\n", orDefault(t.AudioURL(), "No audio"))
			fmt.Fprintf(out, "   Cover: %s\n\n", orDefault(t.Cover, "No cover"))
		}

		fmt.Fprintf(out, "Available tags: %s\n", strings.Join(store.AllTags(tracks), ", "))
		return nil
	},
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}
