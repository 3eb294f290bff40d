package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lyricbird/lyricbird/internal/lyrics"
	"github.com/lyricbird/lyricbird/internal/timeline"
	"github.com/lyricbird/lyricbird/internal/track"
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "query the lyrics backend directly",
}

var lyricsSearchCmd = &cobra.Command{
	Use:   "search <artist> <title>",
	Short: "search for synced lyrics and show ranked candidates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.LogLevel)
		client := lyrics.NewClient(cfg.LrclibURL, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		artist, title := args[0], args[1]
		candidates, err := client.Search(ctx, title, artist)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(candidates) == 0 {
			fmt.Println("no results")
			return nil
		}

		id := &track.Identity{Title: title, Artist: artist}
		best := lyrics.Rank(candidates, id, cfg.Tolerance())

		for i := range candidates {
			cand := &candidates[i]
			marker := " "
			if best != nil && cand.ID == best.ID {
				marker = "*"
			}
			kind := "plain"
			if cand.SyncedLyrics != "" {
				kind = "synced"
			}
			fmt.Printf("%s %s - %s [%s] (%.0fs, %s)\n",
				marker, cand.ArtistName, cand.TrackName, cand.AlbumName, cand.Duration, kind)
		}

		if best == nil {
			fmt.Println("\nno candidate passed ranking")
			return nil
		}

		tl, err := timeline.Parse(best.SyncedLyrics, "lrclib")
		if err != nil {
			return fmt.Errorf("best candidate has unusable lyrics: %w", err)
		}
		fmt.Printf("\nbest match: %s - %s (%d synced lines)\n", best.ArtistName, best.TrackName, len(tl.Lines))
		return nil
	},
}

func init() {
	lyricsCmd.AddCommand(lyricsSearchCmd)
	rootCmd.AddCommand(lyricsCmd)
}
