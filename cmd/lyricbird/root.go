package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	flagMprisService  string
	flagLrclibURL     string
	flagSyncOffset    float64
	flagContextBefore int
	flagContextAfter  int
	flagHideHeader    bool
	flagLogLevel      string
	flagConfigPath    string
)

var rootCmd = &cobra.Command{
	Use:   "lyricbird",
	Short: "synced lyrics overlay for the currently playing track",
	Long: `lyricbird tracks whatever mpris media player is active and displays
time-synced lyrics for the current track, fetched from lrclib.

when run without a subcommand, it starts the interactive viewer.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args)
	}
	rootCmd.PersistentFlags().StringVarP(&flagMprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	rootCmd.PersistentFlags().StringVar(&flagLrclibURL, "lrclib-url", "", "custom lrclib api url")
	rootCmd.PersistentFlags().Float64VarP(&flagSyncOffset, "sync-offset", "s", 0, "initial sync offset in seconds")
	rootCmd.PersistentFlags().IntVar(&flagContextBefore, "context-before", -1, "lyric lines shown before the current one")
	rootCmd.PersistentFlags().IntVar(&flagContextAfter, "context-after", -1, "lyric lines shown after the current one")
	rootCmd.PersistentFlags().BoolVarP(&flagHideHeader, "hide-header", "H", false, "hide header section")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
