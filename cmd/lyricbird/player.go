package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/lyricbird/lyricbird/internal/playback"
)

const mprisPrefix = "org.mpris.MediaPlayer2."

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "inspect mpris media players",
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list mpris players on the session bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		var names []string
		if err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
			return fmt.Errorf("failed to list bus names: %w", err)
		}

		found := false
		for _, name := range names {
			if strings.HasPrefix(name, mprisPrefix) {
				fmt.Println(name)
				found = true
			}
		}
		if !found {
			fmt.Println("no mpris players found")
		}
		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show what the configured player is doing right now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.LogLevel)

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		source, err := playback.NewSource(bus, cfg.MprisService, cfg.PollInterval(), logger)
		if err != nil {
			return fmt.Errorf("failed to create playback source: %w", err)
		}

		snap, err := source.Current()
		if err != nil {
			return fmt.Errorf("failed to read player state: %w", err)
		}
		if snap.NoSession() {
			fmt.Println("nothing playing")
			return nil
		}

		state := "paused"
		if snap.Playing {
			state = "playing"
		}
		fmt.Println(snap.Track)
		if snap.Track.Album != "" {
			fmt.Printf("album: %s\n", snap.Track.Album)
		}
		fmt.Printf("position: %s (%s)\n", snap.Position.Round(time.Second), state)
		if snap.Track.Duration > 0 {
			fmt.Printf("duration: %s\n", snap.Track.Duration.Round(time.Second))
		}
		return nil
	},
}

func init() {
	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
	rootCmd.AddCommand(playerCmd)
}
