package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	language   string
	voice      string
	capture    string
	logFile    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := rootFlags{}

	cmd := &cobra.Command{
		Use:           "ema-voiceloop",
		Short:         "Talk to a rule based assistant from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&flags.language, "language", "", "Recognition and voice language, overrides the config")
	cmd.Flags().StringVar(&flags.voice, "voice", "", "Voice name, overrides the config")
	cmd.Flags().StringVar(&flags.capture, "capture", "", "Capture backend: miniaudio, portaudio or none")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "Log level")

	cmd.AddCommand(newVoicesCommand(), newConfigCommand(&flags))
	return cmd
}
