package main

import (
	"fmt"

	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
	deepgramtts "github.com/koscakluka/ema-voiceloop/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-voiceloop/internal/config"
	"github.com/spf13/cobra"
)

func newVoicesCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the voices the assistant can speak with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			voices := deepgramtts.GetAvailableVoices()
			if language != "" {
				voices = texttospeech.FilterByLanguage(voices, language)
			}
			for _, voice := range voices {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", voice.Name, voice.Language)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Only list voices of this language, falls back to all voices when none match")
	return cmd
}

func newConfigCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(flags.configPath)
				if err != nil {
					return err
				}
				data, err := cfg.YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := config.Schema()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			},
		},
	)
	return cmd
}
