package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCharacterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Character commands",
	}

	cmd.AddCommand(newCharacterGetCmd())
	cmd.AddCommand(newCharacterCreateCmd())

	return cmd
}

func newCharacterGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your character",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Character

			if err := client.Get("/api/v1/character", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newCharacterCreateCmd() *cobra.Command {
	var name, faction string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create your character",
		Long: `Create your character. Each account gets exactly one character.

Faction must be one of: PIRATE, MARINE, BOUNTY_HUNTER.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || faction == "" {
				return fmt.Errorf("--name and --faction are required")
			}

			req := map[string]string{
				"name":    name,
				"faction": faction,
			}
			var result Character

			if err := client.Post("/api/v1/character/create", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Character name (required)")
	cmd.Flags().StringVar(&faction, "faction", "", "Faction: PIRATE, MARINE or BOUNTY_HUNTER (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("faction")

	return cmd
}
