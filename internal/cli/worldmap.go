package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Tile map commands",
	}

	cmd.AddCommand(newMapShowCmd())
	cmd.AddCommand(newMapMoveCmd())

	return cmd
}

func newMapShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the village tile map",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TileMap

			if err := client.Get("/api/v1/map", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// moveDeltas maps direction names to unit steps
var moveDeltas = map[string][2]int{
	"up":    {0, -1},
	"down":  {0, 1},
	"left":  {-1, 0},
	"right": {1, 0},
}

func newMapMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <up|down|left|right>",
		Short: "Move your character one tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, ok := moveDeltas[args[0]]
			if !ok {
				return fmt.Errorf("direction must be up, down, left or right")
			}

			req := map[string]int{"dx": delta[0], "dy": delta[1]}
			var result MoveResult

			if err := client.Post("/api/v1/map/move", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
