package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Shop and inventory commands",
	}

	cmd.AddCommand(newShopListCmd())
	cmd.AddCommand(newShopBuyCmd())
	cmd.AddCommand(newInventoryCmd())

	return cmd
}

func newShopListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Shop

			if err := client.Get("/api/v1/inventory/shop", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newShopBuyCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "buy <item-id>",
		Short: "Buy an item from the shop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if quantity < 1 {
				return fmt.Errorf("--quantity must be at least 1")
			}

			req := map[string]any{
				"item_id":  args[0],
				"quantity": quantity,
				// Generated per invocation so a retried command is safe
				"idempotency_key": uuid.NewString(),
			}
			var result BuyResult

			if err := client.Post("/api/v1/inventory/buy", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "How many to buy")

	return cmd
}

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show your inventory and berries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Inventory

			if err := client.Get("/api/v1/inventory", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
