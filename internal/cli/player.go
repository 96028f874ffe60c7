package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player identity commands",
	}

	cmd.AddCommand(newPlayerNameCmd())
	cmd.AddCommand(newPlayerColorCmd())

	return cmd
}

func newPlayerNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name <name>",
		Short: "Set your display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": args[0]}
			if err := client.Patch("/api/v1/games/me/name", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Name set to %s", args[0]))
			return nil
		},
	}
}

func newPlayerColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <red> <green> <blue>",
		Short: "Set your color (must be a palette color nobody else holds)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			components := make([]int, 3)
			for i, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil || v < 0 || v > 255 {
					return fmt.Errorf("color components must be integers 0-255, got %q", arg)
				}
				components[i] = v
			}

			color := Color{Red: components[0], Green: components[1], Blue: components[2]}
			req := map[string]any{"color": color}
			if err := client.Patch("/api/v1/games/me/color", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Color set to %s", color))
			return nil
		},
	}
}
