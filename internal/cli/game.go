package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Session lifecycle commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameShowCmd())
	cmd.AddCommand(newGameMapCmd())
	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameStateCmd())

	return cmd
}

// parseMapID splits a kind/id reference like "system/classic"
func parseMapID(ref string) (MapID, error) {
	kind, id, ok := strings.Cut(ref, "/")
	if !ok || kind == "" || id == "" {
		return MapID{}, fmt.Errorf("map reference must be kind/id, got %q", ref)
	}
	return MapID{Kind: kind, ID: id}, nil
}

func newGameCreateCmd() *cobra.Command {
	var mapRef string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game lobby",
		Long: `Create a new game lobby with yourself as host.

The returned join token is what other players use to join; your player
token is saved locally and authenticates every later command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if mapRef != "" {
				mapID, err := parseMapID(mapRef)
				if err != nil {
					return err
				}
				req["mapId"] = mapID
			}

			var result CreatedGame

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.PlayerToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mapRef, "map", "", "Map to play on, as kind/id (default: first map in the catalog)")

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <join-token>",
		Short: "Join a game lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"joinToken": args[0]}
			var result Joined

			if err := client.Post("/api/v1/games/join", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.PlayerToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get("/api/v1/games/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <kind/id>",
		Short: "Change the lobby's map (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapID, err := parseMapID(args[0])
			if err != nil {
				return err
			}

			req := map[string]any{"mapId": mapID}
			if err := client.Put("/api/v1/games/me/map", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Map changed to %s", mapID))
			return nil
		},
	}
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game (host only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Post("/api/v1/games/me/start", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the running game's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Get("/api/v1/games/me/state", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
