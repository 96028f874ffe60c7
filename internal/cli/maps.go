package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "Map catalog commands",
	}

	cmd.AddCommand(newMapsListCmd())
	cmd.AddCommand(newMapsGetCmd())
	cmd.AddCommand(newMapsCreateCmd())

	return cmd
}

func newMapsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all maps in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []MapInfo

			if err := client.Get("/api/v1/maps", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMapsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind/id>",
		Short: "Get a map by reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapID, err := parseMapID(args[0])
			if err != nil {
				return err
			}

			var result MapInfo

			if err := client.Get(fmt.Sprintf("/api/v1/maps/%s/%s", mapID.Kind, mapID.ID), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMapsCreateCmd() *cobra.Command {
	var name, dataFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Upload a user map to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			var data json.RawMessage
			if dataFile != "" {
				raw, err := os.ReadFile(dataFile)
				if err != nil {
					return fmt.Errorf("failed to read map data: %w", err)
				}
				if !json.Valid(raw) {
					return fmt.Errorf("map data in %s is not valid JSON", dataFile)
				}
				data = raw
			}

			req := map[string]any{"name": name, "data": data}
			var result MapInfo

			if err := client.Post("/api/v1/maps", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Map name (required)")
	cmd.Flags().StringVar(&dataFile, "data", "", "Path to a JSON file holding the map geometry")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
