package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "position",
		Aliases: []string{"pos"},
		Short:   "Position and proximity commands",
	}

	cmd.AddCommand(newPositionReportCmd())
	cmd.AddCommand(newPositionNearbyCmd())
	cmd.AddCommand(newPositionGameAreaCmd())
	cmd.AddCommand(newPositionListCmd())
	cmd.AddCommand(newPositionGetCmd())

	return cmd
}

func newPositionReportCmd() *cobra.Command {
	var lon, lat float64

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report your current position",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]float64{
				"longitude": lon,
				"latitude":  lat,
			}
			var result Position

			if err := client.Post("/api/positions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude (required)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("lat")

	return cmd
}

func newPositionNearbyCmd() *cobra.Command {
	var lon, lat, distance float64

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Check in and list friends within --distance meters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if distance <= 0 {
				return fmt.Errorf("--distance must be greater than 0")
			}

			query := url.Values{}
			query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
			query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
			query.Set("distance", strconv.FormatFloat(distance, 'f', -1, 64))
			var result []NearbyPosition

			if err := client.Get("/api/positions/nearby?"+query.Encode(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude (required)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	cmd.Flags().Float64Var(&distance, "distance", 0, "Search radius in meters (required)")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("distance")

	return cmd
}

func newPositionGameAreaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "game-area",
		Short: "Show the game area polygon",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameArea

			if err := client.Get("/api/positions/game-area", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPositionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored position (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Position

			if err := client.Get("/api/positions/all", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPositionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email>",
		Short: "Show a friend's position (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Position

			if err := client.Get(emailPath("/api/positions/", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
