package cmd

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWithinCmd(a *app) *cobra.Command {
	var lat, lon, radius float64

	cmd := &cobra.Command{
		Use:   "within --lat <lat> --lon <lon> --radius <km>",
		Short: "List delivery areas within a radius, nearest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog(cmd)
			if err != nil {
				return err
			}
			records, err := c.Within(lat, lon, radius)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), orEmpty(records))
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	cmd.Flags().Float64Var(&radius, "radius", 25, "search radius in km")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func newNearbyCmd(a *app) *cobra.Command {
	var (
		radius  float64
		workers int
		out     string
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Write every postcode's neighbouring postcodes as JSON",
		Long: `Write a JSON object mapping every postcode to the postcodes within the
radius of it. Each postcode is located at its first delivery area.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("radius") {
				radius = a.cfg.Nearby.RadiusKm
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Nearby.Workers
			}

			c, err := a.catalog(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			nearby, err := c.Nearby(cmd.Context(), radius, workers)
			if err != nil {
				return err
			}

			if out == "-" {
				return writeJSON(cmd.OutOrStdout(), nearby)
			}

			file, err := os.Create(out)
			if err != nil {
				return eris.Wrapf(err, "create %s", out)
			}
			defer file.Close()

			if err := writeJSON(file, nearby); err != nil {
				return err
			}

			zap.L().Info("wrote nearby postcodes",
				zap.String("file", out),
				zap.Int("postcodes", len(nearby)),
				zap.Float64("radius_km", radius),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 25, "neighbourhood radius in km (default from nearby.radius_km)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines, 0 for 4 per CPU (default from nearby.workers)")
	cmd.Flags().StringVarP(&out, "out", "o", "NearbyPostcodes.json", "output file, - for stdout")
	return cmd
}
