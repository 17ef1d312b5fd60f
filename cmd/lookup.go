package cmd

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/thomhuang/australia-postcode/postcode"
)

func newPostcodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "postcode <postcode>",
		Short: "List the delivery areas of a postcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog(cmd)
			if err != nil {
				return err
			}
			records, err := c.FindByPostcodeString(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), orEmpty(records))
		},
	}
}

func newSuburbCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suburb <name>",
		Short: "List the delivery areas of a suburb",
		Long:  "List the delivery areas of a suburb. Matching ignores case but is otherwise exact.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog(cmd)
			if err != nil {
				return err
			}
			records, err := c.FindBySuburb(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), orEmpty(records))
		},
	}
}

func newNearestCmd(a *app) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "nearest --lat <lat> --lon <lon>",
		Short: "Find the delivery area closest to a coordinate pair",
		Long: `Find the delivery area closest to a coordinate pair.

Closeness is measured in degrees of latitude and longitude rather than along
the Earth's surface, so far from the equator the result may not be the
geographically nearest postcode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog(cmd)
			if err != nil {
				return err
			}
			record, err := c.FindNearest(lat, lon)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

type distanceResult struct {
	From postcode.Record `json:"from"`
	To   postcode.Record `json:"to"`
	Km   float64         `json:"km"`
}

func newDistanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <from> <to>",
		Short: "Great-circle distance in km between two postcodes",
		Long:  "Great-circle distance in km between the first delivery areas of two postcodes.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog(cmd)
			if err != nil {
				return err
			}

			var ends [2]postcode.Record
			for i, arg := range args {
				records, err := c.FindByPostcodeString(arg)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return eris.Errorf("no delivery area for postcode %s", arg)
				}
				ends[i] = records[0]
			}

			return writeJSON(cmd.OutOrStdout(), distanceResult{
				From: ends[0],
				To:   ends[1],
				Km:   ends[0].DistanceTo(ends[1]),
			})
		},
	}
}

// orEmpty keeps a miss printing as [] rather than null.
func orEmpty(records []postcode.Record) []postcode.Record {
	if records == nil {
		return []postcode.Record{}
	}
	return records
}
