package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

func newCellsCmd(c *cli) *cobra.Command {
	var (
		year, hour int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "cells",
		Short: "Print the aggregated cells for one year and hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hour < 0 || hour > 23 {
				return fmt.Errorf("hour must be between 0 and 23, got %d", hour)
			}
			ds, _, err := c.build(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			cells := ds.CellsFor(year, hour)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cells)
			}
			return writeCellTable(cmd.OutOrStdout(), cells)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "survey year")
	cmd.Flags().IntVar(&hour, "hour", 0, "hour of day, 0-23")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cobra.CheckErr(cmd.MarkFlagRequired("year"))
	cobra.CheckErr(cmd.MarkFlagRequired("hour"))
	return cmd
}

func writeCellTable(w io.Writer, cells []domain.Cell) error {
	if len(cells) == 0 {
		_, err := fmt.Fprintln(w, "no data for this selection")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LAT\tLON\tVOLUME")
	for _, c := range cells {
		fmt.Fprintf(tw, "%.6f\t%.6f\t%.2f\n", c.Lat, c.Lon, c.Volume)
	}
	return tw.Flush()
}
