package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/parquet"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		out   string
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every aggregated cell to a Parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, _, err := c.build(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			var tick func()
			if !quiet {
				bar := progressbar.NewOptions(ds.Len(),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("exporting cells"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				defer bar.Finish() //nolint:errcheck // progress output only
				tick = func() { _ = bar.Add(1) }
			}

			n, err := parquet.Export(cmd.Context(), out, ds, tick)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cells to %s\n", n, out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "traffic_cells.parquet", "output Parquet file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}
