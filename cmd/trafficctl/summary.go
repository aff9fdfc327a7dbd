package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

func newSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Build the dataset and print its shape and build counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, reg, err := c.build(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), ds, reg)
		},
	}
}

func writeSummary(w io.Writer, ds *domain.Dataset, reg prometheus.Gatherer) error {
	fmt.Fprintf(w, "build:   %s (%s)\n", ds.BuildID(), ds.BuiltAt().Format("2006-01-02 15:04:05Z07:00"))
	fmt.Fprintf(w, "cells:   %d\n", ds.Len())
	fmt.Fprintf(w, "years:   %s\n", joinInts(ds.AvailableYears()))
	fmt.Fprintf(w, "hours:   %s\n", joinInts(ds.AvailableHours()))
	if r, ok := ds.VolumeRange(); ok {
		fmt.Fprintf(w, "volume:  %.2f to %.2f\n", r.Min, r.Max)
	} else {
		fmt.Fprintln(w, "volume:  n/a")
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather build counters: %w", err)
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			name := strings.TrimPrefix(f.GetName(), "traffic_dashboard_")
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%s}", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%-40s %.0f\n", name, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "%-40s %.0f\n", name, m.GetGauge().GetValue())
			}
		}
	}
	return nil
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "none"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
