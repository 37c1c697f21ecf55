package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mihai-snyk/map-elites/pkg/mapelites"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render archive.png from the archive arrays in the working directory",
	Long: "Loads objectives.npy, measures.npy, solutions.npy and occupied.npy from the\n" +
		"working directory, inserts the occupied entries into a 20x20 grid archive over\n" +
		"[-1, 1] x [-1, 1] and saves a heatmap of it to archive.png.",
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func runPlot(cmd *cobra.Command, _ []string) error {
	res, err := mapelites.PlotArchive(cmd.Context(), mapelites.DefaultPlotArgs())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d entries (%d elites) into %s\n", res.Inserted, res.Elites, res.Output)
	return nil
}
