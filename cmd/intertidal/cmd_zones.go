package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/intertidal/pkg/intertidal"
)

var (
	zonesTide string

	statsCollection string
	statsField      string

	areaCorners []string
	areaBounds  string

	extentSelection bool
	extentValue     string
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Classify the surface into zones at a tide height",
	Long: `Classifies every surface cell as submerged (elevation at or below the tide)
or exposed, and stores the resulting zone polygons.

Examples:
  intertidal zones --tide 1.5
  intertidal zones --tide -0.25`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.session.SetTideHeightText(zonesTide); err != nil {
				return err
			}
			res, err := a.session.RecomputeZones(cmd.Context())
			if err != nil {
				return err
			}
			printZones(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count the values of a field",
	Long: `Counts each distinct value of --field over --collection and writes the
table to the configured output file. Only selected features are counted when
the collection has a selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			collection := statsCollection
			if collection == "" {
				collection = a.session.SelectedCollection()
			}
			field := statsField
			if field == "" {
				field = a.session.SelectedField()
			}
			table, err := a.session.ComputeFrequencyStatistics(collection, field)
			if err != nil {
				return err
			}
			return table.WriteReport(cmd.OutOrStdout())
		})
	},
}

var studyAreaCmd = &cobra.Command{
	Use:   "study-area",
	Short: "Store a study area polygon",
	Long: `Stores a polygon as the study area, replacing any previous one. Give the
corners with repeated --corner flags, or a rectangle with --bounds.

Examples:
  intertidal study-area --bounds 150.1,-35.2,150.4,-35.0
  intertidal study-area --corner 0,0 --corner 2,0 --corner 1,1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var corners [][]float64
		switch {
		case areaBounds != "" && len(areaCorners) > 0:
			return fmt.Errorf("--corner and --bounds are mutually exclusive")
		case areaBounds != "":
			b, err := parseBounds(areaBounds)
			if err != nil {
				return err
			}
			corners = intertidal.RectangleCorners(b)
		default:
			for _, c := range areaCorners {
				p, err := parseCorner(c)
				if err != nil {
					return err
				}
				corners = append(corners, p)
			}
		}

		return withApp(cmd.Context(), func(a *app) error {
			r, err := a.session.DrawStudyArea(cmd.Context(), corners)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Name, formatBounds(r.Bounds()))
			return nil
		})
	},
}

var extentCmd = &cobra.Command{
	Use:   "extent",
	Short: "Print the full extent of the workspace",
	Long: `Prints the union of every collection's extent. With --selection and a
--value for the default field, prints the extent of the matching features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if !extentSelection {
				b, err := a.session.ZoomToFullExtent()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatBounds(b))
				return nil
			}

			if _, err := a.session.ChooseValue(extentValue); err != nil {
				return err
			}
			b, ok, err := a.session.ZoomToSelection()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing selected")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatBounds(b))
			return nil
		})
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Open the help document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return a.session.OpenHelp().Wait()
		})
	},
}

func init() {
	zonesCmd.Flags().StringVarP(&zonesTide, "tide", "t", "0", "Tide height in metres")

	statsCmd.Flags().StringVar(&statsCollection, "collection", "", "Collection (default: first configured)")
	statsCmd.Flags().StringVar(&statsField, "field", "", "Field (default: configured default field)")

	extentCmd.Flags().BoolVar(&extentSelection, "selection", false, "Print the extent of the selection instead")
	extentCmd.Flags().StringVar(&extentValue, "value", "", "Value of the default field to select")

	studyAreaCmd.Flags().StringArrayVar(&areaCorners, "corner", nil, "Polygon corner as lon,lat (repeatable)")
	studyAreaCmd.Flags().StringVar(&areaBounds, "bounds", "", "Rectangle as minLon,minLat,maxLon,maxLat")
}

func printZones(w io.Writer, res *intertidal.ZoneResult) {
	fmt.Fprintf(w, "tide %g (generation %s)\n", res.TideHeight, res.Generation)
	fmt.Fprintf(w, "  %-28s %d cells, %d polygons\n", res.Submerged.Name, res.SubmergedCells, len(res.Submerged.Rings))
	fmt.Fprintf(w, "  %-28s %d cells, %d polygons\n", res.Exposed.Name, res.ExposedCells, len(res.Exposed.Rings))
	if res.Intertidal != nil {
		fmt.Fprintf(w, "  %-28s %d polygons\n", res.Intertidal.Name, len(res.Intertidal.Rings))
	}
	if res.UnclassifiedCells > 0 {
		fmt.Fprintf(w, "  %-28s %d cells\n", "unclassified", res.UnclassifiedCells)
	}
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma-separated numbers", s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseCorner(s string) ([]float64, error) {
	return parseFloats(s, 2)
}

func parseBounds(s string) (intertidal.Bounds, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return intertidal.Bounds{}, err
	}
	return intertidal.Bounds{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}, nil
}
