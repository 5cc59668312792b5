package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/intertidal/internal/store"
	"github.com/beetlebugorg/intertidal/pkg/intertidal"
)

var (
	selCollection string
	selField      string
	selValue      string
	selRegion     string
	selTide       string
	selZoom       bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields [collection]",
	Short: "List the fields of a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if len(args) == 1 {
				if err := a.session.ChooseCollection(args[0]); err != nil {
					return err
				}
			}
			fields, err := a.session.Fields()
			if err != nil {
				return err
			}
			for _, f := range fields {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		})
	},
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "List the distinct values of a field",
	Long: `Lists the distinct values of --field over --collection, sorted ascending.
Without flags the session defaults are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := cascade(a.session, selCollection, selField); err != nil {
				return err
			}
			printValues(cmd.OutOrStdout(), a.session.CandidateValues())
			return nil
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select features by value or by zone",
	Long: `Selects features of --collection either where --field equals --value, or
intersecting a zone given with --region (submerged, exposed or intertidal).

A zone filter first recomputes the zones at --tide.

Examples:
  intertidal select --field type --value footpath
  intertidal select --collection user_tracks --region submerged --tide 0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (selValue == "") == (selRegion == "") {
			return fmt.Errorf("exactly one of --value or --region is required")
		}
		return withApp(cmd.Context(), func(a *app) error {
			if err := cascade(a.session, selCollection, selField); err != nil {
				return err
			}

			var (
				n   int
				err error
			)
			if selRegion != "" {
				region, perr := intertidal.ParseExtentRegion(selRegion)
				if perr != nil {
					return perr
				}
				if err := a.session.SetTideHeightText(selTide); err != nil {
					return err
				}
				if _, err := a.session.RecomputeZones(cmd.Context()); err != nil {
					return err
				}
				n, err = a.session.ApplyRegionFilter(cmd.Context(), region)
			} else {
				n, err = a.session.ChooseValue(selValue)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printSelection(out, a.session, n); err != nil {
				return err
			}
			if selZoom {
				b, ok, err := a.session.ZoomToSelection()
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(out, "extent: %s\n", formatBounds(b))
				}
			}
			return nil
		})
	},
}

func init() {
	valuesCmd.Flags().StringVar(&selCollection, "collection", "", "Collection (default: first configured)")
	valuesCmd.Flags().StringVar(&selField, "field", "", "Field (default: configured default field)")

	selectCmd.Flags().StringVar(&selCollection, "collection", "", "Collection (default: first configured)")
	selectCmd.Flags().StringVar(&selField, "field", "", "Field (default: configured default field)")
	selectCmd.Flags().StringVar(&selValue, "value", "", "Select features whose field equals this value")
	selectCmd.Flags().StringVar(&selRegion, "region", "", "Select features intersecting this zone")
	selectCmd.Flags().StringVar(&selTide, "tide", "0", "Tide height used to compute zones for --region")
	selectCmd.Flags().BoolVar(&selZoom, "zoom", false, "Print the extent of the selection")
}

// cascade applies a collection and field choice, skipping empty steps.
func cascade(sess *intertidal.Session, collection, field string) error {
	if collection != "" {
		if err := sess.ChooseCollection(collection); err != nil {
			return err
		}
	}
	if field == "" && sess.Stage() == intertidal.StageCollectionChosen {
		field = sess.SelectedField()
	}
	if field == "" {
		return nil
	}
	return sess.ChooseField(field)
}

func printValues(w io.Writer, values []interface{}) {
	for _, v := range values {
		fmt.Fprintln(w, store.FormatValue(v))
	}
}

func printSelection(w io.Writer, sess *intertidal.Session, n int) error {
	ids, err := sess.SelectedIDs(sess.SelectedCollection())
	if err != nil {
		return err
	}
	text := make([]string, len(ids))
	for i, id := range ids {
		text[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(w, "%d selected in %s: %s\n", n, sess.SelectedCollection(), strings.Join(text, " "))
	return nil
}

func formatBounds(b intertidal.Bounds) string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}
