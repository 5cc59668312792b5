package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/logging"
	"github.com/beetlebugorg/intertidal/pkg/intertidal"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run an interactive session",
	Long: `Reads commands from standard input against one session, so zones computed
by one command can be used to filter in the next. Type "help" for commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return runShell(cmd.Context(), a.session, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

type shellFunc func(ctx context.Context, sess *intertidal.Session, args []string, out io.Writer) error

type shellCommand struct {
	usage string
	run   shellFunc
}

var shellCommands = map[string]shellCommand{
	"tide": {"tide <height>", func(_ context.Context, s *intertidal.Session, args []string, out io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		return s.SetTideHeightText(args[0])
	}},
	"presets": {"presets", func(_ context.Context, _ *intertidal.Session, _ []string, out io.Writer) error {
		for _, p := range intertidal.TidePresets() {
			fmt.Fprintf(out, "%g\n", p)
		}
		return nil
	}},
	"zones": {"zones", func(ctx context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		res, err := s.RecomputeZones(ctx)
		if err != nil {
			return err
		}
		printZones(out, res)
		return nil
	}},
	"collections": {"collections", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		for _, c := range s.Collections() {
			fmt.Fprintln(out, c)
		}
		return nil
	}},
	"collection": {"collection <name>", func(_ context.Context, s *intertidal.Session, args []string, _ io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		return s.ChooseCollection(args[0])
	}},
	"fields": {"fields", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		fields, err := s.Fields()
		if err != nil {
			return err
		}
		for _, f := range fields {
			fmt.Fprintln(out, f)
		}
		return nil
	}},
	"field": {"field <name>", func(_ context.Context, s *intertidal.Session, args []string, _ io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		return s.ChooseField(args[0])
	}},
	"values": {"values", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		printValues(out, s.CandidateValues())
		return nil
	}},
	"value": {"value <value>", func(_ context.Context, s *intertidal.Session, args []string, out io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		n, err := s.ChooseValue(args[0])
		if err != nil {
			return err
		}
		return printSelection(out, s, n)
	}},
	"region": {"region <submerged|exposed|intertidal>", func(ctx context.Context, s *intertidal.Session, args []string, out io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		r, err := intertidal.ParseExtentRegion(args[0])
		if err != nil {
			return err
		}
		n, err := s.ApplyRegionFilter(ctx, r)
		if err != nil {
			return err
		}
		return printSelection(out, s, n)
	}},
	"clear": {"clear", func(_ context.Context, s *intertidal.Session, _ []string, _ io.Writer) error {
		return s.ClearSelection()
	}},
	"selected": {"selected", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		ids, err := s.SelectedIDs(s.SelectedCollection())
		if err != nil {
			return err
		}
		return printSelection(out, s, len(ids))
	}},
	"stats": {"stats [collection field]", func(_ context.Context, s *intertidal.Session, args []string, out io.Writer) error {
		collection, field := s.SelectedCollection(), s.SelectedField()
		switch len(args) {
		case 0:
		case 2:
			collection, field = args[0], args[1]
		default:
			return errUsage
		}
		table, err := s.ComputeFrequencyStatistics(collection, field)
		if err != nil {
			return err
		}
		return table.WriteReport(out)
	}},
	"study-area": {"study-area <lon,lat> <lon,lat> <lon,lat>...", func(ctx context.Context, s *intertidal.Session, args []string, out io.Writer) error {
		corners := make([][]float64, 0, len(args))
		for _, a := range args {
			p, err := parseCorner(a)
			if err != nil {
				return err
			}
			corners = append(corners, p)
		}
		r, err := s.DrawStudyArea(ctx, corners)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", r.Name, formatBounds(r.Bounds()))
		return nil
	}},
	"rect": {"rect <minLon,minLat,maxLon,maxLat>", func(ctx context.Context, s *intertidal.Session, args []string, out io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		b, err := parseBounds(args[0])
		if err != nil {
			return err
		}
		r, err := s.DrawStudyArea(ctx, intertidal.RectangleCorners(b))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", r.Name, formatBounds(r.Bounds()))
		return nil
	}},
	"full-extent": {"full-extent", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		b, err := s.ZoomToFullExtent()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatBounds(b))
		return nil
	}},
	"zoom-selection": {"zoom-selection", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		b, ok, err := s.ZoomToSelection()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "nothing selected")
			return nil
		}
		fmt.Fprintln(out, formatBounds(b))
		return nil
	}},
	"docs": {"docs", func(_ context.Context, s *intertidal.Session, _ []string, _ io.Writer) error {
		return s.OpenHelp().Wait()
	}},
	"state": {"state", func(_ context.Context, s *intertidal.Session, _ []string, out io.Writer) error {
		snap := s.Snapshot()
		fmt.Fprintf(out, "tide:       %g\n", snap.TideHeight)
		fmt.Fprintf(out, "collection: %s\n", snap.Collection)
		fmt.Fprintf(out, "field:      %s\n", snap.Field)
		fmt.Fprintf(out, "stage:      %s\n", snap.Stage)
		if snap.RegionFilter != "" {
			fmt.Fprintf(out, "region:     %s\n", snap.RegionFilter)
		}
		ready := make([]string, len(snap.Ready))
		for i, r := range snap.Ready {
			ready[i] = string(r)
		}
		fmt.Fprintf(out, "ready:      %s\n", strings.Join(ready, " "))
		return nil
	}},
}

var errUsage = errors.New("wrong number of arguments")

// runShell executes one command per input line until EOF or "quit".
// Command errors are printed and the loop continues.
func runShell(ctx context.Context, sess *intertidal.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		words, err := shellquote.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(words) == 0 {
			continue
		}

		name, args := words[0], words[1:]
		switch name {
		case "quit", "exit":
			return nil
		case "help":
			printShellHelp(out)
			continue
		}

		c, ok := shellCommands[name]
		if !ok {
			fmt.Fprintf(out, "error: unknown command %q\n", name)
			continue
		}
		if err := c.run(ctx, sess, args, out); err != nil {
			if errors.Is(err, errUsage) {
				fmt.Fprintf(out, "usage: %s\n", c.usage)
				continue
			}
			logging.OrNop(logger).Debug("shell command failed", zap.String("command", name), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func printShellHelp(out io.Writer) {
	names := make([]string, 0, len(shellCommands))
	for name := range shellCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", shellCommands[name].usage)
	}
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  quit")
}
