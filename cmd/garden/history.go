// ABOUTME: The history, report and init commands
// ABOUTME: Read stored runs back and write a starter config file

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/gardeners/internal/config"
	"github.com/2389/gardeners/internal/report"
	"github.com/2389/gardeners/internal/store"
)

// runHistory lists the most recent runs.
func runHistory(ctx context.Context, s store.Store, limit int, w io.Writer) error {
	runs, err := s.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSIZE\tSTATUS\tDURATION\tGARDENERS")
	for _, r := range runs {
		names := ""
		for i, g := range r.Gardeners {
			if i > 0 {
				names += ", "
			}
			names += fmt.Sprintf("%s (%d tended)", g.Name, g.Tended)
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.GridSize, r.GridSize,
			r.Status,
			r.Duration().Round(1e6),
			names,
		)
	}
	return tw.Flush()
}

// runReport prints one stored run as Markdown or HTML.
func runReport(ctx context.Context, s store.Store, id string, asHTML bool, w io.Writer) error {
	run, err := s.GetRun(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run %q not found", id)
	}
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}

	if asHTML {
		page, err := report.HTML(run)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	}
	_, err = io.WriteString(w, report.Markdown(run))
	return err
}

// runInit writes the default configuration unless a file already exists.
func runInit(path string, w io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Config written to %s\n", path)
	return nil
}
