// Package journal provides the journal command.
package journal

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/cmd"
	"github.com/rclone/driveclone/fs/config/flags"
	"github.com/rclone/driveclone/lib/journal"
	"github.com/spf13/cobra"
)

var deleteRun bool

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.BoolVarP(cmdFlags, &deleteRun, "delete", "", deleteRun, "Delete the run from the journal")
}

var commandDefinition = &cobra.Command{
	Use:   "journal [run-id]",
	Short: `List clone runs or the items made by one.`,
	Long: `
Without arguments journal lists the runs recorded in the journal with
their status and new root. With a run ID it lists every item that run
made, in the order it made them, so a partially made tree can be found
and removed by hand.

    driveclone journal
    driveclone journal 0f8fad5b-d9cb-469f-a165-70867728950e
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 1, command, args)
		cmd.Run(false, command, func() error {
			if cmd.NoJournal {
				return errors.New("journal disabled with --no-journal")
			}
			db, err := cmd.OpenJournal()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			switch {
			case len(args) == 0:
				return listRuns(db, os.Stdout)
			case deleteRun:
				return db.Delete(args[0])
			}
			return listEntries(db, args[0], os.Stdout)
		})
	},
}

const timeFormat = "2006-01-02 15:04:05"

func listRuns(db *journal.DB, out io.Writer) error {
	runs, err := db.Runs()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tROOT\tSOURCE")
	for _, run := range runs {
		status := run.Status()
		if run.ErrorKind != "" {
			status += " (" + run.ErrorKind + ")"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", run.ID, run.Started.Local().Format(timeFormat), status, run.RootID, run.Source)
	}
	return w.Flush()
}

func listEntries(db *journal.DB, id string, out io.Writer) error {
	run, err := db.Run(id)
	if err != nil {
		return err
	}
	entries, err := db.Entries(id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Run %s from %q: %s\n", run.ID, run.Source, run.Status())
	if run.Error != "" {
		_, _ = fmt.Fprintf(out, "Error: %s\n", run.Error)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTIME\tKIND\tSOURCE\tDEST\tNAME")
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", entry.Seq, entry.Time.Local().Format(time.Kitchen), entry.Kind, entry.SourceID, entry.DestID, entry.DestName)
	}
	return w.Flush()
}
