// Package cmd implements the driveclone command
//
// It is in a sub package so it's internals can be re-used elsewhere
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rclone/driveclone/backend/drive"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/accounting"
	"github.com/rclone/driveclone/fs/config/configfile"
	"github.com/rclone/driveclone/fs/config/configflags"
	"github.com/rclone/driveclone/fs/config/configmap"
	"github.com/rclone/driveclone/fs/config/flags"
	"github.com/rclone/driveclone/fs/list"
	fslog "github.com/rclone/driveclone/fs/log"
	"github.com/rclone/driveclone/fs/log/logflags"
	"github.com/rclone/driveclone/fs/operations"
	"github.com/rclone/driveclone/lib/exitcode"
	"github.com/rclone/driveclone/lib/journal"
	"github.com/rclone/driveclone/lib/metrics"
	"github.com/rclone/driveclone/lib/pacer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Globals
var (
	// Flags
	metricsFile string
	// JournalPath is where the run journal is kept
	JournalPath = journal.DefaultPath()
	// NoJournal disables the run journal
	NoJournal bool

	// RunID identifies this invocation in the logs and the journal
	RunID = uuid.New().String()

	// Config is the loaded config file
	Config *configfile.File

	logCloser io.Closer

	// Errors
	errorNotEnoughArguments = errors.New("not enough arguments")
	errorTooManyArguments   = errors.New("too many arguments")
)

// Root is the main driveclone command
var Root = &cobra.Command{
	Use:   "driveclone",
	Short: "Clone Google Drive folder trees with personalised names",
	Long: `
Driveclone copies a folder tree in Google Drive into a new folder,
replacing a placeholder in the name of every item it makes, and then
shares the new folder.

Files are copied server side. Shortcuts are replaced by copies of
what they point to. Configuration is read from driveclone.yaml (or
.json/.toml) in the user config directory, from DRIVECLONE_*
environment variables and from the command line.
`,
	SilenceUsage: true,
}

func init() {
	ci := fs.GetConfig(context.Background())
	flagSet := Root.PersistentFlags()
	configflags.AddFlags(ci, flagSet)
	logflags.AddFlags(flagSet)
	flags.StringVarP(flagSet, &metricsFile, "metrics-file", "", metricsFile, "Write Prometheus metrics to this file on exit")
	flags.StringVarP(flagSet, &JournalPath, "journal", "", JournalPath, "Path of the run journal")
	flags.BoolVarP(flagSet, &NoJournal, "no-journal", "", NoJournal, "Don't record runs in the journal")
	cobra.OnInitialize(initConfig)
}

// initConfig is run by cobra after initialising the flags
func initConfig() {
	ci := fs.GetConfig(context.Background())

	// Finish parsing any command line flags
	err := configflags.SetFlags(ci, Root.PersistentFlags())
	if err != nil {
		log.Printf("Bad flags: %v", err)
		os.Exit(exitcode.UsageError)
	}

	// Start the logger
	fslog.Opt.RunID = RunID
	logCloser, err = fslog.InitLogging(ci)
	if err != nil {
		log.Fatalf("Failed to start logging: %v", err)
	}

	// Load the config
	Config, err = configfile.Load(configflags.ConfigPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(exitcode.UsageError)
	}

	// Write the args for debug purposes
	fs.Debugf("driveclone", "Version %q starting with parameters %q run %s", fs.Version, os.Args, RunID)
}

// Mapper returns the config for section with the flags in flagSet
// that were set overriding the environment and the config file
func Mapper(section string, flagSet *pflag.FlagSet) *configmap.Map {
	if Config == nil {
		Config = configfile.Empty()
	}
	if flagSet == nil {
		return Config.Mapper(section)
	}
	return Config.Mapper(section, flags.ChangedGetter{Flags: flagSet})
}

// Context returns a context which is cancelled on SIGINT or SIGTERM
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// NewFs makes the Google Drive remote from the google_drive config
func NewFs(ctx context.Context) (*drive.Fs, error) {
	return drive.NewFs(ctx, Mapper(configfile.SectionDrive, nil))
}

// NewReaderWriter makes the reader and writer for remote sharing a
// pacer set from the config
func NewReaderWriter(ctx context.Context, remote fs.Remote) (*list.Reader, *operations.Writer) {
	p := pacer.NewFromConfig(ctx)
	return list.NewReader(remote, p), operations.NewWriter(remote, p)
}

// OpenJournal opens the run journal unless it is disabled in which
// case it returns nil
func OpenJournal() (*journal.DB, error) {
	if NoJournal {
		return nil, nil
	}
	return journal.Open(JournalPath, fs.GetConfig(context.Background()).Timeout)
}

// Run the function with stats if required then exit with a code
// describing the error
func Run(showStats bool, cmd *cobra.Command, f func() error) {
	cmdErr := f()
	cmdErr = fs.CountError(cmdErr)
	if showStats || accounting.Stats.Errored() {
		accounting.Stats.Log()
	}
	fs.Debugf(nil, "%d go routines active", runtime.NumGoroutine())
	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			fs.Errorf(nil, "Failed to write metrics: %v", err)
		}
	}
	if cmdErr != nil {
		log.Printf("Failed to %s: %v", cmd.Name(), cmdErr)
	}
	resolveExitCode(cmdErr)
}

// CheckArgs checks there are enough arguments and prints a message if not
func CheckArgs(MinArgs, MaxArgs int, cmd *cobra.Command, args []string) {
	if len(args) < MinArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments minimum: you provided %d non flag arguments: %q\n", cmd.Name(), MinArgs, len(args), args)
		resolveExitCode(errorNotEnoughArguments)
	} else if len(args) > MaxArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments maximum: you provided %d non flag arguments: %q\n", cmd.Name(), MaxArgs, len(args), args)
		resolveExitCode(errorTooManyArguments)
	}
}

// ExitCode returns the exit status for err
func ExitCode(err error) int {
	if err == errorNotEnoughArguments || err == errorTooManyArguments {
		return exitcode.UsageError
	}
	return exitcode.FromError(err)
}

func resolveExitCode(err error) {
	if logCloser != nil {
		_ = logCloser.Close()
	}
	os.Exit(ExitCode(err))
}

// Main runs driveclone interpreting flags and commands out of os.Args
func Main() {
	if err := Root.Execute(); err != nil {
		log.Printf("Fatal error: %v", err)
		os.Exit(exitcode.UsageError)
	}
}
