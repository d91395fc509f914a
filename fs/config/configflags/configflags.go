// Package configflags defines the global flags used by driveclone.
// It is decoupled into a separate package so it can be replaced.
package configflags

import (
	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/config/flags"
	"github.com/spf13/pflag"
)

var (
	// these will get interpreted into fs.ConfigInfo via SetFlags() below
	verbose int
	quiet   bool

	// ConfigPath is the path of the config file, empty to search for it
	ConfigPath string
)

// AddFlags adds the non command specific flags to flagSet
func AddFlags(ci *fs.ConfigInfo, flagSet *pflag.FlagSet) {
	// NB defaults which aren't the zero for the type should be set in fs/config.go NewConfig
	flags.StringVarP(flagSet, &ConfigPath, "config", "", ConfigPath, "Config file (YAML, JSON or TOML)")
	flags.CountVarP(flagSet, &verbose, "verbose", "v", "Print lots more stuff (repeat for more)")
	flags.BoolVarP(flagSet, &quiet, "quiet", "q", false, "Print as little stuff as possible")
	flags.FVarP(flagSet, &ci.LogLevel, "log-level", "", "Log level DEBUG|INFO|NOTICE|ERROR")
	flags.BoolVarP(flagSet, &ci.UseJSONLog, "use-json-log", "", ci.UseJSONLog, "Use json log format")
	flags.IntVarP(flagSet, &ci.LowLevelRetries, "low-level-retries", "", ci.LowLevelRetries, "Number of attempts for each remote call")
	flags.DurationVarP(flagSet, &ci.RetryBaseSleep, "retry-base-sleep", "", ci.RetryBaseSleep, "Sleep after the first failed attempt, doubled after each further one")
	flags.IntVarP(flagSet, &ci.Transfers, "transfers", "", ci.Transfers, "Number of file copies to run in parallel")
	flags.Int64VarP(flagSet, &ci.ListChunk, "list-chunk", "", ci.ListChunk, "Size of listing chunk 100-1000")
	flags.Float64VarP(flagSet, &ci.TPSLimit, "tpslimit", "", ci.TPSLimit, "Limit remote calls per second to this, 0 for unlimited")
	flags.IntVarP(flagSet, &ci.TPSLimitBurst, "tpslimit-burst", "", ci.TPSLimitBurst, "Max burst of remote calls for --tpslimit")
	flags.DurationVarP(flagSet, &ci.ConnectTimeout, "contimeout", "", ci.ConnectTimeout, "Connect timeout")
	flags.DurationVarP(flagSet, &ci.Timeout, "timeout", "", ci.Timeout, "IO idle timeout")
	flags.StringVarP(flagSet, &ci.UserAgent, "user-agent", "", ci.UserAgent, "Set the user-agent to a specified string")
	flags.BoolVarP(flagSet, &ci.DumpHeaders, "dump-headers", "", ci.DumpHeaders, "Dump HTTP headers with the Authorization redacted")
}

// SetFlags converts any flags into config which weren't straight forward
func SetFlags(ci *fs.ConfigInfo, flagSet *pflag.FlagSet) error {
	if verbose >= 2 {
		ci.LogLevel = fs.LogLevelDebug
	} else if verbose >= 1 {
		ci.LogLevel = fs.LogLevelInfo
	}
	if quiet {
		if verbose > 0 {
			return errors.New("can't set -v and -q")
		}
		ci.LogLevel = fs.LogLevelError
	}
	logLevelFlag := flagSet.Lookup("log-level")
	if logLevelFlag != nil && logLevelFlag.Changed {
		if verbose > 0 {
			return errors.New("can't set -v and --log-level")
		}
		if quiet {
			return errors.New("can't set -q and --log-level")
		}
	}
	if ci.ListChunk < 1 || ci.ListChunk > 1000 {
		return errors.Errorf("--list-chunk must be between 1 and 1000, got %d", ci.ListChunk)
	}
	if ci.Transfers < 1 {
		return errors.Errorf("--transfers must be at least 1, got %d", ci.Transfers)
	}
	if ci.LowLevelRetries < 1 {
		return errors.Errorf("--low-level-retries must be at least 1, got %d", ci.LowLevelRetries)
	}
	return nil
}
