// Package log provides logging for driveclone
package log

import (
	"context"
	"io"
	"log"
	"os"
	"reflect"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/sirupsen/logrus"
)

// Options contains options for the logging
type Options struct {
	File   string // Log everything to this file
	Format string // Comma separated list of log format options
	RunID  string // added to every JSON log entry if set
}

// Opt is the options for the logger
var Opt = Options{
	Format: "date,time",
}

// fnName returns the name of the calling +2 function
func fnName() string {
	pc, _, _, ok := runtime.Caller(2)
	name := "*Unknown*"
	if ok {
		name = runtime.FuncForPC(pc).Name()
		dot := strings.LastIndex(name, ".")
		if dot >= 0 {
			name = name[dot+1:]
		}
	}
	return name
}

// Trace debugs the entry and exit of the calling function
//
// It is designed to be used in a defer statement so it returns a
// function that logs the exit parameters.
//
// Any pointers in the exit function will be dereferenced
func Trace(o interface{}, format string, a ...interface{}) func(string, ...interface{}) {
	if fs.GetConfig(context.Background()).LogLevel < fs.LogLevelDebug {
		return func(format string, a ...interface{}) {}
	}
	name := fnName()
	fs.LogPrintf(fs.LogLevelDebug, o, name+": "+format, a...)
	return func(format string, a ...interface{}) {
		for i := range a {
			// read the values of the pointed to items
			typ := reflect.TypeOf(a[i])
			if typ != nil && typ.Kind() == reflect.Ptr {
				value := reflect.ValueOf(a[i])
				if value.IsNil() {
					a[i] = nil
				} else {
					a[i] = reflect.Indirect(value).Interface()
				}
			}
		}
		fs.LogPrintf(fs.LogLevelDebug, o, ">"+name+": "+format, a...)
	}
}

// parseFormat turns the --log-format string into flags for the
// standard logger
func parseFormat(format string) (flags int, err error) {
	for _, item := range strings.Split(format, ",") {
		switch strings.TrimSpace(item) {
		case "":
		case "date":
			flags |= log.Ldate
		case "time":
			flags |= log.Ltime
		case "microseconds":
			flags |= log.Lmicroseconds
		case "UTC":
			flags |= log.LUTC
		case "longfile":
			flags |= log.Llongfile
		case "shortfile":
			flags |= log.Lshortfile
		default:
			return 0, errors.Errorf("unknown --log-format item %q", item)
		}
	}
	return flags, nil
}

// runIDHook adds the run ID to every logrus entry
type runIDHook string

func (h runIDHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h runIDHook) Fire(entry *logrus.Entry) error {
	entry.Data["run"] = string(h)
	return nil
}

// InitLogging starts the logging as per the command line flags
//
// It returns the log file if one was opened so the caller can close
// it on exit.
func InitLogging(ci *fs.ConfigInfo) (io.Closer, error) {
	flags, err := parseFormat(Opt.Format)
	if err != nil {
		return nil, err
	}
	log.SetFlags(flags)

	var closer io.Closer
	var w io.Writer = os.Stderr
	if Opt.File != "" {
		f, err := os.OpenFile(Opt.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open log file")
		}
		_, err = f.Seek(0, io.SeekEnd)
		if err != nil {
			fs.Errorf(nil, "Failed to seek log file to end: %v", err)
		}
		w = f
		closer = f
	}
	log.SetOutput(w)
	logrus.SetOutput(w)

	// fs does the level filtering so let everything through
	logrus.SetLevel(logrus.DebugLevel)
	if ci.UseJSONLog {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		if Opt.RunID != "" {
			logrus.AddHook(runIDHook(Opt.RunID))
		}
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: Opt.File != ""})
	}
	return closer, nil
}
