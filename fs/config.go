package fs

import (
	"context"
	"strings"
	"time"
)

// ConfigInfo is the runtime configuration shared by the commands.
//
// The clone policy is deliberately not in here - it is passed
// explicitly to each operation.
type ConfigInfo struct {
	LogLevel        LogLevel
	UseJSONLog      bool
	LowLevelRetries int           // total attempts for each remote call
	RetryBaseSleep  time.Duration // wait after the first failed attempt
	Transfers       int           // number of leaf copies in flight
	ListChunk       int64         // page size for listings
	TPSLimit        float64       // remote calls per second, 0 for unlimited
	TPSLimitBurst   int
	ConnectTimeout  time.Duration // for dialing and TLS handshakes
	Timeout         time.Duration // idle timeout waiting for responses
	UserAgent       string
	DumpHeaders     bool // log HTTP request and response headers
}

// Globals
var (
	// globalConfig for driveclone
	globalConfig = NewConfig()

	// CountError counts an error.  The commands use this to work out
	// the exit code.
	//
	// This is a function pointer to decouple the accounting
	// implementation from the fs
	CountError = func(err error) error { return err }
)

// NewConfig creates a new config with everything set to the default
// value.
func NewConfig() *ConfigInfo {
	c := new(ConfigInfo)
	c.LogLevel = LogLevelNotice
	c.LowLevelRetries = 6
	c.RetryBaseSleep = time.Second
	c.Transfers = 1
	c.ListChunk = 1000
	c.TPSLimit = 10
	c.TPSLimitBurst = 100
	c.ConnectTimeout = 60 * time.Second
	c.Timeout = 5 * 60 * time.Second
	c.UserAgent = "driveclone/" + Version
	return c
}

type configContextKeyType struct{}

// Context key for config
var configContextKey = configContextKeyType{}

// GetConfig returns the global or context sensitive context
func GetConfig(ctx context.Context) *ConfigInfo {
	if ctx == nil {
		return globalConfig
	}
	c := ctx.Value(configContextKey)
	if c == nil {
		return globalConfig
	}
	return c.(*ConfigInfo)
}

// AddConfig returns a mutable config structure based on a shallow
// copy of that found in ctx and returns a new context with that
// added to it.
func AddConfig(ctx context.Context) (context.Context, *ConfigInfo) {
	c := GetConfig(ctx)
	cCopy := new(ConfigInfo)
	*cCopy = *c
	newCtx := context.WithValue(ctx, configContextKey, cCopy)
	return newCtx, cCopy
}

// ConfigToEnv converts a config section and name, e.g. ("google_drive",
// "anyone_role") into an environment name
// "DRIVECLONE_GOOGLE_DRIVE_ANYONE_ROLE"
func ConfigToEnv(section, name string) string {
	return "DRIVECLONE_" + strings.ToUpper(strings.Replace(section+"_"+name, "-", "_", -1))
}

// OptionToEnv converts an option name, e.g. "log-level" into an
// environment name "DRIVECLONE_LOG_LEVEL"
func OptionToEnv(name string) string {
	return "DRIVECLONE_" + strings.ToUpper(strings.Replace(name, "-", "_", -1))
}
