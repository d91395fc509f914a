package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, LogLevelNotice, c.LogLevel)
	assert.Equal(t, 6, c.LowLevelRetries)
	assert.Equal(t, time.Second, c.RetryBaseSleep)
	assert.Equal(t, 1, c.Transfers)
	assert.Equal(t, int64(1000), c.ListChunk)
}

func TestGetConfig(t *testing.T) {
	ctx := context.Background()

	// Check nil
	//lint:ignore SA1012 false positive when running staticcheck, we want to test passing a nil Context and therefore ignore lint suggestion to use context.TODO
	//nolint:staticcheck // Don't include staticcheck when running golangci-lint to avoid SA1012
	config := GetConfig(nil)
	assert.Equal(t, globalConfig, config)

	// Check empty config
	config = GetConfig(ctx)
	assert.Equal(t, globalConfig, config)

	// Check adding a config
	ctx2, config2 := AddConfig(ctx)
	config2.Transfers++
	assert.NotEqual(t, config2, config)

	// Check can get config back
	config2ctx := GetConfig(ctx2)
	assert.Equal(t, config2, config2ctx)
	assert.Equal(t, globalConfig.Transfers+1, config2ctx.Transfers)
}

func TestEnvNames(t *testing.T) {
	assert.Equal(t, "DRIVECLONE_GOOGLE_DRIVE_ANYONE_ROLE", ConfigToEnv("google_drive", "anyone_role"))
	assert.Equal(t, "DRIVECLONE_LOG_LEVEL", OptionToEnv("log-level"))
}
