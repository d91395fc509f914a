package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Check it satisfies the interfaces
var (
	_ pflag.Value  = (*LogLevel)(nil)
	_ fmt.Stringer = LogValueItem{}
)

type withString struct{}

func (withString) String() string {
	return "hello"
}

func TestLogValue(t *testing.T) {
	x := LogValue("x", 1)
	assert.Equal(t, "1", x.String())
	x = LogValue("x", withString{})
	assert.Equal(t, "hello", x.String())
}

func TestLogLevelString(t *testing.T) {
	for _, test := range []struct {
		in   LogLevel
		want string
	}{
		{LogLevelEmergency, "EMERGENCY"},
		{LogLevelNotice, "NOTICE"},
		{LogLevelDebug, "DEBUG"},
		{99, "LogLevel(99)"},
	} {
		assert.Equal(t, test.want, test.in.String(), test.in)
	}
}

func TestLogLevelSet(t *testing.T) {
	for _, test := range []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{"EMERGENCY", LogLevelEmergency, false},
		{"DEBUG", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", 0, true},
		{"Potato", 0, true},
	} {
		var got LogLevel
		err := got.Set(test.in)
		if test.err {
			require.Error(t, err, test.in)
		} else {
			require.NoError(t, err, test.in)
			assert.Equal(t, test.want, got, test.in)
		}
	}
}

func TestLogLevelUnmarshalJSON(t *testing.T) {
	for _, test := range []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{`"EMERGENCY"`, LogLevelEmergency, false},
		{`"DEBUG"`, LogLevelDebug, false},
		{`"Potato"`, 100, true},
		{`6`, LogLevelInfo, false},
		{`100`, 100, true},
	} {
		var got LogLevel
		err := json.Unmarshal([]byte(test.in), &got)
		if test.err {
			require.Error(t, err, test.in)
		} else {
			require.NoError(t, err, test.in)
			assert.Equal(t, test.want, got, test.in)
		}
	}
}

func captureLogPrint(t *testing.T) *[]string {
	var lines []string
	old := LogPrint
	LogPrint = func(level LogLevel, text string) {
		lines = append(lines, fmt.Sprintf("%s %s", level, text))
	}
	t.Cleanup(func() { LogPrint = old })
	return &lines
}

func TestLogLevelFiltering(t *testing.T) {
	lines := captureLogPrint(t)
	ci := GetConfig(context.Background())
	oldLevel := ci.LogLevel
	defer func() { ci.LogLevel = oldLevel }()
	ci.LogLevel = LogLevelNotice

	node := &Node{ID: "id1", Name: "a", Kind: KindFile}
	Errorf(node, "error %d", 1)
	Logf(node, "notice")
	Infof(node, "info")
	Debugf(nil, "debug")
	assert.Equal(t, []string{
		`ERROR file "a" (id1): error 1`,
		`NOTICE file "a" (id1): notice`,
	}, *lines)

	ci.LogLevel = LogLevelDebug
	Debugf(nil, "debug")
	assert.Equal(t, "DEBUG debug", (*lines)[2])
}

func TestLogPrintfJSON(t *testing.T) {
	ci := GetConfig(context.Background())
	oldJSON := ci.UseJSONLog
	defer func() { ci.UseJSONLog = oldJSON }()
	ci.UseJSONLog = true

	var buf bytes.Buffer
	oldOut := logrus.StandardLogger().Out
	oldFormatter := logrus.StandardLogger().Formatter
	oldLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetOutput(oldOut)
		logrus.SetFormatter(oldFormatter)
		logrus.SetLevel(oldLevel)
	}()

	LogPrintf(LogLevelNotice, &Cloned{ID: "new1", Name: "Dir"}, "made %v", LogValue("dst", "new1"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "made new1", entry["msg"])
	assert.Equal(t, "new1", entry["dst"])
	assert.Equal(t, "*fs.Cloned", entry["objectType"])
	assert.Equal(t, `"Dir" (new1)`, entry["object"])
}
