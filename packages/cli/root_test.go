package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogtb/go-spreadsheet/packages/config"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunFromStdin(t *testing.T) {
	stdout, _, err := execute(t, "set A1 2\nset B1 =A1*A1+1\nget B1\n", "run")
	require.NoError(t, err)
	assert.Equal(t, "B1: 5\n", stdout)
}

func TestRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("set A1 3\nset A2 =-A1\nprint values\n"), 0o600))

	stdout, _, err := execute(t, "", "run", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n-3\n", stdout)
}

func TestRunDashReadsStdin(t *testing.T) {
	stdout, _, err := execute(t, "size\n", "run", "-")
	require.NoError(t, err)
	assert.Equal(t, "size: 0x0\n", stdout)
}

func TestRunMissingFile(t *testing.T) {
	_, _, err := execute(t, "", "run", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestRunFailFast(t *testing.T) {
	stdout, _, err := execute(t, "set A1 =A1\nget A1\n", "run", "--fail-fast")
	require.Error(t, err)
	assert.ErrorIs(t, err, spreadsheet.ErrCircularDependency)
	assert.Equal(t, "error: circular dependency through A1\n", stdout)

	stdout, _, err = execute(t, "set A1 =A1\nget A1\n", "run")
	require.NoError(t, err)
	assert.Equal(t, "error: circular dependency through A1\nA1: <empty>\n", stdout)
}

func TestRunDebugLogging(t *testing.T) {
	_, stderr, err := execute(t, "set A1 1\n", "--log-level", "debug", "run")
	require.NoError(t, err)
	assert.Contains(t, stderr, "cell set")
	assert.Contains(t, stderr, "position=A1")
}

func TestRunInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "chatty", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spreadsheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n  format: json\nsheet:\n  formula_cache_size: 2\n"), 0o600))

	stdout, stderr, err := execute(t, "set A1 =1+1\nget A1\n", "--config", path, "run")
	require.NoError(t, err)
	assert.Equal(t, "A1: 2\n", stdout)
	assert.Contains(t, stderr, `"msg":"cell set"`)
}

func TestRunWithMetrics(t *testing.T) {
	t.Setenv("SPREADSHEET_METRICS_ADDR", "127.0.0.1:0")

	stdout, stderr, err := execute(t, "set A1 4\nget A1\n", "--log-level", "info", "run")
	require.NoError(t, err)
	assert.Equal(t, "A1: 4\n", stdout)
	assert.Contains(t, stderr, "serving metrics")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	log, err = NewLogger(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	_, err = NewLogger(config.LogConfig{Level: "loud", Format: "text"}, &buf)
	assert.Error(t, err)

	_, err = NewLogger(config.LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
