package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-vesting/cli/app"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const (
	ownerAddr     = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	investor1Addr = "0x1111111111111111111111111111111111111111"
	investor2Addr = "0x2222222222222222222222222222222222222222"

	configTemplate = `ApplicationConfiguration:
  DBConfiguration:
    Type: boltdb
    BoltDBOptions:
      FilePath: %s
  LogLevel: debug
  LogPath: %s
Vesting:
  Owner: "` + ownerAddr + `"
  TokenName: "Vested Token"
  TokenSymbol: "VT"
`
)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// ConfigFile is the path to the configuration of the ledger used by all
	// commands, the ledger is stored in a temporary BoltDB file.
	ConfigFile string
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
}

func newExecutor(t *testing.T) *executor {
	d := t.TempDir()
	cfgPath := filepath.Join(d, "vesting.yml")
	cfg := fmt.Sprintf(configTemplate, filepath.Join(d, "vesting.bolt"), filepath.Join(d, "vesting.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	e := &executor{
		CLI:        app.New(),
		ConfigFile: cfgPath,
		Out:        bytes.NewBuffer(nil),
		Err:        bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	return e
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

// checkOutput checks that the whole remaining output contains all of the
// given substrings.
func (e *executor) checkOutput(t *testing.T, expected ...string) {
	out := e.Out.String()
	for _, s := range expected {
		require.Contains(t, out, s)
	}
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that it fails. Usage errors are
// reported by the framework without exit code.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	select {
	case c := <-ch:
		require.Equal(t, 1, c)
	default:
	}
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

// RunLedger runs ledger command with the executor configuration.
func (e *executor) RunLedger(t *testing.T, args ...string) {
	e.Run(t, e.withConfig(args)...)
}

// RunLedgerWithError runs ledger command with the executor configuration
// and checks that it fails.
func (e *executor) RunLedgerWithError(t *testing.T, args ...string) {
	e.RunWithError(t, e.withConfig(args)...)
}

func (e *executor) withConfig(args []string) []string {
	res := append([]string{"neo-vesting", args[0], "--config-file", e.ConfigFile}, args[1:]...)
	return res
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	return e.CLI.Run(args)
}
