package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/neo-vesting/cli/vesting"
	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "NeoVesting\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a neo-vesting instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "neo-vesting"
	ctl.Version = config.Version
	ctl.Usage = "Token vesting schedule ledger"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, vesting.NewCommands()...)
	return ctl
}
