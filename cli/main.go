// Command neo-vesting operates the token vesting ledger.
package main

import (
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-vesting/cli/app"
)

func main() {
	ctl := app.New()
	if err := ctl.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(ctl.ErrWriter, "%s: %v\n", ctl.Name, err)
		os.Exit(1)
	}
}
