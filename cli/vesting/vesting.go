/*
Package vesting implements CLI commands operating the vesting ledger.
*/
package vesting

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/cli/flags"
	"github.com/nspcc-dev/neo-vesting/cli/options"
	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/nspcc-dev/neo-vesting/pkg/core"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/nspcc-dev/neo-vesting/pkg/encoding/fixedn"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	callerFlag = flags.AddressFlag{
		Name:  "caller, c",
		Usage: "account performing the operation",
	}
	investorFlag = flags.AddressFlag{
		Name:  "investor, i",
		Usage: "investor account",
	}
	timeFlag = cli.Uint64Flag{
		Name:  "time",
		Usage: "operation time as Unix timestamp in seconds (current time if not set)",
	}
	typeFlag = cli.StringFlag{
		Name:  "type, t",
		Value: "seed",
		Usage: "allocation type name or number",
	}
)

// NewCommands returns vesting commands.
func NewCommands() []cli.Command {
	var (
		opFlags    = append([]cli.Flag{callerFlag, timeFlag}, options.Common...)
		queryFlags = options.Common
	)
	return []cli.Command{
		{
			Name:      "init",
			Usage:     "Set vesting start time",
			UsageText: "neo-vesting init --caller <addr> --timestamp <unix> [--time <unix>] [--config-file <file>]",
			Action:    setInitialTimestamp,
			Flags: append(flags.MarkRequired(opFlags, "caller"), cli.Uint64Flag{
				Name:     "timestamp",
				Usage:    "vesting start as Unix timestamp in seconds",
				Required: true,
			}),
		},
		{
			Name:      "add-investors",
			Usage:     "Add grants of some allocation type",
			UsageText: "neo-vesting add-investors --caller <addr> [--type <type>] [--time <unix>] <addr>:<amount> [<addr>:<amount> ...]",
			Description: `Adds amounts (in whole tokens, fractions are allowed up to token decimals)
   to the grants of the given allocation type of every investor. All grants
   are added in one operation, nothing is added if any of them is invalid.`,
			Action: addInvestors,
			Flags:  append(flags.MarkRequired(opFlags, "caller"), typeFlag),
		},
		{
			Name:      "withdraw",
			Usage:     "Withdraw unlocked tokens of the investor",
			UsageText: "neo-vesting withdraw --investor <addr> [--time <unix>]",
			Action:    withdraw,
			Flags:     append([]cli.Flag{flags.MarkRequired([]cli.Flag{investorFlag}, "investor")[0], timeFlag}, options.Common...),
		},
		{
			Name:      "change-investor",
			Usage:     "Move unreleased grants from one investor to another",
			UsageText: "neo-vesting change-investor --caller <addr> --from <addr> --to <addr> [--time <unix>]",
			Action:    changeInvestor,
			Flags: append(flags.MarkRequired(opFlags, "caller"),
				flags.AddressFlag{Name: "from", Usage: "current investor", Required: true},
				flags.AddressFlag{Name: "to", Usage: "new investor", Required: true}),
		},
		{
			Name:      "permission",
			Usage:     "Grant or revoke account permission",
			UsageText: "neo-vesting permission --caller <addr> --account <addr> --perm mint|burn|vesting [--enable]",
			Action:    setPermission,
			Flags: append(flags.MarkRequired(opFlags, "caller"),
				flags.AddressFlag{Name: "account, a", Usage: "account to change permissions of", Required: true},
				cli.StringFlag{Name: "perm, p", Usage: "permission name (mint, burn or vesting)", Required: true},
				cli.BoolFlag{Name: "enable", Usage: "grant permission (revoke if not set)"}),
		},
		{
			Name:      "transfer-ownership",
			Usage:     "Set the new owner",
			UsageText: "neo-vesting transfer-ownership --caller <addr> --owner <addr>",
			Action:    transferOwnership,
			Flags: append(flags.MarkRequired(opFlags, "caller"),
				flags.AddressFlag{Name: "owner", Usage: "new owner", Required: true}),
		},
		{
			Name:      "burn",
			Usage:     "Burn tokens of the account",
			UsageText: "neo-vesting burn --caller <addr> --account <addr> --amount <amount>",
			Action:    burn,
			Flags: append(flags.MarkRequired(opFlags, "caller"),
				flags.AddressFlag{Name: "account, a", Usage: "account to burn tokens of", Required: true},
				cli.StringFlag{Name: "amount", Usage: "amount of tokens", Required: true}),
		},
		{
			Name:      "claimable",
			Usage:     "Show amounts the investor can withdraw",
			UsageText: "neo-vesting claimable --investor <addr> [--time <unix>]",
			Action:    showClaimable,
			Flags:     append([]cli.Flag{flags.MarkRequired([]cli.Flag{investorFlag}, "investor")[0], timeFlag}, queryFlags...),
		},
		{
			Name:      "grants",
			Usage:     "Show grants",
			UsageText: "neo-vesting grants [--investor <addr>]",
			Action:    showGrants,
			Flags:     append([]cli.Flag{investorFlag}, queryFlags...),
		},
		{
			Name:      "schedule",
			Usage:     "Show release timetable of a grant",
			UsageText: "neo-vesting schedule [--type <type>] [--amount <amount>] [--start <unix>]",
			Description: `Prints unlock steps of a grant of the given amount. Times are absolute
   if the vesting start is known (set in the ledger or with --start), they're
   offsets from the start otherwise.`,
			Action: showSchedule,
			Flags: append([]cli.Flag{typeFlag,
				cli.StringFlag{Name: "amount", Value: "1", Usage: "grant amount in tokens"},
				cli.Uint64Flag{Name: "start", Usage: "vesting start (ledger value by default)"},
			}, queryFlags...),
		},
		{
			Name:      "policies",
			Usage:     "Show allocation policies",
			UsageText: "neo-vesting policies",
			Action:    showPolicies,
			Flags:     queryFlags,
		},
		{
			Name:      "events",
			Usage:     "Show audit log",
			UsageText: "neo-vesting events [--start <index>] [--count <n>]",
			Action:    showEvents,
			Flags: append([]cli.Flag{
				cli.Uint64Flag{Name: "start", Usage: "first event index"},
				cli.IntFlag{Name: "count", Usage: "maximum number of events (all if not set)"},
			}, queryFlags...),
		},
		{
			Name:      "balance",
			Usage:     "Show token balance of the account",
			UsageText: "neo-vesting balance --account <addr>",
			Action:    showBalance,
			Flags: append([]cli.Flag{
				flags.AddressFlag{Name: "account, a", Usage: "account to show balance of", Required: true},
			}, queryFlags...),
		},
		{
			Name:      "monitor",
			Usage:     "Export ledger metrics until interrupted",
			UsageText: "neo-vesting monitor [--config-file <file>]",
			Action:    monitor,
			Flags:     queryFlags,
		},
	}
}

// ledgerEnv is everything a command needs to work with the ledger.
type ledgerEnv struct {
	cfg    config.Config
	log    *zap.Logger
	ledger *core.Ledger
}

func (e *ledgerEnv) close() {
	if err := e.ledger.Close(); err != nil {
		e.log.Warn("failed to close ledger", zap.Error(err))
	}
	_ = e.log.Sync()
}

func newLedgerEnv(ctx *cli.Context) (*ledgerEnv, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		_ = log.Sync()
		return nil, cli.NewExitError(fmt.Errorf("could not initialize storage: %w", err), 1)
	}
	ledger, err := core.NewLedger(store, cfg.Vesting, log)
	if err != nil {
		_ = store.Close()
		_ = log.Sync()
		return nil, cli.NewExitError(fmt.Errorf("could not initialize ledger: %w", err), 1)
	}
	return &ledgerEnv{cfg: cfg, log: log, ledger: ledger}, nil
}

func addressFromContext(ctx *cli.Context, name string) (*flags.Address, error) {
	addr, ok := ctx.Generic(name).(*flags.Address)
	if !ok || !addr.IsSet {
		return nil, cli.NewExitError(fmt.Errorf("missing --%s", name), 1)
	}
	return addr, nil
}

func invocation(ctx *cli.Context) (core.Invocation, error) {
	caller, err := addressFromContext(ctx, "caller")
	if err != nil {
		return core.Invocation{}, err
	}
	return core.Invocation{Caller: caller.Uint160(), Time: ctx.Uint64("time")}, nil
}

func (e *ledgerEnv) decimals() int {
	return int(e.ledger.Contracts().Token.Decimals())
}

func (e *ledgerEnv) parseAmount(s string) (*uint256.Int, error) {
	v, err := fixedn.FromString(s, e.decimals())
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// format returns token amount as a decimal string with the token symbol.
func (e *ledgerEnv) format(v *uint256.Int) string {
	return fixedn.ToString(v, e.decimals()) + " " + e.ledger.Contracts().Token.Symbol()
}
