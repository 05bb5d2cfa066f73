package vesting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/cli/flags"
	"github.com/nspcc-dev/neo-vesting/pkg/core"
	"github.com/nspcc-dev/neo-vesting/pkg/core/native"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
	"github.com/urfave/cli"
)

func setInitialTimestamp(ctx *cli.Context) error {
	inv, err := invocation(ctx)
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	ts := ctx.Uint64("timestamp")
	if err := e.ledger.SetInitialTimestamp(inv, ts); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Vesting starts at %d\n", ts)
	return nil
}

// parseGrants parses <address>:<amount> pairs.
func (e *ledgerEnv) parseGrants(args []string) ([]util.Uint160, []*uint256.Int, error) {
	if len(args) == 0 {
		return nil, nil, errors.New("no investors given")
	}
	var (
		addrs   = make([]util.Uint160, len(args))
		amounts = make([]*uint256.Int, len(args))
	)
	for i, arg := range args {
		a, amount, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, nil, fmt.Errorf("invalid investor %q: <address>:<amount> expected", arg)
		}
		addr, err := flags.ParseAddress(a)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid investor %q: %w", arg, err)
		}
		addrs[i] = addr
		amounts[i], err = e.parseAmount(amount)
		if err != nil {
			return nil, nil, err
		}
	}
	return addrs, amounts, nil
}

func addInvestors(ctx *cli.Context) error {
	inv, err := invocation(ctx)
	if err != nil {
		return err
	}
	t, err := vesting.ParseAllocationType(ctx.String("type"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	addrs, amounts, err := e.parseGrants(ctx.Args())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := e.ledger.AddInvestors(inv, addrs, amounts, t); err != nil {
		return cli.NewExitError(err, 1)
	}
	sum := new(uint256.Int)
	for _, a := range amounts {
		sum.Add(sum, a)
	}
	fmt.Fprintf(ctx.App.Writer, "Added %d %s grants, %s reserved\n", len(addrs), t, e.format(sum))
	return nil
}

func withdraw(ctx *cli.Context) error {
	investor, err := addressFromContext(ctx, "investor")
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	amount, err := e.ledger.WithdrawTokens(core.Invocation{Caller: investor.Uint160(), Time: ctx.Uint64("time")})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Withdrawn %s\n", e.format(amount))
	return nil
}

func changeInvestor(ctx *cli.Context) error {
	inv, err := invocation(ctx)
	if err != nil {
		return err
	}
	from, err := addressFromContext(ctx, "from")
	if err != nil {
		return err
	}
	to, err := addressFromContext(ctx, "to")
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.ledger.ChangeInvestor(inv, from.Uint160(), to.Uint160()); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Grants of %s moved to %s\n", from, to)
	return nil
}

func setPermission(ctx *cli.Context) error {
	inv, err := invocation(ctx)
	if err != nil {
		return err
	}
	acc, err := addressFromContext(ctx, "account")
	if err != nil {
		return err
	}
	p, err := native.ParsePermission(ctx.String("perm"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	enabled := ctx.Bool("enable")
	if err := e.ledger.SetPermission(inv, acc.Uint160(), p, enabled); err != nil {
		return cli.NewExitError(err, 1)
	}
	action := "revoked from"
	if enabled {
		action = "granted to"
	}
	fmt.Fprintf(ctx.App.Writer, "Permission %s %s %s\n", p, action, acc)
	return nil
}

func transferOwnership(ctx *cli.Context) error {
	inv, err := invocation(ctx)
	if err != nil {
		return err
	}
	owner, err := addressFromContext(ctx, "owner")
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.ledger.TransferOwnership(inv, owner.Uint160()); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "New owner is %s\n", owner)
	return nil
}

func burn(ctx *cli.Context) error {
	inv, err := invocation(ctx)
	if err != nil {
		return err
	}
	acc, err := addressFromContext(ctx, "account")
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	amount, err := e.parseAmount(ctx.String("amount"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := e.ledger.Burn(inv, acc.Uint160(), amount); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Burnt %s of %s\n", e.format(amount), acc)
	return nil
}
