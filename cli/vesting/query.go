package vesting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nspcc-dev/neo-vesting/pkg/core"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
	"github.com/urfave/cli"
)

func newTable(ctx *cli.Context, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(ctx.App.Writer)
	t.AppendHeader(header)
	return t
}

func queryTime(ctx *cli.Context) uint64 {
	if ts := ctx.Uint64("time"); ts != 0 {
		return ts
	}
	return uint64(time.Now().Unix())
}

func showClaimable(ctx *cli.Context) error {
	investor, err := addressFromContext(ctx, "investor")
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	claimable, err := e.ledger.Claimable(investor.Uint160(), queryTime(ctx))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var (
		t     = newTable(ctx, "Allocation", "Claimable")
		total = new(uint256.Int)
	)
	for _, typ := range sortedTypes(claimable) {
		t.AppendRow(table.Row{typ, e.format(claimable[typ])})
		total.Add(total, claimable[typ])
	}
	t.AppendFooter(table.Row{"Total", e.format(total)})
	t.Render()
	return nil
}

func sortedTypes[V any](m map[vesting.AllocationType]V) []vesting.AllocationType {
	res := make([]vesting.AllocationType, 0, len(m))
	for t := range m {
		res = append(res, t)
	}
	slices.Sort(res)
	return res
}

func showGrants(ctx *cli.Context) error {
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	var records []core.GrantRecord
	if addr, err := addressFromContext(ctx, "investor"); err == nil {
		grants, err := e.ledger.Grants(addr.Uint160())
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		for _, typ := range sortedTypes(grants) {
			records = append(records, core.GrantRecord{Investor: addr.Uint160(), Type: typ, Grant: *grants[typ]})
		}
	} else {
		records, err = e.ledger.AllGrants()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	t := newTable(ctx, "Investor", "Allocation", "Total", "Paid", "Remaining")
	for i := range records {
		r := &records[i]
		t.AppendRow(table.Row{r.Investor, r.Type, e.format(&r.Total), e.format(&r.Paid), e.format(r.Remaining())})
	}
	t.Render()
	return nil
}

func showSchedule(ctx *cli.Context) error {
	typ, err := vesting.ParseAllocationType(ctx.String("type"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.ledger.Policies().Policy(typ)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	amount, err := e.parseAmount(ctx.String("amount"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	start := ctx.Uint64("start")
	if start == 0 {
		start, err = e.ledger.InitialTimestamp()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	timeHeader := "Time"
	if start == 0 {
		timeHeader = "Offset, s"
	}
	t := newTable(ctx, "Period", timeHeader, "Released", "Unlocked")
	for _, s := range vesting.Schedule(p, amount, start) {
		t.AppendRow(table.Row{s.Period, formatTime(s.Time, start != 0), e.format(s.Delta), e.format(s.Unlocked)})
	}
	t.Render()
	return nil
}

func formatTime(ts uint64, absolute bool) string {
	if !absolute {
		return fmt.Sprint(ts)
	}
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

func showPolicies(ctx *cli.Context) error {
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	var (
		policies = e.ledger.Policies()
		t        = newTable(ctx, "Allocation", "Cliff, s", "Period, s", "Initial, %", "Periods", "Duration, s")
	)
	for _, typ := range policies.Types() {
		p, _ := policies.Policy(typ)
		t.AppendRow(table.Row{typ, p.CliffDuration, p.PeriodDuration, p.InitialPercentage, p.TotalPeriods, p.Duration()})
	}
	t.Render()
	return nil
}

func formatParams(ne *state.NotificationEvent) string {
	var b strings.Builder
	for i, p := range ne.Params {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString("=")
		if len(p.Value) == 1 {
			b.WriteString(p.Value[0])
		} else {
			b.WriteString("[" + strings.Join(p.Value, " ") + "]")
		}
	}
	return b.String()
}

func showEvents(ctx *cli.Context) error {
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	events, err := e.ledger.Notifications(ctx.Uint64("start"), ctx.Int("count"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	t := newTable(ctx, "#", "Time", "Contract", "Event", "Parameters")
	for i := range events {
		ne := &events[i]
		t.AppendRow(table.Row{ne.Index, formatTime(ne.Timestamp, true), ne.Contract, ne.Name, formatParams(ne)})
	}
	t.Render()
	return nil
}

func showBalance(ctx *cli.Context) error {
	acc, err := addressFromContext(ctx, "account")
	if err != nil {
		return err
	}
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.ledger.BalanceOf(acc.Uint160())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, e.format(b))
	return nil
}
