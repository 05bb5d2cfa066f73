package native

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/core/dao"
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
)

const (
	setInitialTimestampEventName = "SetInitialTimestamp"
	addInvestorsEventName        = "AddInvestors"
	harvestEventName             = "Harvest"
	changeInvestorEventName      = "ChangeInvestor"
)

// TokenLedger is the token contract used by Vesting to reserve and release
// tokens.
type TokenLedger interface {
	Mint(ic *interop.Context, caller, to util.Uint160, amount *uint256.Int) error
	Transfer(ic *interop.Context, from, to util.Uint160, amount *uint256.Int) error
}

// AccessControl decides whether an account can manage vesting.
type AccessControl interface {
	IsAdministrator(d *dao.Simple, acc util.Uint160) (bool, error)
}

// Vesting is the vesting schedule contract. It keeps investor grants and
// releases tokens reserved for them according to allocation type policies.
// All tokens are held on the contract's own account.
type Vesting struct {
	interop.ContractMD
	Token  TokenLedger
	Access AccessControl

	tokenHash       util.Uint160
	policies        *vesting.Table
	allowLateGrants bool
}

var _ interop.Contract = (*Vesting)(nil)

func newVesting(tokenHash util.Uint160, policies *vesting.Table, allowLateGrants bool) *Vesting {
	return &Vesting{
		ContractMD:      *interop.NewContractMD(nativenames.Vesting),
		tokenHash:       tokenHash,
		policies:        policies,
		allowLateGrants: allowLateGrants,
	}
}

// Metadata implements the interop.Contract interface.
func (v *Vesting) Metadata() *interop.ContractMD {
	return &v.ContractMD
}

// Initialize implements the interop.Contract interface, it binds the contract
// to the configured token.
func (v *Vesting) Initialize(ic *interop.Context) error {
	return v.InitializeToken(ic, v.tokenHash)
}

// InitializeToken binds the contract to the vested token, it can only be done
// once.
func (v *Vesting) InitializeToken(ic *interop.Context, token util.Uint160) error {
	if token.IsZero() {
		return fmt.Errorf("%w: incorrect token address", ErrInvalidAddress)
	}
	st, err := ic.DAO.GetVesting()
	if err != nil {
		return err
	}
	if st.Initialized {
		return ErrContractInitialized
	}
	st.Initialized = true
	st.Token = token
	st.AllowLateGrants = v.allowLateGrants
	st.SetTable(v.policies)
	return ic.DAO.PutVesting(st)
}

// CheckSettings makes sure the contract is configured with the same policy
// table and late grants setting it was initialized with.
func (v *Vesting) CheckSettings(d *dao.Simple) error {
	st, err := v.getInitializedState(d)
	if err != nil {
		return err
	}
	stored, err := st.Table()
	if err != nil {
		return fmt.Errorf("invalid stored policies: %w", err)
	}
	if !stored.Equal(v.policies) {
		return fmt.Errorf("%w: policy table", ErrSettingsMismatch)
	}
	if st.AllowLateGrants != v.allowLateGrants {
		return fmt.Errorf("%w: AllowLateGrants is %t", ErrSettingsMismatch, st.AllowLateGrants)
	}
	return nil
}

// Policies returns the policy table.
func (v *Vesting) Policies() *vesting.Table {
	return v.policies
}

// GetPolicy returns the policy of the allocation type.
func (v *Vesting) GetPolicy(t vesting.AllocationType) (vesting.Policy, error) {
	return v.policies.Policy(t)
}

// GetState returns the schedule state.
func (v *Vesting) GetState(d *dao.Simple) (*state.Vesting, error) {
	return d.GetVesting()
}

// InitialTimestamp returns the vesting start, zero if it's not set yet.
func (v *Vesting) InitialTimestamp(d *dao.Simple) (uint64, error) {
	st, err := d.GetVesting()
	if err != nil {
		return 0, err
	}
	return st.InitialTimestamp, nil
}

func (v *Vesting) checkAdmin(ic *interop.Context) error {
	ok, err := v.Access.IsAdministrator(ic.DAO, ic.Caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: caller is not an administrator", ErrUnauthorized)
	}
	return nil
}

func (v *Vesting) getInitializedState(d *dao.Simple) (*state.Vesting, error) {
	st, err := d.GetVesting()
	if err != nil {
		return nil, err
	}
	if !st.Initialized {
		return nil, ErrNotInitialized
	}
	return st, nil
}

// SetInitialTimestamp sets the vesting start, it can only be done once.
func (v *Vesting) SetInitialTimestamp(ic *interop.Context, ts uint64) error {
	if err := v.checkAdmin(ic); err != nil {
		return err
	}
	st, err := v.getInitializedState(ic.DAO)
	if err != nil {
		return err
	}
	if st.Started() {
		return ErrAlreadyInitialized
	}
	if ts == 0 {
		return fmt.Errorf("%w: zero", ErrInvalidTimestamp)
	}
	st.InitialTimestamp = ts
	if err := ic.DAO.PutVesting(st); err != nil {
		return err
	}
	ic.AddNotification(v.Name, setInitialTimestampEventName,
		state.NewParam("timestamp", fmt.Sprint(ts)))
	return nil
}

// AddInvestors adds amounts[i] to the grant of addresses[i] of type t and
// reserves the sum on the contract account.
func (v *Vesting) AddInvestors(ic *interop.Context, addresses []util.Uint160, amounts []*uint256.Int, t vesting.AllocationType) error {
	if err := v.checkAdmin(ic); err != nil {
		return err
	}
	if len(addresses) != len(amounts) {
		return fmt.Errorf("%w: %d addresses, %d amounts", ErrArrayLengthMismatch, len(addresses), len(amounts))
	}
	if _, err := v.GetPolicy(t); err != nil {
		return err
	}
	st, err := v.getInitializedState(ic.DAO)
	if err != nil {
		return err
	}
	if !v.allowLateGrants && st.Started() && ic.Time >= st.InitialTimestamp {
		return ErrVestingAlreadyStarted
	}

	var (
		sum   = new(uint256.Int)
		addrs = make([]string, len(addresses))
		amts  = make([]string, len(amounts))
	)
	for i, acc := range addresses {
		amount := amounts[i]
		if acc.IsZero() {
			return fmt.Errorf("%w: investor #%d", ErrInvalidAddress, i)
		}
		if amount == nil || amount.IsZero() {
			return fmt.Errorf("%w: investor #%d", ErrZeroAmount, i)
		}
		if _, overflow := sum.AddOverflow(sum, amount); overflow {
			return ErrOverflow
		}
		g, err := v.getGrantOrNew(ic.DAO, acc, t)
		if err != nil {
			return err
		}
		if _, overflow := g.Total.AddOverflow(&g.Total, amount); overflow {
			return fmt.Errorf("%w: %s grant of %s", ErrOverflow, t, acc)
		}
		if err := ic.DAO.PutGrant(acc, t, g); err != nil {
			return err
		}
		addrs[i] = acc.String()
		amts[i] = amount.Dec()
	}
	if !sum.IsZero() {
		if err := v.Token.Mint(ic, v.Hash, v.Hash, sum); err != nil {
			return fmt.Errorf("failed to reserve tokens: %w", err)
		}
	}
	ic.AddNotification(v.Name, addInvestorsEventName,
		state.NewParam("addresses", addrs...),
		state.NewParam("amounts", amts...),
		state.NewParam("allocationType", t.String()))
	return nil
}

func (v *Vesting) getGrantOrNew(d *dao.Simple, acc util.Uint160, t vesting.AllocationType) (*state.Grant, error) {
	g, err := d.GetGrant(acc, t)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			return nil, err
		}
		g = new(state.Grant)
	}
	return g, nil
}

// Grant returns investor grant of the given type, an empty one is returned
// if there is none.
func (v *Vesting) Grant(d *dao.Simple, acc util.Uint160, t vesting.AllocationType) (*state.Grant, error) {
	return v.getGrantOrNew(d, acc, t)
}

// Grants returns all grants of the investor.
func (v *Vesting) Grants(d *dao.Simple, acc util.Uint160) (map[vesting.AllocationType]*state.Grant, error) {
	res := make(map[vesting.AllocationType]*state.Grant)
	err := d.SeekGrants(&acc, func(_ util.Uint160, t vesting.AllocationType, g *state.Grant) bool {
		res[t] = g
		return true
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Claimable returns amounts the investor can withdraw at the given time, per
// allocation type. Grants of types missing from the policy table are never
// released and hence are omitted.
func (v *Vesting) Claimable(d *dao.Simple, acc util.Uint160, now uint64) (map[vesting.AllocationType]*uint256.Int, error) {
	st, err := d.GetVesting()
	if err != nil {
		return nil, err
	}
	grants, err := v.Grants(d, acc)
	if err != nil {
		return nil, err
	}
	res := make(map[vesting.AllocationType]*uint256.Int, len(grants))
	for t, g := range grants {
		p, err := v.GetPolicy(t)
		if err != nil {
			continue
		}
		res[t] = vesting.Claimable(&g.Total, &g.Paid, p, st.InitialTimestamp, now)
	}
	return res, nil
}

// WithdrawTokens releases everything the caller can claim at the operation
// time. Grants are updated before the token transfer.
func (v *Vesting) WithdrawTokens(ic *interop.Context) (*uint256.Int, error) {
	investor := ic.Caller
	if investor.IsZero() {
		return nil, ErrInvalidAddress
	}
	st, err := v.getInitializedState(ic.DAO)
	if err != nil {
		return nil, err
	}
	if !st.Started() {
		return nil, ErrVestingNotStarted
	}
	grants, err := v.Grants(ic.DAO, investor)
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for _, t := range v.policies.Types() {
		g, ok := grants[t]
		if !ok {
			continue
		}
		p, _ := v.GetPolicy(t)
		claimable := vesting.Claimable(&g.Total, &g.Paid, p, st.InitialTimestamp, ic.Time)
		if claimable.IsZero() {
			continue
		}
		// Both are bounded by the reserved supply.
		total.Add(total, claimable)
		g.Paid.Add(&g.Paid, claimable)
		if err := ic.DAO.PutGrant(investor, t, g); err != nil {
			return nil, err
		}
	}
	if total.IsZero() {
		return nil, ErrZeroAmount
	}
	if err := v.Token.Transfer(ic, v.Hash, investor, total); err != nil {
		return nil, fmt.Errorf("failed to transfer tokens: %w", err)
	}
	ic.AddNotification(v.Name, harvestEventName,
		state.NewParam("investor", investor.String()),
		state.NewParam("amount", total.Dec()))
	return total, nil
}

// ChangeInvestor moves all unreleased tokens of one investor to another, it
// can only be done once.
func (v *Vesting) ChangeInvestor(ic *interop.Context, from, to util.Uint160) error {
	if err := v.checkAdmin(ic); err != nil {
		return err
	}
	st, err := v.getInitializedState(ic.DAO)
	if err != nil {
		return err
	}
	if st.InvestorChanged {
		return ErrAlreadyChanged
	}
	if from.IsZero() || to.IsZero() || from.Equals(to) {
		return fmt.Errorf("%w: can't move grants from %s to %s", ErrInvalidAddress, from, to)
	}
	grants, err := v.Grants(ic.DAO, from)
	if err != nil {
		return err
	}
	var moved bool
	for _, t := range v.policies.Types() {
		g, ok := grants[t]
		if !ok {
			continue
		}
		rest := g.Remaining()
		if rest.IsZero() {
			continue
		}
		dst, err := v.getGrantOrNew(ic.DAO, to, t)
		if err != nil {
			return err
		}
		if _, overflow := dst.Total.AddOverflow(&dst.Total, rest); overflow {
			return fmt.Errorf("%w: %s grant of %s", ErrOverflow, t, to)
		}
		g.Total = g.Paid
		if err := ic.DAO.PutGrant(from, t, g); err != nil {
			return err
		}
		if err := ic.DAO.PutGrant(to, t, dst); err != nil {
			return err
		}
		moved = true
	}
	if !moved {
		return ErrNothingToTransfer
	}
	st.InvestorChanged = true
	if err := ic.DAO.PutVesting(st); err != nil {
		return err
	}
	ic.AddNotification(v.Name, changeInvestorEventName,
		state.NewParam("from", from.String()),
		state.NewParam("to", to.String()))
	return nil
}
