package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/nspcc-dev/neo-vesting/pkg/core/dao"
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/core/native"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
	"go.uber.org/zap"
)

// Operation names used in logs and metrics.
const (
	opGenesis             = "genesis"
	opSetInitialTimestamp = "setInitialTimestamp"
	opAddInvestors        = "addInvestors"
	opWithdrawTokens      = "withdrawTokens"
	opChangeInvestor      = "changeInvestor"
	opSetPermission       = "setPermission"
	opTransferOwnership   = "transferOwnership"
	opBurn                = "burn"
)

// maxCommitAttempts limits executions of an operation conflicting with
// other processes sharing the store.
const maxCommitAttempts = 5

// Invocation describes who performs an operation and when.
type Invocation struct {
	Caller util.Uint160
	// Time is the operation time in seconds, zero means current time.
	Time uint64
}

// GrantRecord is a grant of some investor and allocation type.
type GrantRecord struct {
	Investor util.Uint160
	Type     vesting.AllocationType
	state.Grant
}

// Ledger executes vesting operations one by one. Every operation is either
// applied completely (with its notifications stored) or not at all.
type Ledger struct {
	// lock serializes operations, reads can go in parallel.
	lock sync.RWMutex

	config    config.Vesting
	store     storage.Store
	dao       *dao.Simple
	contracts *native.Contracts
	log       *zap.Logger
	timeNow   func() time.Time

	running        atomic.Bool
	stopCh         chan struct{}
	dispatcherDone chan struct{}
	subCh          chan chan<- *state.NotificationEvent
	unsubCh        chan chan<- *state.NotificationEvent
	events         chan []state.NotificationEvent
}

// NewLedger returns a new ledger over the given store. An empty store is
// initialized with cfg, an existing one is checked for compatibility.
func NewLedger(s storage.Store, cfg config.Vesting, log *zap.Logger) (*Ledger, error) {
	if log == nil {
		return nil, errors.New("empty logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vesting configuration: %w", err)
	}
	cs, err := native.NewContracts(cfg)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		config:         cfg,
		store:          s,
		dao:            dao.NewSimple(s),
		contracts:      cs,
		log:            log,
		timeNow:        time.Now,
		stopCh:         make(chan struct{}),
		dispatcherDone: make(chan struct{}),
		subCh:          make(chan chan<- *state.NotificationEvent),
		unsubCh:        make(chan chan<- *state.NotificationEvent),
		events:         make(chan []state.NotificationEvent, notificationBufSize),
	}
	if err := l.init(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) init() error {
	if err := l.dao.CheckVersion(); err != nil {
		return err
	}
	st, err := l.dao.GetVesting()
	if err != nil {
		return fmt.Errorf("failed to read vesting state: %w", err)
	}
	if st.Initialized {
		if err := l.contracts.Vesting.CheckSettings(l.dao); err != nil {
			return err
		}
		if _, err := l.dao.Persist(); err != nil {
			return err
		}
		n, err := l.dao.GetNotificationCount()
		if err != nil {
			return err
		}
		updateNotificationCountMetric(n)
		l.log.Info("ledger restored",
			zap.Uint64("initialTimestamp", st.InitialTimestamp),
			zap.Bool("investorChanged", st.InvestorChanged),
			zap.Uint64("notifications", n))
		return nil
	}
	l.log.Info("initializing ledger", zap.Stringer("owner", l.config.Owner))
	_, err = l.execute(opGenesis, Invocation{Caller: l.config.Owner}, func(ic *interop.Context) error {
		for _, c := range l.contracts.Contracts {
			if err := c.Initialize(ic); err != nil {
				return fmt.Errorf("failed to initialize %s: %w", c.Metadata().Name, err)
			}
		}
		return nil
	})
	return err
}

// Run starts notification dispatcher. You should manually free the
// resources by calling Close on shutdown.
func (l *Ledger) Run() {
	if l.running.CompareAndSwap(false, true) {
		go l.notificationDispatcher()
	}
}

// Close stops notification dispatcher and closes the underlying store.
func (l *Ledger) Close() error {
	if l.running.CompareAndSwap(true, false) {
		close(l.stopCh)
		<-l.dispatcherDone
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if _, err := l.dao.Persist(); err != nil {
		l.log.Warn("failed to persist pending changes", zap.Error(err))
	}
	return l.store.Close()
}

// Contracts returns the set of built-in contracts.
func (l *Ledger) Contracts() *native.Contracts {
	return l.contracts
}

// Policies returns the policy table.
func (l *Ledger) Policies() *vesting.Table {
	return l.contracts.Vesting.Policies()
}

func (l *Ledger) now(inv Invocation) uint64 {
	if inv.Time != 0 {
		return inv.Time
	}
	return uint64(l.timeNow().Unix())
}

// execute runs f against a private DAO layer. On success the layer and
// notifications are flushed to the store, otherwise everything is dropped.
// If another process sharing the store commits in between, the operation is
// executed again over the new state.
func (l *Ledger) execute(op string, inv Invocation, f func(ic *interop.Context) error) ([]state.NotificationEvent, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for attempt := 1; ; attempt++ {
		ne, err := l.executeOnce(op, inv, f)
		if !errors.Is(err, storage.ErrConflict) || attempt == maxCommitAttempts {
			return ne, err
		}
		l.log.Info("store changed concurrently, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt))
	}
}

func (l *Ledger) executeOnce(op string, inv Invocation, f func(ic *interop.Context) error) ([]state.NotificationEvent, error) {
	var (
		start = time.Now()
		d     = l.dao.GetWrapped()
		ic    = interop.NewContext(d, inv.Caller, l.now(inv), l.log.With(zap.String("operation", op)))
	)
	gen, err := d.GetGeneration()
	if err == nil {
		err = f(ic)
	}
	if err == nil {
		for i := range ic.Notifications {
			if err = d.AppendNotification(&ic.Notifications[i]); err != nil {
				break
			}
		}
	}
	if err != nil {
		updateOperationsMetric(op, false)
		l.log.Debug("operation rejected",
			zap.String("operation", op),
			zap.Stringer("caller", inv.Caller),
			zap.Uint64("time", ic.Time),
			zap.Error(err))
		return nil, err
	}
	d.PutGeneration(gen + 1)
	if _, err = d.Persist(); err != nil {
		l.dao.Discard()
		updateOperationsMetric(op, false)
		return nil, fmt.Errorf("failed to persist %s: %w", op, err)
	}
	n, err := l.dao.PersistAt(gen)
	if err != nil {
		l.dao.Discard()
		updateOperationsMetric(op, false)
		return nil, fmt.Errorf("failed to persist %s: %w", op, err)
	}
	updateOperationsMetric(op, true)
	if len(ic.Notifications) != 0 {
		updateNotificationCountMetric(ic.Notifications[len(ic.Notifications)-1].Index + 1)
	}
	l.log.Info("operation committed",
		zap.String("operation", op),
		zap.Stringer("id", ic.Operation),
		zap.Stringer("caller", inv.Caller),
		zap.Uint64("time", ic.Time),
		zap.Uint64("generation", gen+1),
		zap.Int("events", len(ic.Notifications)),
		zap.Int("keys", n),
		zap.Duration("took", time.Since(start)))
	if l.running.Load() && len(ic.Notifications) != 0 {
		l.events <- ic.Notifications
	}
	return ic.Notifications, nil
}

// SetInitialTimestamp starts the vesting at ts.
func (l *Ledger) SetInitialTimestamp(inv Invocation, ts uint64) error {
	_, err := l.execute(opSetInitialTimestamp, inv, func(ic *interop.Context) error {
		return l.contracts.Vesting.SetInitialTimestamp(ic, ts)
	})
	return err
}

// AddInvestors adds grants of type t to the investors.
func (l *Ledger) AddInvestors(inv Invocation, addresses []util.Uint160, amounts []*uint256.Int, t vesting.AllocationType) error {
	_, err := l.execute(opAddInvestors, inv, func(ic *interop.Context) error {
		return l.contracts.Vesting.AddInvestors(ic, addresses, amounts, t)
	})
	return err
}

// WithdrawTokens transfers everything the caller can claim at the
// invocation time and returns the amount.
func (l *Ledger) WithdrawTokens(inv Invocation) (*uint256.Int, error) {
	var amount *uint256.Int
	_, err := l.execute(opWithdrawTokens, inv, func(ic *interop.Context) error {
		var err error
		amount, err = l.contracts.Vesting.WithdrawTokens(ic)
		return err
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// ChangeInvestor moves unreleased grants from one investor to another.
func (l *Ledger) ChangeInvestor(inv Invocation, from, to util.Uint160) error {
	_, err := l.execute(opChangeInvestor, inv, func(ic *interop.Context) error {
		return l.contracts.Vesting.ChangeInvestor(ic, from, to)
	})
	return err
}

// SetPermission grants or revokes the permission of the account.
func (l *Ledger) SetPermission(inv Invocation, acc util.Uint160, p native.Permission, enabled bool) error {
	_, err := l.execute(opSetPermission, inv, func(ic *interop.Context) error {
		return l.contracts.Management.SetPermission(ic, acc, p, enabled)
	})
	return err
}

// TransferOwnership sets the new management owner.
func (l *Ledger) TransferOwnership(inv Invocation, newOwner util.Uint160) error {
	_, err := l.execute(opTransferOwnership, inv, func(ic *interop.Context) error {
		return l.contracts.Management.TransferOwnership(ic, newOwner)
	})
	return err
}

// Burn destroys tokens of the account, the caller must be allowed to burn.
func (l *Ledger) Burn(inv Invocation, from util.Uint160, amount *uint256.Int) error {
	_, err := l.execute(opBurn, inv, func(ic *interop.Context) error {
		return l.contracts.Token.Burn(ic, inv.Caller, from, amount)
	})
	return err
}

// InitialTimestamp returns the vesting start, zero if it's not started.
func (l *Ledger) InitialTimestamp() (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Vesting.InitialTimestamp(l.dao)
}

// VestingState returns the schedule state.
func (l *Ledger) VestingState() (*state.Vesting, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Vesting.GetState(l.dao)
}

// Grants returns all grants of the investor.
func (l *Ledger) Grants(investor util.Uint160) (map[vesting.AllocationType]*state.Grant, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Vesting.Grants(l.dao, investor)
}

// AllGrants returns grants of all investors ordered by investor and type.
func (l *Ledger) AllGrants() ([]GrantRecord, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	var res []GrantRecord
	err := l.dao.SeekGrants(nil, func(acc util.Uint160, t vesting.AllocationType, g *state.Grant) bool {
		res = append(res, GrantRecord{Investor: acc, Type: t, Grant: *g})
		return true
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Claimable returns amounts the investor can withdraw at the given time per
// allocation type.
func (l *Ledger) Claimable(investor util.Uint160, now uint64) (map[vesting.AllocationType]*uint256.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Vesting.Claimable(l.dao, investor, now)
}

// BalanceOf returns token balance of the account.
func (l *Ledger) BalanceOf(acc util.Uint160) (*uint256.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Token.BalanceOf(l.dao, acc)
}

// TotalSupply returns token total supply.
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Token.TotalSupply(l.dao)
}

// Owner returns management owner.
func (l *Ledger) Owner() (util.Uint160, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Management.Owner(l.dao)
}

// Permissions returns permissions of the account.
func (l *Ledger) Permissions(acc util.Uint160) ([]native.Permission, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.contracts.Management.Permissions(l.dao, acc)
}

// Notifications returns up to limit stored events starting from the given
// index, non-positive limit means no limit.
func (l *Ledger) Notifications(start uint64, limit int) ([]state.NotificationEvent, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.dao.GetNotifications(start, limit)
}

// UpdateMetrics refreshes token and allocation gauges for the given time.
func (l *Ledger) UpdateMetrics(now uint64) error {
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	start, err := l.InitialTimestamp()
	if err != nil {
		return err
	}
	grants, err := l.AllGrants()
	if err != nil {
		return err
	}
	type sums struct {
		total, paid, unlocked uint256.Int
	}
	var (
		policies = l.Policies()
		byType   = make(map[vesting.AllocationType]*sums)
	)
	for _, t := range policies.Types() {
		byType[t] = new(sums)
	}
	for i := range grants {
		g := &grants[i]
		s, ok := byType[g.Type]
		if !ok {
			continue
		}
		p, _ := policies.Policy(g.Type)
		s.total.Add(&s.total, &g.Total)
		s.paid.Add(&s.paid, &g.Paid)
		s.unlocked.Add(&s.unlocked, vesting.Claimable(&g.Total, &g.Paid, p, start, now))
	}
	updateTotalSupplyMetric(supply)
	for t, s := range byType {
		updateAllocationMetrics(t, &s.total, &s.paid, &s.unlocked)
	}
	return nil
}
