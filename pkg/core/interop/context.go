package interop

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-vesting/pkg/core/dao"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"go.uber.org/zap"
)

// Context represents context in which a single ledger operation is executed.
// Everything is written into DAO, it's either persisted as a whole or
// dropped by the caller.
type Context struct {
	DAO *dao.Simple
	// Caller is the account invoking the operation.
	Caller util.Uint160
	// Time is the operation time, it's fixed for the whole operation.
	Time uint64
	// Operation is the unique operation ID.
	Operation     uuid.UUID
	Notifications []state.NotificationEvent
	Log           *zap.Logger
}

// NewContext returns new interop context.
func NewContext(d *dao.Simple, caller util.Uint160, now uint64, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		DAO:           d,
		Caller:        caller,
		Time:          now,
		Operation:     uuid.New(),
		Notifications: make([]state.NotificationEvent, 0),
		Log:           log,
	}
}

// AddNotification appends an event to the list of operation notifications.
func (ic *Context) AddNotification(contract, name string, params ...state.NotificationParam) {
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		Operation: ic.Operation,
		Contract:  contract,
		Name:      name,
		Timestamp: ic.Time,
		Params:    params,
	})
}

// Contract is an interface for all built-in contracts.
type Contract interface {
	// Initialize is called once when the ledger is created.
	Initialize(*Context) error
	Metadata() *ContractMD
}

// ContractMD represents built-in contract metadata.
type ContractMD struct {
	Name string
	Hash util.Uint160
}

// NewContractMD returns Contract with the specified name, its hash is
// derived from the name.
func NewContractMD(name string) *ContractMD {
	return &ContractMD{
		Name: name,
		Hash: ContractHash(name),
	}
}

// ContractHash returns the account of the built-in contract with the given
// name, it's the tail of the name's Keccak-256 hash.
func ContractHash(name string) util.Uint160 {
	var u util.Uint160
	h := crypto.Keccak256([]byte(name))
	copy(u[:], h[len(h)-util.Uint160Size:])
	return u
}
