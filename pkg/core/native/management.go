package native

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-vesting/pkg/core/dao"
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
)

// Permission is an access right that can be granted to an account.
type Permission uint8

// Permissions known to Management.
const (
	CanMintTokens Permission = iota
	CanBurnTokens
	CanManageVesting

	permissionCount
)

const (
	setPermissionEventName     = "SetPermission"
	ownershipTransferEventName = "OwnershipTransferred"
)

var permissionNames = [permissionCount]string{"mint", "burn", "vesting"}

// String implements the fmt.Stringer interface.
func (p Permission) String() string {
	if p < permissionCount {
		return permissionNames[p]
	}
	return "permission" + strconv.Itoa(int(p))
}

// ParsePermission parses permission name.
func ParsePermission(s string) (Permission, error) {
	for i, n := range permissionNames {
		if strings.EqualFold(s, n) {
			return Permission(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPermission, s)
}

func (p Permission) mask() uint64 {
	return 1 << p
}

// Management is the access control contract. It has an owner which can grant
// permissions to other accounts.
type Management struct {
	interop.ContractMD

	owner   util.Uint160
	initial map[util.Uint160]uint64
}

var _ interop.Contract = (*Management)(nil)

func newManagement(owner util.Uint160) *Management {
	return &Management{
		ContractMD: *interop.NewContractMD(nativenames.Management),
		owner:      owner,
		initial:    make(map[util.Uint160]uint64),
	}
}

// Metadata implements the interop.Contract interface.
func (m *Management) Metadata() *interop.ContractMD {
	return &m.ContractMD
}

// Initialize implements the interop.Contract interface. It stores the owner
// and permissions granted at creation time.
func (m *Management) Initialize(ic *interop.Context) error {
	if m.owner.IsZero() {
		return fmt.Errorf("%w: zero owner", ErrInvalidAddress)
	}
	if _, err := ic.DAO.GetOwner(); err == nil {
		return ErrContractInitialized
	}
	ic.DAO.PutOwner(m.owner)
	for acc, perms := range m.initial {
		ic.DAO.PutPermissions(acc, perms)
	}
	return nil
}

// Owner returns the current owner.
func (m *Management) Owner(d *dao.Simple) (util.Uint160, error) {
	return d.GetOwner()
}

func (m *Management) checkOwner(ic *interop.Context) error {
	owner, err := m.Owner(ic.DAO)
	if err != nil {
		return err
	}
	if !owner.Equals(ic.Caller) {
		return fmt.Errorf("%w: caller is not the owner", ErrUnauthorized)
	}
	return nil
}

// TransferOwnership makes another account the owner, only the current owner
// can do this.
func (m *Management) TransferOwnership(ic *interop.Context, newOwner util.Uint160) error {
	if err := m.checkOwner(ic); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return fmt.Errorf("%w: zero owner", ErrInvalidAddress)
	}
	ic.DAO.PutOwner(newOwner)
	ic.AddNotification(m.Name, ownershipTransferEventName,
		state.NewParam("previousOwner", ic.Caller.String()),
		state.NewParam("newOwner", newOwner.String()))
	return nil
}

// SetPermission grants or revokes permission p of the account, only the owner
// can do this.
func (m *Management) SetPermission(ic *interop.Context, acc util.Uint160, p Permission, enabled bool) error {
	if err := m.checkOwner(ic); err != nil {
		return err
	}
	if acc.IsZero() {
		return ErrInvalidAddress
	}
	if p >= permissionCount {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, p)
	}
	perms, err := ic.DAO.GetPermissions(acc)
	if err != nil {
		return err
	}
	if enabled {
		perms |= p.mask()
	} else {
		perms &^= p.mask()
	}
	ic.DAO.PutPermissions(acc, perms)
	ic.AddNotification(m.Name, setPermissionEventName,
		state.NewParam("account", acc.String()),
		state.NewParam("permission", p.String()),
		state.NewParam("enabled", strconv.FormatBool(enabled)))
	return nil
}

// HasPermission checks whether the account has permission p.
func (m *Management) HasPermission(d *dao.Simple, acc util.Uint160, p Permission) (bool, error) {
	perms, err := d.GetPermissions(acc)
	if err != nil {
		return false, err
	}
	return perms&p.mask() != 0, nil
}

// Permissions returns all permissions of the account.
func (m *Management) Permissions(d *dao.Simple, acc util.Uint160) ([]Permission, error) {
	perms, err := d.GetPermissions(acc)
	if err != nil {
		return nil, err
	}
	var res []Permission
	for p := Permission(0); p < permissionCount; p++ {
		if perms&p.mask() != 0 {
			res = append(res, p)
		}
	}
	return res, nil
}

// IsAdministrator implements the AccessControl interface. The owner and
// accounts having CanManageVesting permission are administrators.
func (m *Management) IsAdministrator(d *dao.Simple, acc util.Uint160) (bool, error) {
	owner, err := m.Owner(d)
	if err != nil {
		return false, err
	}
	if owner.Equals(acc) {
		return true, nil
	}
	return m.HasPermission(d, acc, CanManageVesting)
}
