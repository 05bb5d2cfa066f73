package dao

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/nspcc-dev/neo-vesting/pkg/io"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
)

// Version is the current storage scheme version. It's checked on ledger
// start to refuse databases of incompatible layout.
const Version = "0.2.0"

var (
	// ErrIncompatibleVersion is returned when the stored version doesn't
	// match Version.
	ErrIncompatibleVersion = errors.New("incompatible database version")
)

// Simple is memCached wrapper around DB, simple DAO implementation.
type Simple struct {
	Store *storage.MemCachedStore
}

// NewSimple creates new simple dao using provided backend store.
func NewSimple(backend storage.Store) *Simple {
	return &Simple{Store: storage.NewMemCachedStore(backend)}
}

// GetBatch returns currently accumulated DB changeset.
func (dao *Simple) GetBatch() *storage.MemBatch {
	return dao.Store.GetBatch()
}

// GetWrapped returns new DAO instance with another layer of wrapped
// MemCachedStore around the current DAO Store. Changes made to it are only
// visible to the lower layer after Persist.
func (dao *Simple) GetWrapped() *Simple {
	return NewSimple(dao.Store)
}

// Persist flushes all the changes made into the (supposedly) persistent
// underlying store.
func (dao *Simple) Persist() (int, error) {
	return dao.Store.Persist()
}

// PersistAt flushes all the changes like Persist, but fails with
// storage.ErrConflict if the store is shared and its generation is not gen
// anymore.
func (dao *Simple) PersistAt(gen uint64) (int, error) {
	var expected []byte
	if gen != 0 {
		expected = binary.BigEndian.AppendUint64(nil, gen)
	}
	return dao.Store.PersistGuarded(storage.SYSGeneration.Bytes(), expected)
}

// Discard drops all the changes made.
func (dao *Simple) Discard() {
	dao.Store.Discard()
}

// GetAndDecode performs get operation and decoding with serializable structures.
func (dao *Simple) GetAndDecode(entity io.Serializable, key []byte) error {
	entityBytes, err := dao.Store.Get(key)
	if err != nil {
		return err
	}
	return io.FromByteArray(entity, entityBytes)
}

// Put performs put operation with serializable structures.
func (dao *Simple) Put(entity io.Serializable, key []byte) error {
	return dao.putWithBuffer(entity, key, io.NewBufBinWriter())
}

// putWithBuffer performs put operation using buf as a pre-allocated buffer for serialization.
func (dao *Simple) putWithBuffer(entity io.Serializable, key []byte, buf *io.BufBinWriter) error {
	entity.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	dao.Store.Put(key, buf.Bytes())
	return nil
}

// -- start version.

// GetVersion attempts to get the current version stored in the
// underlying store.
func (dao *Simple) GetVersion() (string, error) {
	version, err := dao.Store.Get(storage.SYSVersion.Bytes())
	return string(version), err
}

// PutVersion stores the given version in the underlying store.
func (dao *Simple) PutVersion(v string) {
	dao.Store.Put(storage.SYSVersion.Bytes(), []byte(v))
}

// CheckVersion stores Version into an empty database or makes sure the
// stored one matches it.
func (dao *Simple) CheckVersion() error {
	v, err := dao.GetVersion()
	if errors.Is(err, storage.ErrKeyNotFound) {
		dao.PutVersion(Version)
		return nil
	}
	if err != nil {
		return err
	}
	if v != Version {
		return fmt.Errorf("%w: expected %s, got %s", ErrIncompatibleVersion, Version, v)
	}
	return nil
}

// -- end version.

// -- start generation.

// GetGeneration returns the number of operations committed to the store.
func (dao *Simple) GetGeneration() (uint64, error) {
	b, err := dao.Store.Get(storage.SYSGeneration.Bytes())
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid generation length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// PutGeneration saves the number of committed operations.
func (dao *Simple) PutGeneration(gen uint64) {
	dao.Store.Put(storage.SYSGeneration.Bytes(), binary.BigEndian.AppendUint64(nil, gen))
}

// -- end generation.

// -- start vesting.

// GetVesting returns the vesting schedule state, empty state is returned if
// nothing is stored yet.
func (dao *Simple) GetVesting() (*state.Vesting, error) {
	v := new(state.Vesting)
	err := dao.GetAndDecode(v, storage.STVesting.Bytes())
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, err
	}
	return v, nil
}

// PutVesting saves the vesting schedule state.
func (dao *Simple) PutVesting(v *state.Vesting) error {
	return dao.Put(v, storage.STVesting.Bytes())
}

// -- end vesting.

// -- start grants.

func makeGrantKey(acc util.Uint160, t vesting.AllocationType) []byte {
	key := make([]byte, 1+util.Uint160Size+1)
	key[0] = byte(storage.STGrant)
	copy(key[1:], acc[:])
	key[1+util.Uint160Size] = byte(t)
	return key
}

// GetGrant returns investor grant of the given type. storage.ErrKeyNotFound
// is returned if there is none.
func (dao *Simple) GetGrant(acc util.Uint160, t vesting.AllocationType) (*state.Grant, error) {
	g := new(state.Grant)
	err := dao.GetAndDecode(g, makeGrantKey(acc, t))
	if err != nil {
		return nil, err
	}
	return g, nil
}

// PutGrant saves investor grant of the given type.
func (dao *Simple) PutGrant(acc util.Uint160, t vesting.AllocationType, g *state.Grant) error {
	return dao.Put(g, makeGrantKey(acc, t))
}

// SeekGrants iterates over stored grants in ascending (investor, type) order
// until f returns false. If acc is not nil, only grants of this investor are
// returned.
func (dao *Simple) SeekGrants(acc *util.Uint160, f func(util.Uint160, vesting.AllocationType, *state.Grant) bool) error {
	var (
		rng     = storage.SeekRange{Prefix: storage.STGrant.Bytes()}
		seekErr error
	)
	if acc != nil {
		rng.Prefix = storage.AppendPrefix(storage.STGrant, acc[:])
	}
	dao.Store.Seek(rng, func(k, v []byte) bool {
		if len(k) != 1+util.Uint160Size+1 {
			seekErr = fmt.Errorf("invalid grant key length %d", len(k))
			return false
		}
		g := new(state.Grant)
		if err := io.FromByteArray(g, v); err != nil {
			seekErr = fmt.Errorf("failed to decode grant: %w", err)
			return false
		}
		var investor util.Uint160
		copy(investor[:], k[1:])
		return f(investor, vesting.AllocationType(k[1+util.Uint160Size]), g)
	})
	return seekErr
}

// -- end grants.

// -- start token.

// GetBalance returns token balance of the given account.
func (dao *Simple) GetBalance(acc util.Uint160) (*uint256.Int, error) {
	return dao.getAmount(storage.AppendPrefix(storage.STBalance, acc[:]))
}

// PutBalance saves token balance of the given account, zero balances are
// deleted.
func (dao *Simple) PutBalance(acc util.Uint160, amount *uint256.Int) {
	dao.putAmount(storage.AppendPrefix(storage.STBalance, acc[:]), amount)
}

// GetTotalSupply returns total token supply.
func (dao *Simple) GetTotalSupply() (*uint256.Int, error) {
	return dao.getAmount(storage.STTotalSupply.Bytes())
}

// PutTotalSupply saves total token supply.
func (dao *Simple) PutTotalSupply(amount *uint256.Int) {
	dao.putAmount(storage.STTotalSupply.Bytes(), amount)
}

func (dao *Simple) getAmount(key []byte) (*uint256.Int, error) {
	b, err := dao.Store.Get(key)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, err
	}
	bs, err := state.TokenBalanceFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &bs.Balance, nil
}

func (dao *Simple) putAmount(key []byte, amount *uint256.Int) {
	if amount.IsZero() {
		dao.Store.Delete(key)
		return
	}
	bs := state.TokenBalance{Balance: *amount}
	dao.Store.Put(key, bs.Bytes())
}

// -- end token.

// -- start management.

// GetOwner returns the management owner account.
func (dao *Simple) GetOwner() (util.Uint160, error) {
	b, err := dao.Store.Get(storage.STManagement.Bytes())
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytes(b)
}

// PutOwner saves the management owner account.
func (dao *Simple) PutOwner(owner util.Uint160) {
	dao.Store.Put(storage.STManagement.Bytes(), owner.Bytes())
}

// GetPermissions returns permission bitmask of the given account.
func (dao *Simple) GetPermissions(acc util.Uint160) (uint64, error) {
	b, err := dao.Store.Get(storage.AppendPrefix(storage.STPermission, acc[:]))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid permissions length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// PutPermissions saves permission bitmask of the given account.
func (dao *Simple) PutPermissions(acc util.Uint160, perms uint64) {
	key := storage.AppendPrefix(storage.STPermission, acc[:])
	if perms == 0 {
		dao.Store.Delete(key)
		return
	}
	dao.Store.Put(key, binary.BigEndian.AppendUint64(nil, perms))
}

// SeekPermissions iterates over all accounts having some permissions.
func (dao *Simple) SeekPermissions(f func(util.Uint160, uint64) bool) {
	dao.Store.Seek(storage.SeekRange{Prefix: storage.STPermission.Bytes()}, func(k, v []byte) bool {
		if len(k) != 1+util.Uint160Size || len(v) != 8 {
			return true
		}
		var acc util.Uint160
		copy(acc[:], k[1:])
		return f(acc, binary.BigEndian.Uint64(v))
	})
}

// -- end management.

// -- start notifications.

// GetNotificationCount returns the number of stored notifications.
func (dao *Simple) GetNotificationCount() (uint64, error) {
	b, err := dao.Store.Get(storage.SYSNotificationCount.Bytes())
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid notification counter length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func makeNotificationKey(index uint64) []byte {
	return binary.BigEndian.AppendUint64(storage.STNotification.Bytes(), index)
}

// AppendNotification stores the event at the end of the audit log updating
// its Index.
func (dao *Simple) AppendNotification(ne *state.NotificationEvent) error {
	n, err := dao.GetNotificationCount()
	if err != nil {
		return err
	}
	ne.Index = n
	b, err := ne.Bytes()
	if err != nil {
		return err
	}
	dao.Store.Put(makeNotificationKey(n), b)
	dao.Store.Put(storage.SYSNotificationCount.Bytes(), binary.BigEndian.AppendUint64(nil, n+1))
	return nil
}

// GetNotifications returns at most limit stored events starting from the
// given index. Non-positive limit means no limit.
func (dao *Simple) GetNotifications(start uint64, limit int) ([]state.NotificationEvent, error) {
	var (
		res     []state.NotificationEvent
		seekErr error
		rng     = storage.SeekRange{
			Prefix: storage.STNotification.Bytes(),
			Start:  binary.BigEndian.AppendUint64(nil, start),
		}
	)
	dao.Store.Seek(rng, func(k, v []byte) bool {
		ne, err := state.NotificationEventFromBytes(v)
		if err != nil {
			seekErr = err
			return false
		}
		res = append(res, *ne)
		return limit <= 0 || len(res) < limit
	})
	return res, seekErr
}

// -- end notifications.
