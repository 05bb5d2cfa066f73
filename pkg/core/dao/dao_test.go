package dao

import (
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/internal/random"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/nspcc-dev/neo-vesting/pkg/io"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
	"github.com/stretchr/testify/require"
)

func TestPutGetAndDecode(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	serializable := &TestSerializable{field: random.String(4)}
	hash := []byte{1}
	require.NoError(t, dao.putWithBuffer(serializable, hash, io.NewBufBinWriter()))

	gotAndDecoded := &TestSerializable{}
	err := dao.GetAndDecode(gotAndDecoded, hash)
	require.NoError(t, err)
	require.Equal(t, serializable, gotAndDecoded)
}

// TestSerializable structure used in testing.
type TestSerializable struct {
	field string
}

func (t *TestSerializable) EncodeBinary(writer *io.BinWriter) {
	writer.WriteString(t.field)
}

func (t *TestSerializable) DecodeBinary(reader *io.BinReader) {
	t.field = reader.ReadString()
}

func TestVersion(t *testing.T) {
	store := storage.NewMemoryStore()
	dao := NewSimple(store)
	_, err := dao.GetVersion()
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, dao.CheckVersion())
	v, err := dao.GetVersion()
	require.NoError(t, err)
	require.Equal(t, Version, v)
	require.NoError(t, dao.CheckVersion())

	dao.PutVersion("0.0.1")
	require.ErrorIs(t, dao.CheckVersion(), ErrIncompatibleVersion)
}

func TestGetPutVesting(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	v, err := dao.GetVesting()
	require.NoError(t, err)
	require.Equal(t, &state.Vesting{}, v)

	v.Initialized = true
	v.Token = random.Uint160()
	v.InitialTimestamp = 123
	require.NoError(t, dao.PutVesting(v))
	actual, err := dao.GetVesting()
	require.NoError(t, err)
	require.Equal(t, v, actual)
}

func TestGrants(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	acc := random.Uint160()
	_, err := dao.GetGrant(acc, vesting.Seed)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	g := new(state.Grant)
	g.Total.SetUint64(100)
	g.Paid.SetUint64(10)
	require.NoError(t, dao.PutGrant(acc, vesting.Seed, g))
	actual, err := dao.GetGrant(acc, vesting.Seed)
	require.NoError(t, err)
	require.Equal(t, g, actual)

	_, err = dao.GetGrant(acc, vesting.Private)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestSeekGrants(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	a := util.Uint160{1}
	b := util.Uint160{2}
	for i, acc := range []util.Uint160{b, a} {
		for _, typ := range []vesting.AllocationType{vesting.Private, vesting.Seed} {
			g := new(state.Grant)
			g.Total.SetUint64(uint64(i*10) + uint64(typ))
			require.NoError(t, dao.PutGrant(acc, typ, g))
		}
	}

	type item struct {
		acc util.Uint160
		typ vesting.AllocationType
		tot uint64
	}
	var all []item
	require.NoError(t, dao.SeekGrants(nil, func(acc util.Uint160, typ vesting.AllocationType, g *state.Grant) bool {
		all = append(all, item{acc, typ, g.Total.Uint64()})
		return true
	}))
	require.Equal(t, []item{
		{a, vesting.Seed, 10},
		{a, vesting.Private, 11},
		{b, vesting.Seed, 0},
		{b, vesting.Private, 1},
	}, all)

	var onlyB []item
	require.NoError(t, dao.SeekGrants(&b, func(acc util.Uint160, typ vesting.AllocationType, g *state.Grant) bool {
		onlyB = append(onlyB, item{acc, typ, g.Total.Uint64()})
		return true
	}))
	require.Equal(t, all[2:], onlyB)

	dao.Store.Put(makeGrantKey(a, vesting.Seed), []byte{1, 2, 3})
	require.Error(t, dao.SeekGrants(nil, func(util.Uint160, vesting.AllocationType, *state.Grant) bool { return true }))
}

func TestBalances(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	acc := random.Uint160()

	b, err := dao.GetBalance(acc)
	require.NoError(t, err)
	require.True(t, b.IsZero())

	dao.PutBalance(acc, uint256.NewInt(42))
	b, err = dao.GetBalance(acc)
	require.NoError(t, err)
	require.Equal(t, uint64(42), b.Uint64())

	dao.PutBalance(acc, new(uint256.Int))
	_, err = dao.Store.Get(storage.AppendPrefix(storage.STBalance, acc[:]))
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	dao.PutTotalSupply(uint256.NewInt(1000))
	s, err := dao.GetTotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(1000), s.Uint64())
}

func TestManagement(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	_, err := dao.GetOwner()
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	owner := random.Uint160()
	dao.PutOwner(owner)
	actual, err := dao.GetOwner()
	require.NoError(t, err)
	require.Equal(t, owner, actual)

	acc := random.Uint160()
	p, err := dao.GetPermissions(acc)
	require.NoError(t, err)
	require.Equal(t, uint64(0), p)

	dao.PutPermissions(acc, 5)
	p, err = dao.GetPermissions(acc)
	require.NoError(t, err)
	require.Equal(t, uint64(5), p)

	var seen int
	dao.SeekPermissions(func(a util.Uint160, perms uint64) bool {
		require.Equal(t, acc, a)
		require.Equal(t, uint64(5), perms)
		seen++
		return true
	})
	require.Equal(t, 1, seen)

	dao.PutPermissions(acc, 0)
	p, err = dao.GetPermissions(acc)
	require.NoError(t, err)
	require.Equal(t, uint64(0), p)
}

func TestNotifications(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	op := uuid.New()
	for i := 0; i < 300; i++ {
		ne := &state.NotificationEvent{Operation: op, Contract: "Vesting", Name: random.String(5)}
		require.NoError(t, dao.AppendNotification(ne))
		require.Equal(t, uint64(i), ne.Index)
	}
	n, err := dao.GetNotificationCount()
	require.NoError(t, err)
	require.Equal(t, uint64(300), n)

	all, err := dao.GetNotifications(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 300)
	for i := range all {
		require.Equal(t, uint64(i), all[i].Index)
	}

	page, err := dao.GetNotifications(255, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	require.Equal(t, uint64(255), page[0].Index)
	require.Equal(t, uint64(264), page[9].Index)

	page, err = dao.GetNotifications(299, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestWrappedPersist(t *testing.T) {
	store := storage.NewMemoryStore()
	dao := NewSimple(store)
	private := dao.GetWrapped()
	acc := random.Uint160()

	private.PutBalance(acc, uint256.NewInt(1))
	b, err := dao.GetBalance(acc)
	require.NoError(t, err)
	require.True(t, b.IsZero())

	_, err = private.Persist()
	require.NoError(t, err)
	b, err = dao.GetBalance(acc)
	require.NoError(t, err)
	require.Equal(t, uint64(1), b.Uint64())
	require.Equal(t, 0, store.Len())

	_, err = dao.Persist()
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	private = dao.GetWrapped()
	private.PutBalance(acc, uint256.NewInt(2))
	private.Discard()
	_, err = private.Persist()
	require.NoError(t, err)
	b, err = dao.GetBalance(acc)
	require.NoError(t, err)
	require.Equal(t, uint64(1), b.Uint64())
}

func TestGeneration(t *testing.T) {
	dao := NewSimple(storage.NewMemoryStore())
	gen, err := dao.GetGeneration()
	require.NoError(t, err)
	require.Zero(t, gen)

	d := dao.GetWrapped()
	d.PutGeneration(gen + 1)
	_, err = d.Persist()
	require.NoError(t, err)
	n, err := dao.PersistAt(gen)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	gen, err = dao.GetGeneration()
	require.NoError(t, err)
	require.Equal(t, uint64(1), gen)

	dao.Store.Put(storage.SYSGeneration.Bytes(), []byte{1, 2, 3})
	_, err = dao.GetGeneration()
	require.Error(t, err)
}
