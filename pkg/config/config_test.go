package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-vesting/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
	"github.com/stretchr/testify/require"
)

const configPath = "../../config"

const ownerStr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestLoadSampleConfigs(t *testing.T) {
	cfg, err := Load(configPath, DefaultConfigName)
	require.NoError(t, err)
	require.Equal(t, dbconfig.BoltDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.Equal(t, ownerStr, cfg.Vesting.Owner.String())
	require.Equal(t, uint8(18), cfg.Vesting.Decimals)
	require.Equal(t, 15*time.Second, cfg.ApplicationConfiguration.MonitorInterval)
	require.Equal(t, []string{":2112"}, cfg.ApplicationConfiguration.Prometheus.GetAddresses())
	tbl, err := cfg.Vesting.Table()
	require.NoError(t, err)
	require.Equal(t, vesting.DefaultPolicies(), tbl)

	cfg, err = Load(configPath, "vesting.custom")
	require.NoError(t, err)
	require.True(t, cfg.Vesting.AllowLateGrants)
	require.Equal(t, DefaultTokenName, cfg.Vesting.TokenName)
	tbl, err = cfg.Vesting.Table()
	require.NoError(t, err)
	require.Equal(t, []vesting.AllocationType{vesting.Seed, vesting.Private, 2}, tbl.Types())
	p, err := tbl.Policy(2)
	require.NoError(t, err)
	require.Equal(t, uint64(24), p.TotalPeriods)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nonexistent.yml"))
	require.Error(t, err)
}

func writeConfig(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
Vesting:
  Owner: "`+ownerStr+`"
`))
	require.NoError(t, err)
	require.Equal(t, dbconfig.InMemoryDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.Equal(t, "info", cfg.ApplicationConfiguration.LogLevel)
	require.Equal(t, DefaultMonitorInterval, cfg.ApplicationConfiguration.MonitorInterval)
	require.Equal(t, DefaultTokenSymbol, cfg.Vesting.TokenSymbol)
	require.Equal(t, PolicyTableDefault, cfg.Vesting.PolicyTable)
}

func TestInvalidConfigs(t *testing.T) {
	testCases := map[string]string{
		"no owner": `
Vesting:
  TokenSymbol: "MK"`,
		"unknown field": `
Vesting:
  Owner: "` + ownerStr + `"
  Unknown: 1`,
		"bad checksum": `
Vesting:
  Owner: "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed"`,
		"unknown table": `
Vesting:
  Owner: "` + ownerStr + `"
  PolicyTable: linear`,
		"custom without policies": `
Vesting:
  Owner: "` + ownerStr + `"
  PolicyTable: custom`,
		"policies for default table": `
Vesting:
  Owner: "` + ownerStr + `"
  Policies:
    - Type: seed
      PeriodDuration: 1
      TotalPeriods: 1`,
		"duplicate policy": `
Vesting:
  Owner: "` + ownerStr + `"
  PolicyTable: custom
  Policies:
    - Type: seed
      PeriodDuration: 1
      TotalPeriods: 1
    - Type: "0"
      PeriodDuration: 1
      TotalPeriods: 1`,
		"invalid policy": `
Vesting:
  Owner: "` + ownerStr + `"
  PolicyTable: custom
  Policies:
    - Type: seed
      PeriodDuration: 0
      TotalPeriods: 1`,
		"unknown db": `
ApplicationConfiguration:
  DBConfiguration:
    Type: mongo
Vesting:
  Owner: "` + ownerStr + `"`,
		"leveldb without path": `
ApplicationConfiguration:
  DBConfiguration:
    Type: leveldb
Vesting:
  Owner: "` + ownerStr + `"`,
		"bad log level": `
ApplicationConfiguration:
  LogLevel: loud
Vesting:
  Owner: "` + ownerStr + `"`,
		"bad log encoding": `
ApplicationConfiguration:
  LogEncoding: xml
Vesting:
  Owner: "` + ownerStr + `"`,
	}
	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, data))
			require.Error(t, err)
		})
	}
}

func TestBasicServiceAddresses(t *testing.T) {
	s := BasicService{Addresses: []string{":1", "localhost:2", ":1"}}
	require.Equal(t, []string{":1", "localhost:2"}, s.GetAddresses())
	require.Empty(t, BasicService{}.GetAddresses())
}
