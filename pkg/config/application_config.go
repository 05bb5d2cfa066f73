package config

import (
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-vesting/pkg/core/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// DefaultMonitorInterval is the default metrics refresh interval of the
// monitor command.
const DefaultMonitorInterval = 15 * time.Second

// ApplicationConfiguration config specific to the running process.
type ApplicationConfiguration struct {
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`

	LogLevel    string `yaml:"LogLevel"`
	LogPath     string `yaml:"LogPath"`
	LogEncoding string `yaml:"LogEncoding"`

	Prometheus BasicService `yaml:"Prometheus"`
	Pprof      BasicService `yaml:"Pprof"`
	// MonitorInterval is the period of metrics refresh for the monitor
	// command.
	MonitorInterval time.Duration `yaml:"MonitorInterval"`
}

// Validate checks ApplicationConfiguration for internal consistency.
func (a *ApplicationConfiguration) Validate() error {
	switch a.DBConfiguration.Type {
	case dbconfig.InMemoryDB, "":
	case dbconfig.LevelDB:
		if a.DBConfiguration.LevelDBOptions.DataDirectoryPath == "" {
			return fmt.Errorf("empty LevelDB DataDirectoryPath")
		}
	case dbconfig.BoltDB:
		if a.DBConfiguration.BoltDBOptions.FilePath == "" {
			return fmt.Errorf("empty BoltDB FilePath")
		}
	case dbconfig.RedisDB:
		if a.DBConfiguration.RedisDBOptions.Addr == "" {
			return fmt.Errorf("empty Redis Addr")
		}
	default:
		return fmt.Errorf("unknown DB type %q", a.DBConfiguration.Type)
	}
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("invalid LogLevel: %w", err)
		}
	}
	if a.LogEncoding != "" && a.LogEncoding != "console" && a.LogEncoding != "json" {
		return fmt.Errorf("invalid LogEncoding: %s", a.LogEncoding)
	}
	if a.MonitorInterval < 0 {
		return fmt.Errorf("negative MonitorInterval")
	}
	return nil
}
