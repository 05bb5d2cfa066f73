package vesting

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/nspcc-dev/neo-vesting/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func monitor(ctx *cli.Context) error {
	e, err := newLedgerEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	grace, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := runMonitor(grace, e); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

// runMonitor serves metrics and refreshes them every MonitorInterval (or on
// SIGHUP) until ctx is done.
func runMonitor(ctx context.Context, e *ledgerEnv) error {
	var (
		appCfg   = e.cfg.ApplicationConfiguration
		prom     = metrics.NewPrometheusService(appCfg.Prometheus, e.log)
		pprof    = metrics.NewPprofService(appCfg.Pprof, e.log)
		interval = appCfg.MonitorInterval
	)
	if interval == 0 {
		interval = config.DefaultMonitorInterval
	}
	for _, srv := range []*metrics.Service{prom, pprof} {
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.ShutDown()
	}
	e.ledger.Run()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	refresh := func() {
		now := uint64(time.Now().Unix())
		if err := e.ledger.UpdateMetrics(now); err != nil {
			e.log.Warn("failed to update metrics", zap.Error(err))
			return
		}
		e.log.Debug("metrics updated", zap.Uint64("time", now))
	}
	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	e.log.Info("monitoring started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			e.log.Info("monitoring stopped")
			return nil
		case <-ticker.C:
			refresh()
		case <-hup:
			refresh()
		}
	}
}
