package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// PrometheusName is the name of the Prometheus exporter service.
	PrometheusName = "Prometheus"
	// PprofName is the name of the profiling service.
	PprofName = "Pprof"
)

// NewPrometheusService creates a service exporting ledger metrics for
// Prometheus (https://prometheus.io/docs/guides/go-application).
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	// All listeners share the default registry.
	return newHTTPService(PrometheusName, promhttp.Handler(), cfg, log)
}

// NewPprofService creates a service exposing runtime profiles
// (https://pkg.go.dev/net/http/pprof).
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return newHTTPService(PprofName, mux, cfg, log)
}

func newHTTPService(name string, h http.Handler, cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	addrs := cfg.GetAddresses()
	srvs := make([]*http.Server, 0, len(addrs))
	for _, addr := range addrs {
		srvs = append(srvs, &http.Server{Addr: addr, Handler: h})
	}
	return NewService(name, srvs, cfg, log)
}
