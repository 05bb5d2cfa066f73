package core

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// operations prometheus metric.
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of processed ledger operations",
			Name:      "operations_total",
			Namespace: "vesting",
		},
		[]string{"operation", "result"},
	)
	// notificationCount prometheus metric.
	notificationCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of stored audit notifications",
			Name:      "notifications",
			Namespace: "vesting",
		},
	)
	// totalSupply prometheus metric.
	totalSupply = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Token total supply in token units",
			Name:      "token_total_supply",
			Namespace: "vesting",
		},
	)
	// granted prometheus metric.
	granted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Sum of granted tokens per allocation type",
			Name:      "granted_tokens",
			Namespace: "vesting",
		},
		[]string{"allocation"},
	)
	// released prometheus metric.
	released = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Sum of withdrawn tokens per allocation type",
			Name:      "released_tokens",
			Namespace: "vesting",
		},
		[]string{"allocation"},
	)
	// claimable prometheus metric.
	claimable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Sum of unlocked but not yet withdrawn tokens per allocation type",
			Name:      "claimable_tokens",
			Namespace: "vesting",
		},
		[]string{"allocation"},
	)
)

func init() {
	prometheus.MustRegister(
		operations,
		notificationCount,
		totalSupply,
		granted,
		released,
		claimable,
	)
}

func updateOperationsMetric(op string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	operations.WithLabelValues(op, result).Inc()
}

func updateNotificationCountMetric(n uint64) {
	notificationCount.Set(float64(n))
}

func updateTotalSupplyMetric(supply *uint256.Int) {
	totalSupply.Set(toFloat(supply))
}

func updateAllocationMetrics(t vesting.AllocationType, total, paid, unlocked *uint256.Int) {
	granted.WithLabelValues(t.String()).Set(toFloat(total))
	released.WithLabelValues(t.String()).Set(toFloat(paid))
	claimable.WithLabelValues(t.String()).Set(toFloat(unlocked))
}

func toFloat(x *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(x.ToBig()).Float64()
	return f
}
