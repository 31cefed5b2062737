// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/chama/internal/models"
)

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chama_rpc_requests_total",
		Help: "RPC requests by procedure and result code",
	}, []string{"procedure", "code"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chama_rpc_duration_seconds",
		Help:    "RPC handling time",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure"})

	walletMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chama_wallet_movements_total",
		Help: "Committed wallet transactions by type and direction",
	}, []string{"type", "direction"})

	sweepMarkedLate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chama_sweep_marked_late_total",
		Help: "Contributions flagged late by the sweep",
	})
)

// ObserveRPC records one finished RPC. code is "ok" on success.
func ObserveRPC(procedure, code string, elapsed time.Duration) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// WalletMovements counts committed wallet transactions.
func WalletMovements(txs []*models.WalletTransaction) {
	for _, tx := range txs {
		walletMovements.WithLabelValues(string(tx.Type), string(tx.Direction)).Inc()
	}
}

// MarkedLate counts contributions flagged late by one sweep run.
func MarkedLate(n int64) {
	sweepMarkedLate.Add(float64(n))
}
