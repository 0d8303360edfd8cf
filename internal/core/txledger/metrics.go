package txledger

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weisyn/txledger/pkg/types"
)

// ============================================================================
//                          Prometheus 监控指标
// ============================================================================

var (
	// ledgerRecords 各状态的记录数（全部网络）
	ledgerRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "txledger",
			Subsystem: "ledger",
			Name:      "records",
			Help:      "Current number of ledger records by status",
		},
		[]string{"status"},
	)

	// ledgerAddsTotal 成功添加的记录总数
	ledgerAddsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "txledger",
		Subsystem: "ledger",
		Name:      "adds_total",
		Help:      "Total number of records added to the ledger",
	})

	// ledgerUpdatesTotal 产生了历史条目的更新总数
	ledgerUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "txledger",
		Subsystem: "ledger",
		Name:      "updates_total",
		Help:      "Total number of updates that appended a history entry",
	})

	// ledgerEvictionsTotal 保留策略淘汰的记录总数
	ledgerEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "txledger",
		Subsystem: "ledger",
		Name:      "evictions_total",
		Help:      "Total number of records evicted by the retention policy",
	})

	// ledgerValidationFailuresTotal 校验失败次数（按字段）
	ledgerValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txledger",
			Subsystem: "ledger",
			Name:      "validation_failures_total",
			Help:      "Total number of rejected writes by offending field",
		},
		[]string{"field"},
	)
)

func init() {
	prometheus.MustRegister(
		ledgerRecords,
		ledgerAddsTotal,
		ledgerUpdatesTotal,
		ledgerEvictionsTotal,
		ledgerValidationFailuresTotal,
	)
}

// ============================================================================
//                          指标更新函数
// ============================================================================

// observeState 按状态重算记录数
func observeState(state types.TxState) {
	counts := make(map[types.TxStatus]int, len(state.Transactions))
	for _, tx := range state.Transactions {
		counts[tx.Status]++
	}
	for _, status := range types.AllTxStatuses() {
		ledgerRecords.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

// observeValidationFailure 记录一次校验失败
func observeValidationFailure(err error) {
	field := "unknown"
	if ledgerErr, ok := err.(*LedgerError); ok && ledgerErr.Field != "" {
		field = ledgerErr.Field
	}
	ledgerValidationFailuresTotal.WithLabelValues(field).Inc()
}
