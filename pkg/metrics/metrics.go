package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ========== 业务指标 ==========

var (
	// LoginCounter 登录次数统计（按结果）
	LoginCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "login_total",
			Help:      "Total number of login attempts",
		},
		[]string{"result"},
	)

	// LedgerTransactionCounter 库存流水统计（按类型和结果）
	LedgerTransactionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "inventory_transactions_total",
			Help:      "Total number of inventory ledger transactions",
		},
		[]string{"type", "result"},
	)

	// ReceiptCounter 收据号发放统计
	ReceiptCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clinicore",
		Name:      "receipts_issued_total",
		Help:      "Total number of receipt numbers issued",
	})

	// FeatureDeniedCounter 功能开关拒绝统计（按功能）
	FeatureDeniedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "feature_denied_total",
			Help:      "Total number of requests denied by feature gates",
		},
		[]string{"feature"},
	)
)

// Handler 返回/metrics端点的gin处理函数
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
