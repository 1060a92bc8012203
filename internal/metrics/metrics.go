package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"francoggm/vnpay-go-redis/internal/config"

	"github.com/VictoriaMetrics/metrics"
)

var (
	LinksCreated = metrics.GetOrCreateCounter(`vnpay_links_total{result="created"}`)
	LinksFailed  = metrics.GetOrCreateCounter(`vnpay_links_total{result="failed"}`)

	QueryDRDuration = metrics.GetOrCreateHistogram(`vnpay_querydr_duration_milliseconds`)
)

func Setup(cfg config.Metrics, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}

	err := metrics.InitPush(cfg.URL, time.Duration(cfg.IntervalMs)*time.Millisecond, cfg.CommonLabels, true)
	if err != nil {
		logger.Error("Error initializing metrics push", "error", err)
	}
}

// Callback counts a processed callback by flow and outcome (success, failed,
// pending or error).
func Callback(flow, result string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vnpay_callbacks_total{flow=%q,result=%q}`, flow, result)).Inc()
}

func IPNAck(code string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vnpay_ipn_ack_total{code=%q}`, code)).Inc()
}

func QueryDR(result string, startTime time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vnpay_querydr_total{result=%q}`, result)).Inc()
	QueryDRDuration.Update(float64(time.Since(startTime).Milliseconds()))
}

func HookError(flow string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vnpay_hook_errors_total{flow=%q}`, flow)).Inc()
}

func Reconcile(result string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vnpay_reconcile_total{result=%q}`, result)).Inc()
}
