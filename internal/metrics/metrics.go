package metrics

import (
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakePool/internal/ledger"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_requests_total",
		Help: "Processed pool requests by op and status.",
	}, []string{"op", "status"})
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pool_request_duration_seconds",
		Help:    "Time from enqueue to result for pool requests, by op.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"op"})
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_queue_depth",
		Help: "Requests waiting for the pool actor.",
	})
	JournalErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_journal_errors_total",
		Help: "Receipt batches that failed to persist.",
	})
	PoolMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_members",
		Help: "Members with a non-zero account.",
	})
	PoolAmount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pool_amount_nano",
		Help: "Pool totals in nano units by bucket.",
	}, []string{"bucket"})
	SnapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_snapshots_total",
		Help: "Snapshot attempts by result.",
	}, []string{"result"})
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_rpc_rate_limited_total",
		Help: "Mutating RPC calls rejected by the per-sender limiter.",
	}, []string{"method"})
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_http_requests_total",
		Help: "Total number of HTTP requests by path, method and status_code.",
	}, []string{"path", "method", "status_code"})
	HttpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "pool_http_requests_duration",
		Help: "Duration of HTTP requests in seconds by path and method.",
	}, []string{"path", "method"})
)

// ObserveResult records one processed request.
func ObserveResult(res ledger.Result, took time.Duration) {
	op := res.Op.String()
	RequestsTotal.WithLabelValues(op, res.Status()).Inc()
	RequestDuration.WithLabelValues(op).Observe(took.Seconds())
}

// ObserveTotals publishes pool totals.
func ObserveTotals(t ledger.Totals) {
	PoolMembers.Set(float64(t.Members))
	PoolAmount.WithLabelValues("balance").Set(toFloat(t.Balance))
	PoolAmount.WithLabelValues("pending_deposit").Set(toFloat(t.PendingDeposit))
	PoolAmount.WithLabelValues("pending_withdraw").Set(toFloat(t.PendingWithdraw))
	PoolAmount.WithLabelValues("withdraw_ready").Set(toFloat(t.WithdrawReady))
	PoolAmount.WithLabelValues("balance_sent").Set(toFloat(t.BalanceSent))
}

func toFloat(v uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HttpMiddleware counts and times requests by URL path.
func HttpMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		method := strings.ToUpper(r.Method)
		d := &responseWriterDelegator{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(d, r)
		HttpRequestsTotal.WithLabelValues(path, method, strconv.Itoa(d.status)).Inc()
		HttpRequestsDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
	})
}

type responseWriterDelegator struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *responseWriterDelegator) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseWriterDelegator) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseWriterDelegator) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
