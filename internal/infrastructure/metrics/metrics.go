package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Bid metrics
	BidsPlaced        prometheus.Counter
	BidsRejected      *prometheus.CounterVec
	BidRollbacks      prometheus.Counter
	BidAmount         prometheus.Histogram
	BidAcceptDuration prometheus.Histogram

	// Settlement metrics
	Settlements        *prometheus.CounterVec
	SettlementDuration prometheus.Histogram
	CreditsIssued      *prometheus.CounterVec
	CreditFailures     *prometheus.CounterVec

	// Ledger metrics
	LedgerAdjustments *prometheus.CounterVec
	InsufficientFunds prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns    *prometheus.CounterVec
	ReconciliationRepairs prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// Scheduler metrics
	SchedulerJobs *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Bid metrics
		BidsPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vamledger_bids_placed_total",
			Help: "Total number of bids accepted",
		}),
		BidsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_bids_rejected_total",
				Help: "Total number of rejected bids by reason",
			},
			[]string{"reason"},
		),
		BidRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vamledger_bid_rollbacks_total",
			Help: "Bid transactions rolled back after the reservation was taken",
		}),
		BidAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vamledger_bid_amount",
			Help:    "Accepted bid amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		BidAcceptDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vamledger_bid_accept_duration_seconds",
			Help:    "Duration of bid acceptance",
			Buckets: prometheus.DefBuckets,
		}),

		// Settlement metrics
		Settlements: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_settlements_total",
				Help: "Total settlement attempts by outcome",
			},
			[]string{"outcome"},
		),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vamledger_settlement_duration_seconds",
			Help:    "Duration of auction settlement",
			Buckets: prometheus.DefBuckets,
		}),
		CreditsIssued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_settlement_credits_total",
				Help: "Settlement credits applied by kind",
			},
			[]string{"kind"},
		),
		CreditFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_settlement_credit_failures_total",
				Help: "Settlement credits that failed and await reconciliation",
			},
			[]string{"kind"},
		),

		// Ledger metrics
		LedgerAdjustments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_ledger_adjustments_total",
				Help: "Ledger adjustments by direction",
			},
			[]string{"direction"},
		),
		InsufficientFunds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vamledger_insufficient_funds_total",
			Help: "Adjustments rejected for insufficient funds",
		}),

		// Reconciliation metrics
		ReconciliationRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_reconciliation_runs_total",
				Help: "Reconciliation passes by status",
			},
			[]string{"status"},
		),
		ReconciliationRepairs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vamledger_reconciliation_repairs_total",
			Help: "Missing settlement credits applied by reconciliation",
		}),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vamledger_outbox_published_total",
			Help: "Outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vamledger_outbox_failures_total",
			Help: "Outbox events that failed to publish",
		}),

		// Scheduler metrics
		SchedulerJobs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_scheduler_jobs_total",
				Help: "Scheduled job runs by job and status",
			},
			[]string{"job", "status"},
		),

		// Authentication metrics
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"route"},
		),
	}
}
