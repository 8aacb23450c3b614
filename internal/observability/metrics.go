package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the exhibit service.
// Counters and histograms are registered via promauto for automatic
// registration with the default Prometheus registry.
type Metrics struct {
	// FeedsServed counts feed pages served, labeled by feed type.
	FeedsServed *prometheus.CounterVec

	// FeedAssemblyDuration observes end-to-end feed assembly duration in seconds.
	FeedAssemblyDuration prometheus.Histogram

	// ExhibitsCreated counts exhibits created.
	ExhibitsCreated prometheus.Counter

	// ExhibitsUpdated counts exhibits updated in place.
	ExhibitsUpdated prometheus.Counter

	// ExhibitsDeleted counts exhibits deleted, including their cascaded rows.
	ExhibitsDeleted prometheus.Counter

	// SupportsAdded counts supports newly created by the toggle-on operation.
	SupportsAdded prometheus.Counter

	// SupportsRemoved counts supports removed by the toggle-off operation.
	SupportsRemoved prometheus.Counter

	// SupportNoOps counts idempotent toggle calls that found the state already
	// settled (support that existed, unsupport with nothing to remove).
	SupportNoOps *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		FeedsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_served_total",
			Help:      "Total number of feed pages served",
		}, []string{"feed_type"}),
		FeedAssemblyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_assembly_duration_seconds",
			Help:      "Duration of feed assembly in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ExhibitsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exhibits_created_total",
			Help:      "Total number of exhibits created",
		}),
		ExhibitsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exhibits_updated_total",
			Help:      "Total number of exhibits updated",
		}),
		ExhibitsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exhibits_deleted_total",
			Help:      "Total number of exhibits deleted",
		}),
		SupportsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supports_added_total",
			Help:      "Total number of supports created",
		}),
		SupportsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supports_removed_total",
			Help:      "Total number of supports removed",
		}),
		SupportNoOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "support_noops_total",
			Help:      "Total number of idempotent support toggles that changed nothing",
		}, []string{"operation"}),
	}
}
