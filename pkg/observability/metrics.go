package observability

import (
	"context"

	"github.com/aretw0/websession/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the session collectors.
type Metrics struct {
	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Changes       *prometheus.CounterVec
	Expiries      prometheus.Counter
	Recoveries    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websession_fetches_total",
				Help: "Total number of requests to the session endpoint",
			},
			[]string{"method", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "websession_fetch_duration_seconds",
				Help:    "Duration of requests to the session endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		Changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websession_changes_total",
				Help: "Total number of session change events",
			},
			[]string{"kind"},
		),
		Expiries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websession_expiries_total",
			Help: "Total number of session expire events",
		}),
		Recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websession_recoveries_total",
			Help: "Total number of sessions ended after a failing change listener",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Fetches, m.FetchDuration, m.Changes, m.Expiries, m.Recoveries} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFetch: func(ctx context.Context, e *domain.FetchEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.Fetches.WithLabelValues(e.Method, outcome).Inc()
			m.FetchDuration.WithLabelValues(e.Method).Observe(e.Duration.Seconds())
		},
		OnChange: func(ctx context.Context, e *domain.ChangeEvent) {
			m.Changes.WithLabelValues(changeKind(e)).Inc()
		},
		OnExpire: func(ctx context.Context, e *domain.ExpireEvent) {
			m.Expiries.Inc()
		},
		OnRecover: func(ctx context.Context, err error) {
			m.Recoveries.Inc()
		},
	}
}

// changeKind classifies a change event for the kind label.
func changeKind(e *domain.ChangeEvent) string {
	switch {
	case e.Ended:
		return "ended"
	case e.NewData.IsAuthenticated() && !e.OldData.IsAuthenticated():
		return "login"
	case !e.NewData.IsAuthenticated() && e.OldData.IsAuthenticated():
		return "logout"
	default:
		return "update"
	}
}

// Merge combines hooks so that each callback of every argument runs, in order.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var merged domain.LifecycleHooks
	for _, h := range hooks {
		merged.OnFetch = chain(merged.OnFetch, h.OnFetch)
		merged.OnChange = chain(merged.OnChange, h.OnChange)
		merged.OnExpire = chain(merged.OnExpire, h.OnExpire)
		merged.OnRecover = chain(merged.OnRecover, h.OnRecover)
	}
	return merged
}

func chain[E any](first, second func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		second(ctx, e)
	}
}
