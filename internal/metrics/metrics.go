// Package metrics exposes tracker gauges and counters to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "jnt"

// Result labels for digest generations.
const (
	ResultSuccess    = "success"
	ResultFailed     = "failed"
	ResultSuperseded = "superseded"
	ResultClosed     = "closed"
)

// Recorder records tracker metrics. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	once               sync.Once
	passed             prom.Gauge
	shipUnlocked       prom.Gauge
	gateTransitions    *prom.CounterVec
	digestGenerations  *prom.CounterVec
	navigationRejected *prom.CounterVec
}

// NewRecorder constructs the tracker metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{}
	r.once.Do(func() {
		r.passed = prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "checklist_passed",
			Help:      "Number of checklist tests currently marked passed",
		})
		r.shipUnlocked = prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "ship_unlocked",
			Help:      "1 when the ship gate is unlocked, 0 when locked",
		})
		r.gateTransitions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "gate_transitions_total",
			Help:      "Ship gate transitions by target state",
		}, []string{"to"})
		r.digestGenerations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "digest_generations_total",
			Help:      "Digest generations by result",
		}, []string{"result"})
		r.navigationRejected = prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "navigation_rejected_total",
			Help:      "Navigation attempts refused by the ship gate",
		}, []string{"route"})
		reg.MustRegister(r.passed, r.shipUnlocked, r.gateTransitions, r.digestGenerations, r.navigationRejected)
	})
	return r
}

func (r *Recorder) SetPassed(n int) {
	if r == nil || r.passed == nil {
		return
	}
	r.passed.Set(float64(n))
}

func (r *Recorder) SetShipUnlocked(unlocked bool) {
	if r == nil || r.shipUnlocked == nil {
		return
	}
	v := 0.0
	if unlocked {
		v = 1
	}
	r.shipUnlocked.Set(v)
}

func (r *Recorder) IncGateTransition(to string) {
	if r == nil || r.gateTransitions == nil {
		return
	}
	r.gateTransitions.WithLabelValues(to).Inc()
}

func (r *Recorder) IncDigestGeneration(result string) {
	if r == nil || r.digestGenerations == nil {
		return
	}
	r.digestGenerations.WithLabelValues(result).Inc()
}

func (r *Recorder) IncNavigationRejected(route string) {
	if r == nil || r.navigationRejected == nil {
		return
	}
	r.navigationRejected.WithLabelValues(route).Inc()
}

// HTTPHandler serves the metrics registered with reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
