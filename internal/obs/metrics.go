package obs

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// PromMeter bridges Meter to a Prometheus registry. Collectors are created
// on first use of a name; the label keys seen on that first call fix the
// collector's label set, and later calls with other keys are dropped.
type PromMeter struct {
	Namespace string
	Registry  prometheus.Registerer
	Buckets   []float64

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPromMeter returns a PromMeter registering into reg.
func NewPromMeter(namespace string, reg prometheus.Registerer) *PromMeter {
	return &PromMeter{
		Namespace:  namespace,
		Registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *PromMeter) Counter(name string, value float64, labels ...Label) {
	keys, values := splitLabels(labels)
	m.mu.Lock()
	cv, ok := m.counters[name]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Name:      name,
			Help:      name,
		}, keys)
		if err := m.Registry.Register(cv); err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = cv
	}
	m.mu.Unlock()
	if c, err := cv.GetMetricWithLabelValues(values...); err == nil {
		c.Add(value)
	}
}

func (m *PromMeter) Histogram(name string, value float64, labels ...Label) {
	keys, values := splitLabels(labels)
	m.mu.Lock()
	hv, ok := m.histograms[name]
	if !ok {
		buckets := m.Buckets
		if buckets == nil {
			buckets = prometheus.DefBuckets
		}
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.Namespace,
			Name:      name,
			Help:      name,
			Buckets:   buckets,
		}, keys)
		if err := m.Registry.Register(hv); err != nil {
			m.mu.Unlock()
			return
		}
		m.histograms[name] = hv
	}
	m.mu.Unlock()
	if h, err := hv.GetMetricWithLabelValues(values...); err == nil {
		h.Observe(value)
	}
}

// splitLabels orders labels by key so that callers need not agree on order.
func splitLabels(labels []Label) (keys, values []string) {
	ls := append([]Label(nil), labels...)
	sort.Slice(ls, func(i, j int) bool { return ls[i].Key < ls[j].Key })
	keys = make([]string, len(ls))
	values = make([]string, len(ls))
	for i, l := range ls {
		keys[i] = l.Key
		values[i] = l.Value
	}
	return keys, values
}
