package metrics

import (
	"context"

	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedStore counts every operation of the wrapped store.
type InstrumentedStore struct {
	next       storage.Store
	operations *prometheus.CounterVec
	valueBytes *prometheus.HistogramVec
}

func NewInstrumentedStore(next storage.Store, reg prometheus.Registerer) *InstrumentedStore {
	s := &InstrumentedStore{
		next: next,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roseforum_store_operations_total",
				Help: "Total number of document store operations",
			},
			[]string{"op", "result"},
		),
		valueBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roseforum_store_value_bytes",
				Help:    "Size of documents read and written",
				Buckets: []float64{64, 512, 4096, 32768, 262144, 2097152},
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(s.operations, s.valueBytes)
	}
	return s
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := s.next.Get(ctx, key)
	switch {
	case err != nil:
		s.operations.WithLabelValues("get", "error").Inc()
	case !ok:
		s.operations.WithLabelValues("get", "miss").Inc()
	default:
		s.operations.WithLabelValues("get", "hit").Inc()
		s.valueBytes.WithLabelValues("get").Observe(float64(len(value)))
	}
	return value, ok, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.next.Set(ctx, key, value)
	if err != nil {
		s.operations.WithLabelValues("set", "error").Inc()
		return err
	}
	s.operations.WithLabelValues("set", "ok").Inc()
	s.valueBytes.WithLabelValues("set").Observe(float64(len(value)))
	return nil
}

func (s *InstrumentedStore) Remove(ctx context.Context, key string) error {
	err := s.next.Remove(ctx, key)
	if err != nil {
		s.operations.WithLabelValues("remove", "error").Inc()
		return err
	}
	s.operations.WithLabelValues("remove", "ok").Inc()
	return nil
}
