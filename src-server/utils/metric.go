package utils

import "time"

type FilterRequestMetric struct {
	Window  string
	Outcome string
	Latency time.Duration
}

// Metric carries measurements from request handlers to the metric package.
// Sends never block: when the collector falls behind, samples are dropped.
type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
	FilterRequest chan FilterRequestMetric
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64, 64),
		DatabaseWrite: make(chan float64, 64),
		FilterRequest: make(chan FilterRequestMetric, 64),
	}
}

func (m *Metric) ObserveDatabaseRead(latency time.Duration) {
	select {
	case m.DatabaseRead <- float64(latency.Microseconds()):
	default:
	}
}

func (m *Metric) ObserveDatabaseWrite(latency time.Duration) {
	select {
	case m.DatabaseWrite <- float64(latency.Microseconds()):
	default:
	}
}

func (m *Metric) ObserveFilterRequest(sample FilterRequestMetric) {
	select {
	case m.FilterRequest <- sample:
	default:
	}
}
